package mapty

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/mapty/internal/go_func_utils"
	"github.com/lowaak/mapty/internal/workout"
)

// index of the cadence/elevation item inside the form
const secondaryFieldIndex = 3

// CursesUIViewImpl implements UIViewImpl, FormView, ListView and Alerter using tview
type CursesUIViewImpl struct {
	logger *log.Logger
	app    *tview.Application

	// Root container holding the main layout and the alert modal
	pages    *tview.Pages
	mainFlex *tview.Flex
	sidebar  *tview.Flex
	hints    *tview.TextView
	logView  *tview.TextView

	mapWidget *MapWidget

	form           *tview.Form
	typeDropDown   *tview.DropDown
	distanceField  *tview.InputField
	durationField  *tview.InputField
	cadenceField   *tview.InputField
	elevationField *tview.InputField
	secondaryKind  workout.Kind

	workoutList *tview.List
	workoutIDs  []string // parallel to workoutList items, newest first

	tabWidgets []tview.Primitive

	pendingLog   []string
	pendingLogMu sync.Mutex
	stopped      chan struct{}
	stopOnce     sync.Once
}

func NewCursesUIView(logger *log.Logger, app *tview.Application, panDuration time.Duration) *CursesUIViewImpl {
	if logger == nil {
		panic("CursesUIViewImpl: logger cannot be nil")
	}
	if app == nil {
		panic("CursesUIViewImpl: app cannot be nil")
	}
	ui := &CursesUIViewImpl{
		logger:  logger,
		app:     app,
		stopped: make(chan struct{}),
	}
	ui.mapWidget = NewMapWidget(logger, panDuration, ui.Dispatch)
	ui.buildLayout()
	return ui
}

func (ui *CursesUIViewImpl) buildLayout() {
	ui.hints = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText(keyHints)

	// Don't use SetChangedFunc with app.Draw(): it hangs during shutdown when
	// log lines keep arriving after the app has stopped.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.typeDropDown = tview.NewDropDown().SetLabel("Type")
	options := make([]string, 0, len(workout.AllKinds))
	for _, k := range workout.AllKinds {
		options = append(options, k.Title())
	}
	ui.typeDropDown.SetOptions(options, nil)
	ui.typeDropDown.SetCurrentOption(0)

	numberField := func(label, placeholder string) *tview.InputField {
		return tview.NewInputField().
			SetLabel(label).
			SetPlaceholder(placeholder).
			SetFieldWidth(12).
			SetAcceptanceFunc(tview.InputFieldFloat)
	}
	ui.distanceField = numberField("Distance", "km")
	ui.durationField = numberField("Duration", "min")
	ui.cadenceField = numberField("Cadence", "step/min")
	ui.elevationField = numberField("Elev Gain", "meters")

	ui.form = tview.NewForm().
		AddFormItem(ui.typeDropDown).
		AddFormItem(ui.distanceField).
		AddFormItem(ui.durationField).
		AddFormItem(ui.cadenceField)
	ui.secondaryKind = workout.KindRunning
	ui.form.SetBorder(true).SetTitle(" New workout ")

	ui.workoutList = tview.NewList().ShowSecondaryText(true)
	ui.workoutList.SetBorder(true).SetTitle(" Workouts ")

	ui.sidebar = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.form, 0, 0, false).
		AddItem(ui.workoutList, 0, 1, false)

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.sidebar, sidebarWidth, 0, false).
		AddItem(ui.mapWidget, 0, 1, true)

	ui.mainFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.hints, 1, 0, false).
		AddItem(body, 0, 1, true).
		AddItem(ui.logView, logPaneHeight, 0, false)

	ui.pages = tview.NewPages().AddPage(pageMain, ui.mainFlex, true, true)

	ui.tabWidgets = []tview.Primitive{ui.mapWidget, ui.workoutList, ui.logView}
}

// Initialize wires widget callbacks to the controller
func (ui *CursesUIViewImpl) Initialize(controller *App) {
	ui.typeDropDown.SetSelectedFunc(func(text string, index int) {
		controller.ToggleExerciseFields()
	})
	ui.form.AddButton("OK", controller.SubmitForm)
	ui.form.AddButton("Cancel", controller.CancelForm)

	ui.workoutList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if index < 0 || index >= len(ui.workoutIDs) {
			return
		}
		controller.HandleListClick(ui.workoutIDs[index])
	})
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *App) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if ui.pages.HasPage(pageAlert) {
			return event
		}

		switch event.Key() {
		case tcell.KeyCtrlR:
			controller.Reset()
			return nil

		case tcell.KeyEscape:
			if controller.State() == StateAwaitingInput {
				controller.CancelForm()
			} else {
				ui.Stop()
			}
			return nil

		case tcell.KeyEnter:
			if ui.numberFieldHasFocus() {
				controller.SubmitForm()
				return nil
			}

		case tcell.KeyTab:
			// Tab inside the form moves between its fields
			if ui.form.HasFocus() {
				return event
			}
			ui.focusNext()
			return nil
		}
		return event
	})
}

func (ui *CursesUIViewImpl) numberFieldHasFocus() bool {
	for _, f := range []*tview.InputField{ui.distanceField, ui.durationField, ui.cadenceField, ui.elevationField} {
		if f.HasFocus() {
			return true
		}
	}
	return false
}

func (ui *CursesUIViewImpl) focusNext() {
	count := len(ui.tabWidgets)
	for i, w := range ui.tabWidgets {
		if w.HasFocus() {
			ui.app.SetFocus(ui.tabWidgets[(i+1)%count])
			return
		}
	}
	ui.app.SetFocus(ui.tabWidgets[0])
}

// Map returns the map widget
func (ui *CursesUIViewImpl) Map() *MapWidget {
	return ui.mapWidget
}

// ShowForm implements FormView
func (ui *CursesUIViewImpl) ShowForm() {
	ui.sidebar.ResizeItem(ui.form, formHeight, 0)
	ui.form.SetFocus(1)
	ui.app.SetFocus(ui.form)
}

// HideForm implements FormView
func (ui *CursesUIViewImpl) HideForm() {
	ui.sidebar.ResizeItem(ui.form, 0, 0)
	ui.app.SetFocus(ui.mapWidget)
}

// ClearFields implements FormView
func (ui *CursesUIViewImpl) ClearFields() {
	ui.distanceField.SetText("")
	ui.durationField.SetText("")
	ui.cadenceField.SetText("")
	ui.elevationField.SetText("")
}

// SetSecondaryField implements FormView
func (ui *CursesUIViewImpl) SetSecondaryField(kind workout.Kind) {
	if kind == ui.secondaryKind {
		return
	}
	field := ui.cadenceField
	if kind == workout.KindCycling {
		field = ui.elevationField
	}
	ui.form.RemoveFormItem(secondaryFieldIndex)
	ui.form.AddFormItem(field)
	ui.secondaryKind = kind
}

// Fields implements FormView
func (ui *CursesUIViewImpl) Fields() FormFields {
	_, kind := ui.typeDropDown.GetCurrentOption()
	return FormFields{
		Kind:      kind,
		Distance:  ui.distanceField.GetText(),
		Duration:  ui.durationField.GetText(),
		Cadence:   ui.cadenceField.GetText(),
		Elevation: ui.elevationField.GetText(),
	}
}

// RenderWorkout implements ListView
func (ui *CursesUIViewImpl) RenderWorkout(w workout.Workout) {
	color := "white"
	if c, ok := popupColors[w.PopupClass()]; ok {
		color = c.Name()
	}
	mainText := fmt.Sprintf("[%s]▌[white] %s", color, tview.Escape(w.Description))
	ui.workoutList.InsertItem(0, mainText, "  "+w.Summary(), 0, nil)
	ui.workoutIDs = append([]string{w.ID}, ui.workoutIDs...)
}

// ClearWorkouts implements ListView
func (ui *CursesUIViewImpl) ClearWorkouts() {
	ui.workoutList.Clear()
	ui.workoutIDs = nil
}

// Alert implements Alerter. The modal captures input until dismissed.
func (ui *CursesUIViewImpl) Alert(message string) {
	previous := ui.app.GetFocus()
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			ui.pages.RemovePage(pageAlert)
			if previous != nil {
				ui.app.SetFocus(previous)
			}
		})
	ui.pages.AddPage(pageAlert, modal, false, true)
	ui.app.SetFocus(modal)
}

// Dispatch queues fn to run on the UI event loop, followed by a redraw.
// Calls made after Stop are dropped.
func (ui *CursesUIViewImpl) Dispatch(fn func()) {
	select {
	case <-ui.stopped:
		return
	default:
	}
	ui.app.QueueUpdateDraw(fn)
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ShowLogLines replaces the log pane content. The update is applied
// asynchronously; only the latest lines are drawn.
func (ui *CursesUIViewImpl) ShowLogLines(lines []string) {
	ui.pendingLogMu.Lock()
	ui.pendingLog = lines
	ui.pendingLogMu.Unlock()

	go_func_utils.SafeGo(ui.logger, "log pane update", func() {
		ui.Dispatch(func() {
			ui.pendingLogMu.Lock()
			text := strings.Join(ui.pendingLog, "\n")
			ui.pendingLogMu.Unlock()
			ui.logView.SetText(tview.Escape(text))
		})
	})
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.pages, true).EnableMouse(true)
	ui.app.SetFocus(ui.mapWidget)
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.stopOnce.Do(func() {
		close(ui.stopped)
		ui.app.Stop()
	})
}
