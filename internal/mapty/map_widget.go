package mapty

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/mapty/internal/events"
	"github.com/lowaak/mapty/internal/go_func_utils"
	"github.com/lowaak/mapty/internal/workout"
)

type mapMarker struct {
	coords     workout.Coords
	popupText  string
	styleClass string
}

// MapWidget is a tview primitive that projects coordinates onto terminal
// cells. A crosshair stands in for the mouse pointer when using the keyboard.
type MapWidget struct {
	*tview.Box

	ready   bool
	center  workout.Coords
	cursor  workout.Coords
	zoom    int
	markers []mapMarker

	clickEvent  *events.CallbackEvent[workout.Coords]
	panSeq      int
	panDuration time.Duration
	// queue runs fn on the UI event loop; used by the pan animation
	queue  func(fn func())
	logger *log.Logger
}

func NewMapWidget(logger *log.Logger, panDuration time.Duration, queue func(fn func())) *MapWidget {
	if logger == nil {
		panic("MapWidget: logger cannot be nil")
	}
	if queue == nil {
		panic("MapWidget: queue cannot be nil")
	}
	m := &MapWidget{
		Box:         tview.NewBox(),
		zoom:        DefaultZoom,
		clickEvent:  events.NewCallbackEvent[workout.Coords](false),
		panDuration: panDuration,
		queue:       queue,
		logger:      logger,
	}
	m.SetBorder(true).SetTitle(" Map ")
	return m
}

// Initialize implements MapAdapter
func (m *MapWidget) Initialize(center workout.Coords, zoom int) {
	m.ready = true
	m.center = center
	m.cursor = center
	m.zoom = clampZoom(zoom)
	m.SetTitle(fmt.Sprintf(" Map %s ", center))
}

// OnClick implements MapAdapter
func (m *MapWidget) OnClick(handler func(workout.Coords)) func() {
	return m.clickEvent.Listen(handler)
}

// RenderMarker implements MapAdapter
func (m *MapWidget) RenderMarker(coords workout.Coords, popupText, styleClass string) {
	m.markers = append(m.markers, mapMarker{coords: coords, popupText: popupText, styleClass: styleClass})
}

// PanTo implements MapAdapter. The zoom changes at once; an animated pan
// eases the centre towards coords over the pan duration and a newer pan
// supersedes a running one.
func (m *MapWidget) PanTo(coords workout.Coords, zoom int, animate bool) {
	m.zoom = clampZoom(zoom)
	m.cursor = coords
	m.panSeq++
	if !animate || m.panDuration <= 0 {
		m.center = coords
		return
	}

	seq := m.panSeq
	from := m.center
	interval := m.panDuration / panSteps
	go_func_utils.SafeGo(m.logger, "MapWidget pan", func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := 1; i <= panSteps; i++ {
			<-ticker.C
			pos := interpolate(from, coords, easeInOut(float64(i)/panSteps))
			if i == panSteps {
				pos = coords
			}
			m.queue(func() {
				if seq != m.panSeq {
					return
				}
				m.center = pos
			})
		}
	})
}

// Clear implements MapAdapter
func (m *MapWidget) Clear() {
	m.ready = false
	m.markers = nil
	m.panSeq++
	m.SetTitle(" Map ")
}

// Ready reports whether the map has been initialized
func (m *MapWidget) Ready() bool {
	return m.ready
}

// Center returns the current view centre
func (m *MapWidget) Center() workout.Coords {
	return m.center
}

// Cursor returns the crosshair position
func (m *MapWidget) Cursor() workout.Coords {
	return m.cursor
}

// Zoom returns the current zoom level
func (m *MapWidget) Zoom() int {
	return m.zoom
}

// MarkerCount returns the number of markers placed since the last Clear
func (m *MapWidget) MarkerCount() int {
	return len(m.markers)
}

// SetZoom changes the zoom level within MinZoom..MaxZoom
func (m *MapWidget) SetZoom(zoom int) {
	m.zoom = clampZoom(zoom)
}

// ClickAt notifies click listeners as if the map had been clicked at coords
func (m *MapWidget) ClickAt(coords workout.Coords) {
	if !m.ready {
		return
	}
	m.cursor = coords
	m.clickEvent.Notify(coords)
}

// MoveCursor shifts the crosshair by whole cells, recentring the view when
// it leaves the visible area.
func (m *MapWidget) MoveCursor(dCol, dRow int) {
	if !m.ready {
		return
	}
	lat := m.cursor.Lat() - float64(dRow)*degPerRow(m.zoom)
	lng := m.cursor.Lng() + float64(dCol)*degPerCol(m.zoom)
	m.cursor = workout.Coords{clampLat(lat), wrapLng(lng)}

	x, y, width, height := m.GetInnerRect()
	if width <= 0 || height <= 0 {
		return
	}
	col, row := m.project(m.cursor, x, y, width, height)
	if col < x || col >= x+width || row < y || row >= y+height-1 {
		m.center = m.cursor
	}
}

// unproject converts a screen cell to coordinates for the given inner rect
func (m *MapWidget) unproject(col, row, x, y, width, height int) workout.Coords {
	cx, cy := x+width/2, y+height/2
	lat := m.center.Lat() - float64(row-cy)*degPerRow(m.zoom)
	lng := m.center.Lng() + float64(col-cx)*degPerCol(m.zoom)
	return workout.Coords{clampLat(lat), wrapLng(lng)}
}

// project converts coordinates to a screen cell for the given inner rect
func (m *MapWidget) project(c workout.Coords, x, y, width, height int) (int, int) {
	cx, cy := x+width/2, y+height/2
	col := cx + int(math.Round((c.Lng()-m.center.Lng())/degPerCol(m.zoom)))
	row := cy - int(math.Round((c.Lat()-m.center.Lat())/degPerRow(m.zoom)))
	return col, row
}

// Draw draws the grid, markers with their popups, the crosshair and a status line
func (m *MapWidget) Draw(screen tcell.Screen) {
	m.DrawForSubclass(screen, m)
	x, y, width, height := m.GetInnerRect()
	if width <= 0 || height <= 0 {
		return
	}

	if !m.ready {
		tview.Print(screen, mapUnavailableText, x, y+height/2, width, tview.AlignCenter, tcell.ColorGray)
		tview.Print(screen, mapPositionHint, x, y+height/2+1, width, tview.AlignCenter, tcell.ColorGray)
		return
	}

	gridStyle := tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	for row := y; row < y+height-1; row++ {
		for col := x; col < x+width; col++ {
			c := m.unproject(col, row, x, y, width, height)
			gc := int(math.Floor(c.Lng() / degPerCol(m.zoom)))
			gr := int(math.Floor(c.Lat() / degPerRow(m.zoom)))
			if gc%gridColEvery == 0 && gr%gridRowEvery == 0 {
				screen.SetContent(col, row, '·', nil, gridStyle)
			}
		}
	}

	for _, mk := range m.markers {
		col, row := m.project(mk.coords, x, y, width, height)
		if col < x || col >= x+width || row < y || row >= y+height-1 {
			continue
		}
		color, ok := popupColors[mk.styleClass]
		if !ok {
			color = tcell.ColorWhite
		}
		screen.SetContent(col, row, '●', nil, tcell.StyleDefault.Foreground(color))
		if row-1 >= y {
			m.drawPopup(screen, mk.popupText, color, col, row-1, x, width)
		}
	}

	col, row := m.project(m.cursor, x, y, width, height)
	if col >= x && col < x+width && row >= y && row < y+height-1 {
		screen.SetContent(col, row, '+', nil, tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
	}

	status := fmt.Sprintf("%s  zoom %d", m.cursor, m.zoom)
	tview.Print(screen, status, x, y+height-1, width, tview.AlignRight, tcell.ColorGray)
}

func (m *MapWidget) drawPopup(screen tcell.Screen, text string, color tcell.Color, col, row, x, width int) {
	popupWidth := tview.TaggedStringWidth(text) + 2
	if popupWidth < popupMinWidth {
		popupWidth = popupMinWidth
	}
	if popupWidth > popupMaxWidth {
		popupWidth = popupMaxWidth
	}
	left := col - popupWidth/2
	if left < x {
		left = x
	}
	if left+popupWidth > x+width {
		left = x + width - popupWidth
	}
	if left < x {
		return
	}
	style := tcell.StyleDefault.Background(tcell.ColorBlack)
	screen.SetContent(left, row, '▌', nil, style.Foreground(color))
	for i := 1; i < popupWidth; i++ {
		screen.SetContent(left+i, row, ' ', nil, style)
	}
	tview.Print(screen, tview.Escape(text), left+1, row, popupWidth-1, tview.AlignLeft, tcell.ColorWhite)
}

// InputHandler moves the crosshair with the arrow keys, clicks with Enter
// and zooms with + and -
func (m *MapWidget) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return m.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		switch event.Key() {
		case tcell.KeyUp:
			m.MoveCursor(0, -1)
		case tcell.KeyDown:
			m.MoveCursor(0, 1)
		case tcell.KeyLeft:
			m.MoveCursor(-1, 0)
		case tcell.KeyRight:
			m.MoveCursor(1, 0)
		case tcell.KeyEnter:
			m.ClickAt(m.cursor)
		case tcell.KeyRune:
			switch event.Rune() {
			case '+', '=':
				m.SetZoom(m.zoom + 1)
			case '-', '_':
				m.SetZoom(m.zoom - 1)
			}
		}
	})
}

// MouseHandler turns a left click inside the map into a map click
func (m *MapWidget) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return m.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
		if action != tview.MouseLeftClick || !m.InRect(event.Position()) {
			return false, nil
		}
		setFocus(m)
		x, y, width, height := m.GetInnerRect()
		col, row := event.Position()
		if col < x || col >= x+width || row < y || row >= y+height-1 {
			return true, nil
		}
		m.ClickAt(m.unproject(col, row, x, y, width, height))
		return true, nil
	})
}

func degPerCol(zoom int) float64 {
	return 360 / (math.Exp2(float64(zoom)) * cellsPerTile)
}

func degPerRow(zoom int) float64 {
	return rowAspect * degPerCol(zoom)
}

func clampZoom(zoom int) int {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}

func clampLat(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

func wrapLng(lng float64) float64 {
	if lng >= -180 && lng < 180 {
		return lng
	}
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}

func interpolate(from, to workout.Coords, t float64) workout.Coords {
	return workout.Coords{
		from.Lat() + (to.Lat()-from.Lat())*t,
		from.Lng() + (to.Lng()-from.Lng())*t,
	}
}

func easeInOut(t float64) float64 {
	return t * t * (3 - 2*t)
}
