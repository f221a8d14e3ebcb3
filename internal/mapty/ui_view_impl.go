package mapty

import (
	"github.com/lowaak/mapty/internal/workout"
)

// MapAdapter wraps the map widget
type MapAdapter interface {
	// Initialize shows the map centred on center at the given zoom level
	Initialize(center workout.Coords, zoom int)

	// OnClick registers handler for clicks on the map surface.
	// Returns a deregistration function.
	OnClick(handler func(workout.Coords)) func()

	// RenderMarker places a marker with a popup that stays open
	RenderMarker(coords workout.Coords, popupText, styleClass string)

	// PanTo recentres the view at the given zoom, optionally animated
	PanTo(coords workout.Coords, zoom int, animate bool)

	// Clear removes every marker and returns the map to its uninitialized state
	Clear()
}

// FormFields are the raw, unparsed form values
type FormFields struct {
	Kind      string
	Distance  string
	Duration  string
	Cadence   string
	Elevation string
}

// FormView is the widget side of the input form
type FormView interface {
	// ShowForm reveals the form and focuses the distance field
	ShowForm()

	// HideForm hides the form
	HideForm()

	// ClearFields empties the numeric fields
	ClearFields()

	// SetSecondaryField shows cadence for running or elevation for cycling
	SetSecondaryField(kind workout.Kind)

	// Fields returns the current raw values
	Fields() FormFields
}

// ListView renders the workout list, newest entry first
type ListView interface {
	RenderWorkout(w workout.Workout)
	ClearWorkouts()
}

// Alerter shows a blocking message to the user
type Alerter interface {
	Alert(message string)
}

// UIViewImpl is the framework-specific shell around the views
type UIViewImpl interface {
	// Initialize wires widget callbacks to the controller
	Initialize(controller *App)

	// SetupKeyboardHandlers installs global key bindings
	SetupKeyboardHandlers(controller *App)

	// Run starts the UI framework and blocks until it exits
	Run() error

	// Stop stops the UI framework
	Stop()

	// GetLogViewHeight returns the visible height of the log pane
	GetLogViewHeight() int

	// ShowLogLines replaces the log pane content
	ShowLogLines(lines []string)
}
