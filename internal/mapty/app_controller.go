package mapty

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lowaak/mapty/internal/geo"
	"github.com/lowaak/mapty/internal/go_func_utils"
	"github.com/lowaak/mapty/internal/workout"
)

// ErrInvalidInput is returned for non-finite or non-positive form values
var ErrInvalidInput = errors.New("invalid workout input")

// WorkoutStore persists the workout list
type WorkoutStore interface {
	Save(workouts []workout.Workout) error
	Load() []workout.Workout
	Clear() error
}

// NewAppArg holds the collaborators of App
type NewAppArg struct {
	Store   WorkoutStore
	Locator geo.Locator
	Map     MapAdapter
	Form    FormView
	List    ListView
	Alerter Alerter
	Logger  *log.Logger

	Zoom       int
	GeoTimeout time.Duration

	// Dispatch runs fn on the UI event loop
	Dispatch func(fn func())
	// Go starts background work; defaults to a panic-logging goroutine
	Go func(name string, fn func())
}

// App is the application controller. It owns the in-memory workout list
// and drives every side effect. All methods must run on the UI event loop.
type App struct {
	store    WorkoutStore
	locator  geo.Locator
	mapView  MapAdapter
	form     *FormController
	list     ListView
	alerter  Alerter
	logger   *log.Logger
	dispatch func(fn func())
	goFn     func(name string, fn func())

	zoom       int
	geoTimeout time.Duration

	ctx             context.Context
	workouts        []workout.Workout
	mapReady        bool
	unregisterClick func()
	// bumped by Reset so a position arriving for an earlier Initialize is dropped
	generation int
}

func NewApp(args NewAppArg) *App {
	if args.Store == nil {
		panic("App: store cannot be nil")
	}
	if args.Locator == nil {
		panic("App: locator cannot be nil")
	}
	if args.Map == nil {
		panic("App: map cannot be nil")
	}
	if args.Form == nil {
		panic("App: form cannot be nil")
	}
	if args.List == nil {
		panic("App: list cannot be nil")
	}
	if args.Alerter == nil {
		panic("App: alerter cannot be nil")
	}
	if args.Logger == nil {
		panic("App: logger cannot be nil")
	}
	if args.Dispatch == nil {
		panic("App: dispatch cannot be nil")
	}

	a := &App{
		store:      args.Store,
		locator:    args.Locator,
		mapView:    args.Map,
		form:       NewFormController(args.Form, args.Logger),
		list:       args.List,
		alerter:    args.Alerter,
		logger:     args.Logger,
		dispatch:   args.Dispatch,
		goFn:       args.Go,
		zoom:       args.Zoom,
		geoTimeout: args.GeoTimeout,
		ctx:        context.Background(),
	}
	if a.goFn == nil {
		a.goFn = func(name string, fn func()) { go_func_utils.SafeGo(args.Logger, name, fn) }
	}
	if a.zoom < MinZoom || a.zoom > MaxZoom {
		a.zoom = DefaultZoom
	}
	if a.geoTimeout <= 0 {
		a.geoTimeout = DefaultGeoTimeout
	}
	return a
}

// Initialize restores persisted workouts into the list and asks for the
// current position. The map comes up only if the position is found.
func (a *App) Initialize(ctx context.Context) {
	a.ctx = ctx
	a.workouts = a.store.Load()
	for _, w := range a.workouts {
		a.list.RenderWorkout(w)
	}
	a.logger.Printf("App: restored %d workouts", len(a.workouts))

	gen := a.generation
	timeout := a.geoTimeout
	a.goFn("geolocation", func() {
		locateCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		pos, err := a.locator.Locate(locateCtx)
		a.dispatch(func() {
			if gen != a.generation {
				return
			}
			if err != nil {
				a.logger.Printf("App: can't find location: %v", err)
				return
			}
			a.loadMap(pos)
		})
	})
}

func (a *App) loadMap(pos workout.Coords) {
	a.logger.Printf("App: position %s, showing map", pos)
	a.mapView.Initialize(pos, a.zoom)
	a.unregisterClick = a.mapView.OnClick(a.HandleMapClick)
	a.mapReady = true
	for _, w := range a.workouts {
		a.renderMarker(w)
	}
}

// HandleMapClick opens the form for the clicked spot
func (a *App) HandleMapClick(coords workout.Coords) {
	a.form.Show(coords)
	a.logger.Printf("App: map clicked at %s", coords)
}

// ToggleExerciseFields follows a change of the type selector
func (a *App) ToggleExerciseFields() {
	a.form.ToggleExerciseFields()
}

// SubmitForm reads the form and hands it to HandleSubmit
func (a *App) SubmitForm() {
	sub, ok := a.form.ReadSubmission()
	if !ok {
		a.logger.Printf("App: submit ignored, no map click pending")
		return
	}
	a.HandleSubmit(sub)
}

// HandleSubmit validates sub, then records the workout everywhere: list,
// map, view and storage. Invalid input raises an alert and changes nothing.
func (a *App) HandleSubmit(sub Submission) {
	w, err := buildWorkout(sub)
	if err != nil {
		a.logger.Printf("App: rejected submission: %v", err)
		a.alerter.Alert(InvalidInputMessage)
		return
	}

	a.workouts = append(a.workouts, w)
	if a.mapReady {
		a.renderMarker(w)
	}
	a.list.RenderWorkout(w)
	a.form.Hide()
	a.logger.Printf("App: added %s (%s)", w.Description, w.ID)

	if err := a.store.Save(a.workouts); err != nil {
		a.logger.Printf("App: saving workouts failed: %v", err)
	}
}

// CancelForm hides the form without recording anything
func (a *App) CancelForm() {
	if !a.form.Visible() {
		return
	}
	a.form.Hide()
}

// HandleListClick pans the map to the workout with the given id and
// restores the initial zoom. Unknown ids and an unavailable map are ignored.
func (a *App) HandleListClick(id string) {
	w, ok := a.findWorkout(id)
	if !ok {
		a.logger.Printf("App: no workout with id %q", id)
		return
	}
	if !a.mapReady {
		return
	}
	a.mapView.PanTo(w.Coordinates, a.zoom, true)
}

// Reset deletes all stored workouts and starts over from an empty state
func (a *App) Reset() {
	if err := a.store.Clear(); err != nil {
		a.logger.Printf("App: clearing storage failed: %v", err)
	}
	a.generation++
	if a.unregisterClick != nil {
		a.unregisterClick()
		a.unregisterClick = nil
	}
	a.workouts = nil
	a.mapReady = false
	a.form.Hide()
	a.list.ClearWorkouts()
	a.mapView.Clear()
	a.logger.Printf("App: reset")

	a.Initialize(a.ctx)
}

// Workouts returns a copy of the in-memory list
func (a *App) Workouts() []workout.Workout {
	out := make([]workout.Workout, len(a.workouts))
	copy(out, a.workouts)
	return out
}

// State reports whether the controller is waiting for form input
func (a *App) State() AppState {
	if a.form.Visible() {
		return StateAwaitingInput
	}
	return StateIdle
}

// PendingClick returns the map click the open form belongs to
func (a *App) PendingClick() (workout.Coords, bool) {
	return a.form.Anchor()
}

// MapReady reports whether the map has been initialized
func (a *App) MapReady() bool {
	return a.mapReady
}

func (a *App) findWorkout(id string) (workout.Workout, bool) {
	for _, w := range a.workouts {
		if w.ID == id {
			return w, true
		}
	}
	return workout.Workout{}, false
}

func (a *App) renderMarker(w workout.Workout) {
	a.mapView.RenderMarker(w.Coordinates, w.PopupText(), w.PopupClass())
}

func buildWorkout(sub Submission) (workout.Workout, error) {
	kind, err := workout.ParseKind(sub.Kind)
	if err != nil {
		return workout.Workout{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	distance := parseNumber(sub.Distance)
	duration := parseNumber(sub.Duration)

	switch kind {
	case workout.KindRunning:
		cadence := parseNumber(sub.Cadence)
		if !allFinite(distance, duration, cadence) || !allPositive(distance, duration, cadence) {
			return workout.Workout{}, fmt.Errorf("%w: distance=%q duration=%q cadence=%q", ErrInvalidInput, sub.Distance, sub.Duration, sub.Cadence)
		}
		w := workout.NewRunning(distance, duration, sub.Coords, cadence)
		if !allFinite(w.Running.Pace) {
			return workout.Workout{}, fmt.Errorf("%w: pace out of range for distance=%q duration=%q", ErrInvalidInput, sub.Distance, sub.Duration)
		}
		return w, nil
	default:
		elevation := parseNumber(sub.Elevation)
		if !allFinite(distance, duration, elevation) || !allPositive(distance, duration) {
			return workout.Workout{}, fmt.Errorf("%w: distance=%q duration=%q elevation=%q", ErrInvalidInput, sub.Distance, sub.Duration, sub.Elevation)
		}
		w := workout.NewCycling(distance, duration, sub.Coords, elevation)
		if !allFinite(w.Cycling.Speed) {
			return workout.Workout{}, fmt.Errorf("%w: speed out of range for distance=%q duration=%q", ErrInvalidInput, sub.Distance, sub.Duration)
		}
		return w, nil
	}
}

// parseNumber reads a form value; blank is 0 and anything unparsable is NaN
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func allFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func allPositive(values ...float64) bool {
	for _, v := range values {
		if !(v > 0) {
			return false
		}
	}
	return true
}
