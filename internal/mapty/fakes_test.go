package mapty

import (
	"bytes"
	"context"
	"log"

	"github.com/lowaak/mapty/internal/events"
	"github.com/lowaak/mapty/internal/workout"
)

type renderedMarker struct {
	coords     workout.Coords
	popupText  string
	styleClass string
}

type fakeMap struct {
	initialized bool
	center      workout.Coords
	zoom        int
	markers     []renderedMarker
	pans        []workout.Coords
	clears      int
	clicks      *events.CallbackEvent[workout.Coords]
}

func newFakeMap() *fakeMap {
	return &fakeMap{clicks: events.NewCallbackEvent[workout.Coords](false)}
}

func (m *fakeMap) Initialize(center workout.Coords, zoom int) {
	m.initialized = true
	m.center = center
	m.zoom = zoom
}

func (m *fakeMap) OnClick(handler func(workout.Coords)) func() {
	return m.clicks.Listen(handler)
}

func (m *fakeMap) RenderMarker(coords workout.Coords, popupText, styleClass string) {
	m.markers = append(m.markers, renderedMarker{coords, popupText, styleClass})
}

func (m *fakeMap) PanTo(coords workout.Coords, zoom int, animate bool) {
	m.pans = append(m.pans, coords)
	m.center = coords
	m.zoom = zoom
}

func (m *fakeMap) Clear() {
	m.initialized = false
	m.markers = nil
	m.clears++
}

func (m *fakeMap) click(coords workout.Coords) {
	m.clicks.Notify(coords)
}

type fakeForm struct {
	fields    FormFields
	visible   bool
	secondary workout.Kind
	clears    int
}

func newFakeForm() *fakeForm {
	return &fakeForm{fields: FormFields{Kind: "Running"}, secondary: workout.KindRunning}
}

func (f *fakeForm) ShowForm() { f.visible = true }
func (f *fakeForm) HideForm() { f.visible = false }

func (f *fakeForm) ClearFields() {
	f.clears++
	f.fields.Distance = ""
	f.fields.Duration = ""
	f.fields.Cadence = ""
	f.fields.Elevation = ""
}

func (f *fakeForm) SetSecondaryField(kind workout.Kind) { f.secondary = kind }
func (f *fakeForm) Fields() FormFields                  { return f.fields }

type fakeList struct {
	entries []workout.Workout // newest first
}

func (l *fakeList) RenderWorkout(w workout.Workout) {
	l.entries = append([]workout.Workout{w}, l.entries...)
}

func (l *fakeList) ClearWorkouts() { l.entries = nil }

type fakeAlerter struct {
	messages []string
}

func (a *fakeAlerter) Alert(message string) { a.messages = append(a.messages, message) }

type fakeStore struct {
	saved   [][]workout.Workout
	stored  []workout.Workout
	cleared int
	saveErr error
}

func (s *fakeStore) Save(workouts []workout.Workout) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	cp := make([]workout.Workout, len(workouts))
	copy(cp, workouts)
	s.saved = append(s.saved, cp)
	s.stored = cp
	return nil
}

func (s *fakeStore) Load() []workout.Workout {
	cp := make([]workout.Workout, len(s.stored))
	copy(cp, s.stored)
	return cp
}

func (s *fakeStore) Clear() error {
	s.cleared++
	s.stored = nil
	return nil
}

// sequenceLocator answers each call with the next queued result
type sequenceLocator struct {
	results []locateResult
	calls   int
}

type locateResult struct {
	coords workout.Coords
	err    error
}

func (l *sequenceLocator) Locate(ctx context.Context) (workout.Coords, error) {
	if l.calls >= len(l.results) {
		return workout.Coords{}, context.DeadlineExceeded
	}
	r := l.results[l.calls]
	l.calls++
	return r.coords, r.err
}

// deferredRunner queues background work so tests decide when it runs.
// Dispatched callbacks run inline on the test goroutine.
type deferredRunner struct {
	background []func()
}

func (r *deferredRunner) Go(name string, fn func()) {
	r.background = append(r.background, fn)
}

func (r *deferredRunner) Dispatch(fn func()) { fn() }

// runAll runs queued background work synchronously
func (r *deferredRunner) runAll() {
	for len(r.background) > 0 {
		fn := r.background[0]
		r.background = r.background[1:]
		fn()
	}
}

func testLogger() *log.Logger {
	return log.New(&bytes.Buffer{}, "", 0)
}
