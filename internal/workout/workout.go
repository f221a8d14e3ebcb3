// Package workout defines the logged workout record and its two variants.
package workout

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the workout variants
type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

// AllKinds lists the variants in the order the form offers them
var AllKinds = []Kind{KindRunning, KindCycling}

// ErrUnknownKind is returned when a kind string is neither running nor cycling
var ErrUnknownKind = errors.New("unknown workout kind")

// ParseKind converts a form/storage value into a Kind
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindRunning:
		return KindRunning, nil
	case KindCycling:
		return KindCycling, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Title returns the capitalized kind name, e.g. "Running"
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Coords is a latitude/longitude pair, serialized as a two element array
type Coords [2]float64

func (c Coords) Lat() float64 { return c[0] }
func (c Coords) Lng() float64 { return c[1] }

func (c Coords) String() string {
	return fmt.Sprintf("%.5f, %.5f", c[0], c[1])
}

// Running holds the running-only fields
type Running struct {
	Cadence float64 // steps/min
	Pace    float64 // min/km
}

// Cycling holds the cycling-only fields
type Cycling struct {
	ElevationGain float64 // meters, may be zero or negative
	Speed         float64 // km/h
}

// Workout is a tagged union: exactly one of Running/Cycling is set, matching Kind.
// Values are never mutated after construction.
type Workout struct {
	ID          string
	Date        time.Time
	Distance    float64 // km
	Duration    float64 // min
	Coordinates Coords
	Kind        Kind
	Description string

	Running *Running
	Cycling *Cycling
}

// now and newID are swapped in tests
var (
	now   = time.Now
	newID = func() string {
		id, err := uuid.NewV7()
		if err != nil {
			return uuid.NewString()
		}
		return id.String()
	}
)

func newBase(kind Kind, distance, duration float64, coords Coords) Workout {
	return Workout{
		ID:          newID(),
		Date:        now(),
		Distance:    distance,
		Duration:    duration,
		Coordinates: coords,
		Kind:        kind,
	}
}

// NewRunning builds a running workout. Inputs are expected to be validated by the caller.
func NewRunning(distance, duration float64, coords Coords, cadence float64) Workout {
	w := newBase(KindRunning, distance, duration, coords)
	w.Running = &Running{
		Cadence: cadence,
		Pace:    duration / distance,
	}
	w.Description = Describe(w)
	return w
}

// NewCycling builds a cycling workout. Inputs are expected to be validated by the caller.
func NewCycling(distance, duration float64, coords Coords, elevationGain float64) Workout {
	w := newBase(KindCycling, distance, duration, coords)
	w.Cycling = &Cycling{
		ElevationGain: elevationGain,
		Speed:         distance / (duration / 60),
	}
	w.Description = Describe(w)
	return w
}

// Describe renders "{Kind} on {Month} {day}" from the workout's date
func Describe(w Workout) string {
	return fmt.Sprintf("%s on %s %d", w.Kind.Title(), w.Date.Month(), w.Date.Day())
}

// Icon returns the glyph used for a kind in the list and on popups
func Icon(kind Kind) string {
	if kind == KindRunning {
		return "🏃"
	}
	return "🚴"
}

// PopupClass is the marker popup style for the workout's kind
func (w Workout) PopupClass() string {
	return string(w.Kind) + "-popup"
}

// PopupText is the text shown in the marker popup
func (w Workout) PopupText() string {
	return fmt.Sprintf("%s %s", Icon(w.Kind), w.Description)
}

// Detail is one labelled value of the list entry
type Detail struct {
	Icon  string
	Value string
	Unit  string
}

// Details returns the list-entry values: distance, duration, then the
// variant metric and variant input.
func (w Workout) Details() []Detail {
	details := []Detail{
		{Icon: Icon(w.Kind), Value: formatRaw(w.Distance), Unit: "km"},
		{Icon: "⏱", Value: formatRaw(w.Duration), Unit: "min"},
	}
	switch w.Kind {
	case KindRunning:
		if w.Running != nil {
			details = append(details,
				Detail{Icon: "⚡", Value: formatFixed1(w.Running.Pace), Unit: "min/km"},
				Detail{Icon: "🦶", Value: formatFixed1(w.Running.Cadence), Unit: "spm"},
			)
		}
	case KindCycling:
		if w.Cycling != nil {
			details = append(details,
				Detail{Icon: "⚡", Value: formatFixed1(w.Cycling.Speed), Unit: "km/h"},
				Detail{Icon: "⛰", Value: formatRaw(w.Cycling.ElevationGain), Unit: "m"},
			)
		}
	}
	return details
}

// Summary joins Details into one line
func (w Workout) Summary() string {
	parts := make([]string, 0, 4)
	for _, d := range w.Details() {
		parts = append(parts, fmt.Sprintf("%s %s %s", d.Icon, d.Value, d.Unit))
	}
	return strings.Join(parts, "   ")
}

func formatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFixed1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// record is the flat persisted shape shared by JSON and YAML
type record struct {
	ID            string    `json:"id" yaml:"id"`
	Date          time.Time `json:"date" yaml:"date"`
	Distance      float64   `json:"distance" yaml:"distance"`
	Duration      float64   `json:"duration" yaml:"duration"`
	Coordinates   Coords    `json:"coordinates" yaml:"coordinates,flow"`
	Kind          Kind      `json:"kind" yaml:"kind"`
	Description   string    `json:"description" yaml:"description"`
	Cadence       *float64  `json:"cadence,omitempty" yaml:"cadence,omitempty"`
	Pace          *float64  `json:"pace,omitempty" yaml:"pace,omitempty"`
	ElevationGain *float64  `json:"elevationGain,omitempty" yaml:"elevationGain,omitempty"`
	Speed         *float64  `json:"speed,omitempty" yaml:"speed,omitempty"`
}

func (w Workout) toRecord() record {
	r := record{
		ID:          w.ID,
		Date:        w.Date,
		Distance:    w.Distance,
		Duration:    w.Duration,
		Coordinates: w.Coordinates,
		Kind:        w.Kind,
		Description: w.Description,
	}
	if w.Running != nil {
		r.Cadence = &w.Running.Cadence
		r.Pace = &w.Running.Pace
	}
	if w.Cycling != nil {
		r.ElevationGain = &w.Cycling.ElevationGain
		r.Speed = &w.Cycling.Speed
	}
	return r
}

func (r record) toWorkout() (Workout, error) {
	w := Workout{
		ID:          r.ID,
		Date:        r.Date,
		Distance:    r.Distance,
		Duration:    r.Duration,
		Coordinates: r.Coordinates,
		Kind:        r.Kind,
		Description: r.Description,
	}
	switch r.Kind {
	case KindRunning:
		if r.Cadence == nil || r.Pace == nil {
			return Workout{}, fmt.Errorf("workout %s: running record missing cadence or pace", r.ID)
		}
		w.Running = &Running{Cadence: *r.Cadence, Pace: *r.Pace}
	case KindCycling:
		if r.ElevationGain == nil || r.Speed == nil {
			return Workout{}, fmt.Errorf("workout %s: cycling record missing elevationGain or speed", r.ID)
		}
		w.Cycling = &Cycling{ElevationGain: *r.ElevationGain, Speed: *r.Speed}
	default:
		return Workout{}, fmt.Errorf("workout %s: %w: %q", r.ID, ErrUnknownKind, r.Kind)
	}
	return w, nil
}

// MarshalJSON writes the flat record layout
func (w Workout) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.toRecord())
}

// UnmarshalJSON reads the flat record layout. Stored derived values are kept as-is.
func (w *Workout) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	decoded, err := r.toWorkout()
	if err != nil {
		return err
	}
	*w = decoded
	return nil
}

// MarshalYAML is used by the --dump export
func (w Workout) MarshalYAML() (interface{}, error) {
	return w.toRecord(), nil
}
