// Package geo provides the one-shot "where am I" lookup used to centre the map.
package geo

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/lowaak/mapty/internal/workout"
)

// ErrUnavailable means no position can be determined (unset, denied or timed out)
var ErrUnavailable = errors.New("geolocation unavailable")

// Locator resolves the current position once
type Locator interface {
	Locate(ctx context.Context) (workout.Coords, error)
}

// StaticLocator always reports a fixed position, e.g. one taken from config
type StaticLocator struct {
	Position workout.Coords
}

func NewStaticLocator(lat, lng float64) (*StaticLocator, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("invalid position %v, %v", lat, lng)
	}
	return &StaticLocator{Position: workout.Coords{lat, lng}}, nil
}

func (l *StaticLocator) Locate(ctx context.Context) (workout.Coords, error) {
	if err := ctx.Err(); err != nil {
		return workout.Coords{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return l.Position, nil
}

// UnavailableLocator models a denied or missing location service
type UnavailableLocator struct {
	Reason string
}

func (l UnavailableLocator) Locate(context.Context) (workout.Coords, error) {
	if l.Reason == "" {
		return workout.Coords{}, ErrUnavailable
	}
	return workout.Coords{}, fmt.Errorf("%w: %s", ErrUnavailable, l.Reason)
}
