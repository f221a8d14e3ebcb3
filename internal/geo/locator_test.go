package geo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/mapty/internal/workout"
)

func TestStaticLocator(t *testing.T) {
	l, err := NewStaticLocator(51.5, -0.12)
	require.NoError(t, err)

	pos, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, workout.Coords{51.5, -0.12}, pos)
}

func TestStaticLocator_CancelledContext(t *testing.T) {
	l, err := NewStaticLocator(0, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Locate(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewStaticLocator_RejectsOutOfRange(t *testing.T) {
	_, err := NewStaticLocator(91, 0)
	assert.Error(t, err)
	_, err = NewStaticLocator(0, -181)
	assert.Error(t, err)
}

func TestUnavailableLocator(t *testing.T) {
	_, err := UnavailableLocator{}.Locate(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = UnavailableLocator{Reason: "denied"}.Locate(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "denied")
}
