package mapty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/mapty/internal/workout"
)

func TestFormController_ShowAndHide(t *testing.T) {
	view := newFakeForm()
	fc := NewFormController(view, testLogger())
	assert.False(t, fc.Visible())

	fc.Show(london)
	assert.True(t, fc.Visible())
	assert.True(t, view.visible)
	anchor, ok := fc.Anchor()
	require.True(t, ok)
	assert.Equal(t, london, anchor)

	view.fields.Distance = "4"
	fc.Hide()
	assert.False(t, fc.Visible())
	assert.False(t, view.visible)
	assert.Empty(t, view.fields.Distance)
	assert.Equal(t, "Running", view.fields.Kind, "type selector survives a hide")
	_, ok = fc.Anchor()
	assert.False(t, ok)
}

func TestFormController_ReadSubmission(t *testing.T) {
	view := newFakeForm()
	fc := NewFormController(view, testLogger())

	_, ok := fc.ReadSubmission()
	assert.False(t, ok)

	fc.Show(london)
	view.fields = FormFields{Kind: "Cycling", Distance: "20", Duration: "60", Elevation: "400"}
	sub, ok := fc.ReadSubmission()
	require.True(t, ok)
	assert.Equal(t, london, sub.Coords)
	assert.Equal(t, "Cycling", sub.Kind)
	assert.Equal(t, "400", sub.Elevation)
}

func TestFormController_ToggleExerciseFields(t *testing.T) {
	view := newFakeForm()
	fc := NewFormController(view, testLogger())

	view.fields.Kind = "Cycling"
	fc.ToggleExerciseFields()
	assert.Equal(t, workout.KindCycling, view.secondary)

	view.fields.Kind = "bogus"
	fc.ToggleExerciseFields()
	assert.Equal(t, workout.KindCycling, view.secondary, "unknown kinds leave the form as it is")
}

func TestNewFormController_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewFormController(nil, testLogger()) })
	assert.Panics(t, func() { NewFormController(newFakeForm(), nil) })
}
