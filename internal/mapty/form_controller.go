package mapty

import (
	"log"

	"github.com/lowaak/mapty/internal/workout"
)

// Submission is what the form hands to the controller on submit
type Submission struct {
	FormFields
	Coords workout.Coords
}

// FormController manages form visibility, the variant-specific field and
// the map click the form was opened for.
type FormController struct {
	view    FormView
	logger  *log.Logger
	anchor  *workout.Coords
	visible bool
}

func NewFormController(view FormView, logger *log.Logger) *FormController {
	if view == nil {
		panic("FormController: view cannot be nil")
	}
	if logger == nil {
		panic("FormController: logger cannot be nil")
	}
	return &FormController{view: view, logger: logger}
}

// Show reveals the form for a click at anchor
func (f *FormController) Show(anchor workout.Coords) {
	f.anchor = &anchor
	f.visible = true
	f.view.ShowForm()
}

// Hide clears the numeric fields and hides the form
func (f *FormController) Hide() {
	f.view.ClearFields()
	f.view.HideForm()
	f.anchor = nil
	f.visible = false
}

// ToggleExerciseFields shows the field matching the selected type
func (f *FormController) ToggleExerciseFields() {
	kind, err := workout.ParseKind(f.view.Fields().Kind)
	if err != nil {
		f.logger.Printf("FormController: %v", err)
		return
	}
	f.view.SetSecondaryField(kind)
}

// ReadSubmission returns the raw values and the pending click.
// ok is false when the form was not opened from a click.
func (f *FormController) ReadSubmission() (Submission, bool) {
	if f.anchor == nil {
		return Submission{}, false
	}
	return Submission{FormFields: f.view.Fields(), Coords: *f.anchor}, true
}

// Visible reports whether the form is shown
func (f *FormController) Visible() bool {
	return f.visible
}

// Anchor returns the buffered click, if any
func (f *FormController) Anchor() (workout.Coords, bool) {
	if f.anchor == nil {
		return workout.Coords{}, false
	}
	return *f.anchor, true
}
