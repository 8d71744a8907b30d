package idea

import (
	"fmt"

	"github.com/teamideas/idea-portal/internal"
)

// Step is the wizard position. The wizard is a strict three-step line:
// title, description, attachments.
type Step int

const (
	StepTitle       Step = 1
	StepDescription Step = 2
	StepAttachments Step = 3
)

// StepInfo is the display metadata for one step of the indicator.
type StepInfo struct {
	ID          Step   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Steps drives the step indicator, in order.
var Steps = []StepInfo{
	{ID: StepTitle, Name: "Title", Description: "Give your idea a clear name"},
	{ID: StepDescription, Name: "Description", Description: "Explain your idea in detail"},
	{ID: StepAttachments, Name: "Supporting Files", Description: "Add relevant files"},
}

// Wizard is the submission form state machine: a draft plus a position.
// All transitions are synchronous; callers serialize access per session.
type Wizard struct {
	Step  Step
	Draft Draft
}

func NewWizard() *Wizard {
	return &Wizard{Step: StepTitle}
}

// CanProceed is the current step's completion predicate: non-blank trimmed
// title for step 1, non-blank trimmed description for step 2, always true
// for step 3 (attachments are optional).
func (w *Wizard) CanProceed() bool {
	switch w.Step {
	case StepTitle:
		return w.Draft.TitleComplete()
	case StepDescription:
		return w.Draft.DescriptionComplete()
	case StepAttachments:
		return true
	default:
		return false
	}
}

// Next advances one step, permitted only when the current step is complete.
func (w *Wizard) Next() error {
	if w.Step >= StepAttachments {
		return internal.NewValidationError("already at the last step", internal.ErrCodeInvalidStep)
	}
	if !w.CanProceed() {
		return internal.NewValidationError(stepIncompleteMessage(w.Step), internal.ErrCodeStepIncomplete)
	}
	w.Step++
	return nil
}

// Back moves one step backward. Always permitted, no validation.
func (w *Wizard) Back() {
	if w.Step > StepTitle {
		w.Step--
	}
}

// Jump moves directly to a step. Permitted only backwards, or forwards when
// the current step is complete — skipping ahead over an incomplete required
// step is not allowed.
func (w *Wizard) Jump(target Step) error {
	if target < StepTitle || target > StepAttachments {
		return internal.NewValidationError(fmt.Sprintf("no step %d", target), internal.ErrCodeInvalidStep)
	}
	if target < w.Step || w.CanProceed() {
		w.Step = target
		return nil
	}
	return internal.NewValidationError(stepIncompleteMessage(w.Step), internal.ErrCodeStepIncomplete)
}

// CanSubmit holds only on the attachments step with the required fields
// filled in; it is the terminal transition's precondition.
func (w *Wizard) CanSubmit() bool {
	return w.Step == StepAttachments && w.Draft.TitleComplete() && w.Draft.DescriptionComplete()
}

// CompleteSubmit resets the machine after a successful terminal submit:
// empty draft, back to step one.
func (w *Wizard) CompleteSubmit() {
	w.Draft.Reset()
	w.Step = StepTitle
}

func stepIncompleteMessage(step Step) string {
	switch step {
	case StepTitle:
		return "title is required before continuing"
	case StepDescription:
		return "description is required before continuing"
	default:
		return "current step is incomplete"
	}
}
