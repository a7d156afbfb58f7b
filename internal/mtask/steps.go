package mtask

import (
	"errors"
	"fmt"

	"kyri56xcaesar/pms-collab/internal/apperr"
)

// ReconcileSteps merges specs into prev by position, not by id.
//
// Spec i overwrites title, description and deadline of prev[i] and keeps its id
// and status; specs past len(prev) become new pending steps; prev steps past
// len(specs) are dropped. Reordering steps in a form therefore moves content
// onto other steps' ids and statuses. That is the observed editing behaviour and
// callers relying on ids must not reorder.
func ReconcileSteps(prev []Step, specs []StepSpec, newID func() string) []Step {
	out := make([]Step, len(specs))
	for i, spec := range specs {
		if i < len(prev) {
			out[i] = prev[i]
		} else {
			out[i] = Step{ID: newID(), Status: StepPending}
		}
		out[i].Title = spec.Title
		out[i].Description = spec.Description
		out[i].Deadline = spec.Deadline
	}
	return out
}

func validateSteps(specs []StepSpec) error {
	for i, spec := range specs {
		err := apperr.FromValidator(validate.Struct(spec))
		if err == nil {
			continue
		}
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			return apperr.Invalid(fmt.Sprintf("Steps[%d].%s", i, ve.Field), ve.Reason)
		}
		return err
	}
	return nil
}
