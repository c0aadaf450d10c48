package lifecycle

import (
	"fmt"
	"strings"
)

// TransitionError reports an illegal status move. It carries the
// current status, the requested status and the allowed set so the
// caller can correct course without another round trip.
type TransitionError struct {
	// Entity is "document" or "work item", with the work item type
	// appended when a variant matrix was used (e.g. "work item (release)").
	Entity string

	Current   string
	Requested string
	Allowed   []string

	// Hint is optional guidance for common mistakes, appended to the
	// error text (e.g. draft→approved must pass through review).
	Hint string
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("invalid %s status transition: %s → %s. From %s, you can only transition to: %s.",
		e.Entity, e.Current, e.Requested, e.Current, strings.Join(e.Allowed, ", "))
	if e.Hint != "" {
		msg += " " + e.Hint
	}
	return msg
}
