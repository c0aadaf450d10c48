// Package lifecycle implements the decision-table state machines for
// document and work item status transitions.
//
// Both machines are pure: a transition matrix maps current status to
// the set of allowed next statuses, a same-status request is always a
// no-op, and rejection produces a TransitionError carrying the current
// status, the requested status and the allowed set so callers can
// self-correct without re-deriving state.
//
// Persistence of the attempted-but-blocked transition (the "BLOCKED:"
// audit row) is the engine's job; this package only decides.
package lifecycle
