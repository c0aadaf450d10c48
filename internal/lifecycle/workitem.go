package lifecycle

import "github.com/specledger/specledger/internal/model"

// workItemMatrix is the standard work item lifecycle:
// created → in_progress → implemented → validated → deployed → completed,
// with one-step-back edges and a cancelled terminal reachable from any
// non-terminal state.
var workItemMatrix = map[model.WorkItemStatus][]model.WorkItemStatus{
	model.WorkCreated: {
		model.WorkCreated, // no-op
		model.WorkInProgress,
		model.WorkCancelled,
	},
	model.WorkInProgress: {
		model.WorkInProgress, // no-op
		model.WorkCreated,    // back: blocked, return to backlog
		model.WorkImplemented,
		model.WorkCancelled,
	},
	model.WorkImplemented: {
		model.WorkImplemented, // no-op
		model.WorkInProgress,  // back: rework needed
		model.WorkValidated,
		model.WorkCancelled,
	},
	model.WorkValidated: {
		model.WorkValidated,   // no-op
		model.WorkImplemented, // back: validation failed
		model.WorkDeployed,
		model.WorkCancelled,
	},
	model.WorkDeployed: {
		model.WorkDeployed,  // no-op
		model.WorkValidated, // back: deployment issue, rollback
		model.WorkCompleted,
		model.WorkCancelled,
	},
	model.WorkCompleted: {
		model.WorkCompleted, // terminal
	},
	model.WorkCancelled: {
		model.WorkCancelled, // terminal
	},
}

// releaseMatrix is the reduced lifecycle for release work items:
// created → in_progress → deployed → completed. Releases skip the
// implemented and validated stages.
var releaseMatrix = map[model.WorkItemStatus][]model.WorkItemStatus{
	model.WorkCreated: {
		model.WorkCreated, // no-op
		model.WorkInProgress,
		model.WorkCancelled,
	},
	model.WorkInProgress: {
		model.WorkInProgress, // no-op
		model.WorkCreated,    // back: blocked
		model.WorkDeployed,   // skips implemented/validated
		model.WorkCancelled,
	},
	model.WorkDeployed: {
		model.WorkDeployed,   // no-op
		model.WorkInProgress, // back: deployment issue, rollback
		model.WorkCompleted,
		model.WorkCancelled,
	},
	model.WorkCompleted: {
		model.WorkCompleted, // terminal
	},
	model.WorkCancelled: {
		model.WorkCancelled, // terminal
	},
}

// workItemTransitionMatrix selects the matrix for a work item type.
func workItemTransitionMatrix(t model.WorkItemType) map[model.WorkItemStatus][]model.WorkItemStatus {
	if t == model.WorkItemRelease {
		return releaseMatrix
	}
	return workItemMatrix
}

// IsWorkItemTransitionValid reports whether a work item status move is
// allowed for the given item type.
func IsWorkItemTransitionValid(current, next model.WorkItemStatus, t model.WorkItemType) bool {
	for _, s := range workItemTransitionMatrix(t)[current] {
		if s == next {
			return true
		}
	}
	return false
}

// ValidateWorkItemTransition checks a work item status move. A
// same-status request is always accepted as a no-op.
func ValidateWorkItemTransition(current, next model.WorkItemStatus, t model.WorkItemType) error {
	if current == next {
		return nil
	}
	if IsWorkItemTransitionValid(current, next, t) {
		return nil
	}

	entity := "work item"
	if t == model.WorkItemRelease {
		entity = "work item (release)"
	}
	terr := &TransitionError{
		Entity:    entity,
		Current:   string(current),
		Requested: string(next),
		Allowed:   allowedNames(workItemTransitionMatrix(t)[current], string(current)),
	}
	switch {
	case current == model.WorkCompleted:
		terr.Hint = "Completed work items are immutable. Create a new work item for additional work."
	case current == model.WorkCancelled:
		terr.Hint = "Cancelled work items cannot be reactivated. Create a new work item to restart."
	case current == model.WorkCreated && next == model.WorkImplemented:
		terr.Hint = "Work items must be marked in_progress before being implemented."
	case t == model.WorkItemRelease && (next == model.WorkImplemented || next == model.WorkValidated):
		terr.Hint = "Release work items skip implemented/validated stages; transition directly to deployed."
	}
	return terr
}

// AllowedWorkItemTransitions returns the allowed next statuses from
// current for the given type, excluding the no-op same status.
func AllowedWorkItemTransitions(current model.WorkItemStatus, t model.WorkItemType) []model.WorkItemStatus {
	return withoutSelf(workItemTransitionMatrix(t)[current], current)
}

// IsTerminalWorkItemStatus reports whether a status has no outgoing
// transitions.
func IsTerminalWorkItemStatus(s model.WorkItemStatus) bool {
	return s == model.WorkCompleted || s == model.WorkCancelled
}

// TriggersMerge reports whether a status move is the merge trigger for
// change-request work items: any non-completed status moving to
// completed. The work item type gate is the caller's responsibility.
func TriggersMerge(old, next model.WorkItemStatus) bool {
	return old != model.WorkCompleted && next == model.WorkCompleted
}

// workItemStatusRank orders work item statuses for list queries.
var workItemStatusRank = map[model.WorkItemStatus]int{
	model.WorkInProgress:  1,
	model.WorkImplemented: 2,
	model.WorkValidated:   3,
	model.WorkDeployed:    4,
	model.WorkCreated:     5,
	model.WorkCompleted:   6,
	model.WorkCancelled:   7,
}

// WorkItemStatusRank returns the sort rank for a work item status.
// Unknown statuses sort last.
func WorkItemStatusRank(s model.WorkItemStatus) int {
	if r, ok := workItemStatusRank[s]; ok {
		return r
	}
	return len(workItemStatusRank) + 1
}
