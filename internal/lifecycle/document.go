package lifecycle

import "github.com/specledger/specledger/internal/model"

// documentMatrix maps current document status to allowed next statuses.
// Every forward stage has a one-step-back edge; deployed is terminal.
var documentMatrix = map[model.Status][]model.Status{
	model.StatusDraft: {
		model.StatusDraft, // no-op
		model.StatusReview,
	},
	model.StatusReview: {
		model.StatusReview, // no-op
		model.StatusDraft,  // back: needs more work
		model.StatusApproved,
	},
	model.StatusApproved: {
		model.StatusApproved, // no-op
		model.StatusReview,   // back: reopen review
		model.StatusInProgress,
	},
	model.StatusInProgress: {
		model.StatusInProgress, // no-op
		model.StatusApproved,   // back: blocked, return to backlog
		model.StatusImplemented,
	},
	model.StatusImplemented: {
		model.StatusImplemented, // no-op
		model.StatusInProgress,  // back: found issues, rework needed
		model.StatusValidated,
	},
	model.StatusValidated: {
		model.StatusValidated,   // no-op
		model.StatusImplemented, // back: validation failed
		model.StatusDeployed,
	},
	model.StatusDeployed: {
		model.StatusDeployed, // no-op only; deployed versions are immutable records
	},
	model.StatusDeprecated: {
		model.StatusDeprecated, // terminal soft retirement
	},
}

// IsDocumentTransitionValid reports whether a document status move is
// allowed by the decision table.
func IsDocumentTransitionValid(current, next model.Status) bool {
	for _, s := range documentMatrix[current] {
		if s == next {
			return true
		}
	}
	return false
}

// ValidateDocumentTransition checks a document status move. A
// same-status request is always accepted as a no-op. Rejections return
// a *TransitionError with the allowed set.
func ValidateDocumentTransition(current, next model.Status) error {
	if current == next {
		return nil
	}
	if IsDocumentTransitionValid(current, next) {
		return nil
	}

	terr := &TransitionError{
		Entity:    "document",
		Current:   string(current),
		Requested: string(next),
		Allowed:   allowedNames(documentMatrix[current], string(current)),
	}
	switch {
	case current == model.StatusDraft && next == model.StatusApproved:
		terr.Hint = "Documents must be reviewed before approval. Transition to 'review' first."
	case current == model.StatusDeployed:
		terr.Hint = "Deployed documents are immutable. Create a new child document for additional work."
	case current == model.StatusDeprecated:
		terr.Hint = "Deprecated documents cannot be reactivated. Create a new document instead."
	}
	return terr
}

// AllowedDocumentTransitions returns the allowed next statuses from
// current, excluding the no-op same status.
func AllowedDocumentTransitions(current model.Status) []model.Status {
	return withoutSelf(documentMatrix[current], current)
}

// documentStatusRank orders statuses for list queries: active work
// first, backlog last, retired states at the end.
var documentStatusRank = map[model.Status]int{
	model.StatusInProgress:  1,
	model.StatusImplemented: 2,
	model.StatusValidated:   3,
	model.StatusApproved:    4,
	model.StatusReview:      5,
	model.StatusDraft:       6,
	model.StatusDeployed:    7,
	model.StatusDeprecated:  8,
}

// DocumentStatusRank returns the sort rank for a status. Unknown
// statuses sort last.
func DocumentStatusRank(s model.Status) int {
	if r, ok := documentStatusRank[s]; ok {
		return r
	}
	return len(documentStatusRank) + 1
}

func allowedNames[S ~string](allowed []S, current string) []string {
	names := make([]string, 0, len(allowed))
	for _, s := range allowed {
		if string(s) != current {
			names = append(names, string(s))
		}
	}
	return names
}

func withoutSelf[S comparable](allowed []S, current S) []S {
	out := make([]S, 0, len(allowed))
	for _, s := range allowed {
		if s != current {
			out = append(out, s)
		}
	}
	return out
}
