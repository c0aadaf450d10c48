package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specledger/specledger/internal/model"
)

func TestValidateWorkItemTransition_ForwardPath(t *testing.T) {
	path := []model.WorkItemStatus{
		model.WorkCreated,
		model.WorkInProgress,
		model.WorkImplemented,
		model.WorkValidated,
		model.WorkDeployed,
		model.WorkCompleted,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.NoError(t, ValidateWorkItemTransition(path[i], path[i+1], model.WorkItemChangeRequest),
			"%s -> %s should be allowed", path[i], path[i+1])
	}
}

func TestValidateWorkItemTransition_CancelledFromAnyNonTerminal(t *testing.T) {
	for s := range model.ValidWorkItemStatuses {
		if IsTerminalWorkItemStatus(s) {
			continue
		}
		assert.NoError(t, ValidateWorkItemTransition(s, model.WorkCancelled, model.WorkItemDefect),
			"%s -> cancelled should be allowed", s)
	}
}

func TestValidateWorkItemTransition_TerminalStates(t *testing.T) {
	for _, terminal := range []model.WorkItemStatus{model.WorkCompleted, model.WorkCancelled} {
		err := ValidateWorkItemTransition(terminal, model.WorkInProgress, model.WorkItemChangeRequest)
		require.Error(t, err, "%s must be terminal", terminal)
	}
}

func TestValidateWorkItemTransition_ReleaseSkipsMiddleStages(t *testing.T) {
	// Releases go in_progress -> deployed directly.
	assert.NoError(t, ValidateWorkItemTransition(model.WorkInProgress, model.WorkDeployed, model.WorkItemRelease))

	err := ValidateWorkItemTransition(model.WorkInProgress, model.WorkImplemented, model.WorkItemRelease)
	require.Error(t, err)
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "work item (release)", terr.Entity)

	// The standard matrix still allows the skipped stage for other types.
	assert.NoError(t, ValidateWorkItemTransition(model.WorkInProgress, model.WorkImplemented, model.WorkItemDefect))
}

func TestValidateWorkItemTransition_CreatedToImplementedHint(t *testing.T) {
	err := ValidateWorkItemTransition(model.WorkCreated, model.WorkImplemented, model.WorkItemChangeRequest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in_progress")
}

func TestTriggersMerge(t *testing.T) {
	tests := []struct {
		name string
		old  model.WorkItemStatus
		next model.WorkItemStatus
		want bool
	}{
		{"deployed to completed", model.WorkDeployed, model.WorkCompleted, true},
		{"created to completed", model.WorkCreated, model.WorkCompleted, true},
		{"completed to completed", model.WorkCompleted, model.WorkCompleted, false},
		{"deployed to cancelled", model.WorkDeployed, model.WorkCancelled, false},
		{"in_progress to validated", model.WorkInProgress, model.WorkValidated, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TriggersMerge(tt.old, tt.next))
		})
	}
}

func TestWorkItemStatusRank_OrdersActiveFirst(t *testing.T) {
	assert.Less(t, WorkItemStatusRank(model.WorkInProgress), WorkItemStatusRank(model.WorkCreated))
	assert.Less(t, WorkItemStatusRank(model.WorkDeployed), WorkItemStatusRank(model.WorkCancelled))
}
