package engine

import (
	"context"

	"github.com/specledger/specledger/internal/lifecycle"
	"github.com/specledger/specledger/internal/model"
)

// TransitionDocument moves a document's resolved version to a new
// status. A same-status request is a no-op. Rejected transitions are
// recorded in history with a BLOCKED reason before the error returns.
func (e *Engine) TransitionDocument(ctx context.Context, ref string, next model.Status, reason string) (model.Version, error) {
	d, err := e.store.GetDocumentByAnyID(ctx, ref)
	if err != nil {
		return model.Version{}, err
	}
	v, err := e.resolveVersion(ctx, d, nil)
	if err != nil {
		return model.Version{}, err
	}

	if err := lifecycle.ValidateDocumentTransition(v.Status, next); err != nil {
		blocked := e.historyEntry(d.ID, "", model.ChangeStatusChanged,
			"status", string(v.Status), string(next), "BLOCKED: "+err.Error())
		if herr := e.store.AppendHistory(ctx, blocked); herr != nil {
			e.log.Error().Err(herr).Str("document", d.HumanReadableID).
				Msg("failed to record blocked transition")
		}
		return model.Version{}, err
	}
	if v.Status == next {
		return v, nil
	}

	if next == model.StatusReview || next == model.StatusApproved {
		if min := e.scorer.MinLengthForApproval(d.Type); v.Length < min {
			return model.Version{}, &ContentLengthError{
				DocType:   string(d.Type),
				Length:    v.Length,
				MinLength: min,
			}
		}
	}

	entry := e.historyEntry(d.ID, "", model.ChangeStatusChanged,
		"status", string(v.Status), string(next), reason)
	if err := e.store.UpdateVersionStatus(ctx, v.ID, next, entry); err != nil {
		return model.Version{}, err
	}

	e.log.Info().
		Str("document", d.HumanReadableID).
		Str("from", string(v.Status)).
		Str("to", string(next)).
		Msg("document transitioned")
	v.Status = next
	return v, nil
}

// TransitionWorkItem moves a work item to a new status. A change
// request entering completed triggers the merge executor; merge
// failure aborts the transition. Rejected transitions are recorded in
// history with a BLOCKED reason before the error returns.
func (e *Engine) TransitionWorkItem(ctx context.Context, ref string, next model.WorkItemStatus, reason string) (model.WorkItem, []model.Version, error) {
	w, err := e.store.GetWorkItemByAnyID(ctx, ref)
	if err != nil {
		return model.WorkItem{}, nil, err
	}

	if err := lifecycle.ValidateWorkItemTransition(w.Status, next, w.Type); err != nil {
		blocked := e.historyEntry("", w.ID, model.ChangeStatusChanged,
			"status", string(w.Status), string(next), "BLOCKED: "+err.Error())
		if herr := e.store.AppendHistory(ctx, blocked); herr != nil {
			e.log.Error().Err(herr).Str("work_item", w.HumanReadableID).
				Msg("failed to record blocked transition")
		}
		return model.WorkItem{}, nil, err
	}
	if w.Status == next {
		return w, nil, nil
	}

	var merged []model.Version
	if w.Type == model.WorkItemChangeRequest && lifecycle.TriggersMerge(w.Status, next) {
		if merged, err = e.ExecuteMerge(ctx, w); err != nil {
			return model.WorkItem{}, nil, err
		}
	}

	entry := e.historyEntry("", w.ID, model.ChangeStatusChanged,
		"status", string(w.Status), string(next), reason)
	if err := e.store.UpdateWorkItemStatus(ctx, w.ID, next, entry); err != nil {
		return model.WorkItem{}, nil, err
	}

	e.log.Info().
		Str("work_item", w.HumanReadableID).
		Str("from", string(w.Status)).
		Str("to", string(next)).
		Int("merged_versions", len(merged)).
		Msg("work item transitioned")
	w.Status = next
	return w, merged, nil
}
