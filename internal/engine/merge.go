package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/specledger/specledger/internal/model"
)

// ExecuteMerge applies a change request's proposed edits. Documents
// are processed sequentially in sorted order; each baseline hash is
// compared against the current resolved content hash at merge time,
// and a mismatch aborts with a *ConflictError naming the document.
// Successfully merged documents keep their new versions even when a
// later document conflicts; the partial result is observable.
func (e *Engine) ExecuteMerge(ctx context.Context, w model.WorkItem) ([]model.Version, error) {
	if w.Type != model.WorkItemChangeRequest {
		return nil, fmt.Errorf("work item %s is not a change request", w.HumanReadableID)
	}

	docIDs := make([]string, 0, len(w.ProposedContent))
	for id := range w.ProposedContent {
		docIDs = append(docIDs, id)
	}
	sort.Strings(docIDs)

	var merged []model.Version
	for _, docID := range docIDs {
		d, err := e.store.GetDocument(ctx, docID)
		if err != nil {
			return merged, fmt.Errorf("merge %s: resolve document %s: %w", w.HumanReadableID, docID, err)
		}
		resolved, err := e.resolveVersion(ctx, d, nil)
		if err != nil {
			return merged, fmt.Errorf("merge %s: resolve version of %s: %w", w.HumanReadableID, d.HumanReadableID, err)
		}

		baseline := w.BaselineHashes[docID]
		if baseline != resolved.ContentHash {
			e.log.Warn().
				Str("work_item", w.HumanReadableID).
				Str("document", d.HumanReadableID).
				Msg("merge aborted on baseline conflict")
			return merged, &ConflictError{
				DocumentID:      d.ID,
				HumanReadableID: d.HumanReadableID,
				BaselineHash:    baseline,
				CurrentHash:     resolved.ContentHash,
			}
		}

		crossRefs := withoutRef(resolved.CrossRefs, w.ID)
		reason := fmt.Sprintf("Merged from %s", w.HumanReadableID)
		v, err := e.newVersion(ctx, d, w.ProposedContent[docID],
			model.StatusApproved, resolved.Tags, crossRefs, w.ID, reason)
		if err != nil {
			return merged, fmt.Errorf("merge %s: create version for %s: %w", w.HumanReadableID, d.HumanReadableID, err)
		}
		if err := e.store.RemoveAffectedDocument(ctx, w.ID, d.ID); err != nil {
			return merged, fmt.Errorf("merge %s: unlink %s: %w", w.HumanReadableID, d.HumanReadableID, err)
		}

		mergeEntry := e.historyEntry(d.ID, w.ID, model.ChangeMerged,
			"content", resolved.ContentHash, v.ContentHash, reason)
		if err := e.store.AppendHistory(ctx, mergeEntry); err != nil {
			return merged, fmt.Errorf("merge %s: history for %s: %w", w.HumanReadableID, d.HumanReadableID, err)
		}

		merged = append(merged, v)
	}

	e.log.Info().
		Str("work_item", w.HumanReadableID).
		Int("documents", len(merged)).
		Msg("merge completed")
	return merged, nil
}

func withoutRef(refs []string, ref string) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if r != ref {
			out = append(out, r)
		}
	}
	return out
}
