package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/specledger/specledger/internal/criteria"
	"github.com/specledger/specledger/internal/doc"
	"github.com/specledger/specledger/internal/model"
	"github.com/specledger/specledger/internal/store"
)

// CreateWorkItemParams carries the inputs for work item creation.
// AffectedDocs are document references (UUID or human-readable).
type CreateWorkItemParams struct {
	Type         model.WorkItemType
	Title        string
	Assignee     string
	ProjectID    string
	AffectedDocs []string
	// ProposedContent maps document references to full replacement
	// content; change requests only.
	ProposedContent map[string]string
}

// CreateWorkItem creates a work item. For each affected document the
// resolved version is pinned as a target and, for change requests, its
// content hash is captured as the merge baseline. The work item is
// cross-referenced on each pinned version.
func (e *Engine) CreateWorkItem(ctx context.Context, p CreateWorkItemParams) (model.WorkItem, error) {
	if !model.ValidWorkItemTypes[p.Type] {
		return model.WorkItem{}, fmt.Errorf("unknown work item type %q", p.Type)
	}
	if p.Title == "" {
		return model.WorkItem{}, fmt.Errorf("work item title cannot be empty")
	}
	if len(p.ProposedContent) > 0 && p.Type != model.WorkItemChangeRequest {
		return model.WorkItem{}, fmt.Errorf("proposed content is only valid on change requests")
	}

	w := model.WorkItem{
		ID:        e.newID(),
		Type:      p.Type,
		Status:    model.WorkCreated,
		Title:     p.Title,
		Assignee:  p.Assignee,
		ProjectID: p.ProjectID,
		CreatedAt: e.now(),
	}

	affected := make(map[string]model.Version) // document ID -> pinned version
	for _, ref := range p.AffectedDocs {
		d, v, err := e.ResolveVersion(ctx, ref, nil)
		if err != nil {
			return model.WorkItem{}, fmt.Errorf("resolve affected document %s: %w", ref, err)
		}
		if d.ProjectID != p.ProjectID {
			return model.WorkItem{}, fmt.Errorf("document %s belongs to a different project", d.HumanReadableID)
		}
		affected[d.ID] = v
		w.AffectedDocs = append(w.AffectedDocs, d.ID)
		w.TargetVersionIDs = append(w.TargetVersionIDs, v.ID)
	}

	if len(p.ProposedContent) > 0 {
		w.ProposedContent = make(map[string]string, len(p.ProposedContent))
		w.BaselineHashes = make(map[string]string, len(p.ProposedContent))
		for ref, content := range p.ProposedContent {
			d, err := e.store.GetDocumentByAnyID(ctx, ref)
			if err != nil {
				return model.WorkItem{}, fmt.Errorf("resolve proposed document %s: %w", ref, err)
			}
			v, ok := affected[d.ID]
			if !ok {
				return model.WorkItem{}, fmt.Errorf("proposed content for %s, but it is not an affected document", d.HumanReadableID)
			}
			w.ProposedContent[d.ID] = content
			w.BaselineHashes[d.ID] = v.ContentHash
		}
	}

	hrid, err := e.store.NextWorkItemID(ctx, p.Type, p.ProjectID)
	if err != nil {
		return model.WorkItem{}, err
	}
	w.HumanReadableID = hrid

	entry := e.historyEntry("", w.ID, model.ChangeCreated, "", "", hrid, "")
	if err := e.store.CreateWorkItem(ctx, w, entry); err != nil {
		return model.WorkItem{}, err
	}

	for _, v := range affected {
		if containsRef(v.CrossRefs, w.ID) {
			continue
		}
		refs := append(append([]string{}, v.CrossRefs...), w.ID)
		if err := e.store.UpdateVersionCrossRefs(ctx, v.ID, refs); err != nil {
			return model.WorkItem{}, fmt.Errorf("cross-reference version %s: %w", v.ID, err)
		}
	}

	e.log.Info().
		Str("work_item", hrid).
		Str("type", string(p.Type)).
		Int("affected", len(w.AffectedDocs)).
		Msg("work item created")
	return w, nil
}

// GetWorkItem fetches a work item by UUID or human-readable ID.
func (e *Engine) GetWorkItem(ctx context.Context, ref string) (model.WorkItem, error) {
	return e.store.GetWorkItemByAnyID(ctx, ref)
}

// WorkItemHistory returns a work item's audit trail, oldest first.
func (e *Engine) WorkItemHistory(ctx context.Context, ref string) ([]model.HistoryEntry, error) {
	w, err := e.store.GetWorkItemByAnyID(ctx, ref)
	if err != nil {
		return nil, err
	}
	return e.store.WorkItemHistory(ctx, w.ID)
}

// UpdateProposedContent records replacement content for one affected
// document on a change request and refreshes its merge baseline to the
// document's current resolved content hash.
func (e *Engine) UpdateProposedContent(ctx context.Context, workItemRef, docRef, content string) (model.WorkItem, error) {
	w, err := e.store.GetWorkItemByAnyID(ctx, workItemRef)
	if err != nil {
		return model.WorkItem{}, err
	}
	if w.Type != model.WorkItemChangeRequest {
		return model.WorkItem{}, fmt.Errorf("work item %s is not a change request", w.HumanReadableID)
	}
	if w.Status == model.WorkCompleted || w.Status == model.WorkCancelled {
		return model.WorkItem{}, fmt.Errorf("work item %s is %s and cannot be edited", w.HumanReadableID, w.Status)
	}

	d, v, err := e.ResolveVersion(ctx, docRef, nil)
	if err != nil {
		return model.WorkItem{}, fmt.Errorf("resolve document %s: %w", docRef, err)
	}

	if w.ProposedContent == nil {
		w.ProposedContent = map[string]string{}
	}
	if w.BaselineHashes == nil {
		w.BaselineHashes = map[string]string{}
	}
	w.ProposedContent[d.ID] = content
	w.BaselineHashes[d.ID] = v.ContentHash

	if !containsRef(w.AffectedDocs, d.ID) {
		w.AffectedDocs = append(w.AffectedDocs, d.ID)
		if err := e.store.ReplaceAffectedDocuments(ctx, w.ID, w.AffectedDocs); err != nil {
			return model.WorkItem{}, err
		}
		if !containsRef(v.CrossRefs, w.ID) {
			refs := append(append([]string{}, v.CrossRefs...), w.ID)
			if err := e.store.UpdateVersionCrossRefs(ctx, v.ID, refs); err != nil {
				return model.WorkItem{}, err
			}
		}
	}
	if err := e.store.SetProposedContent(ctx, w.ID, w.ProposedContent); err != nil {
		return model.WorkItem{}, err
	}
	if err := e.store.SetBaselineHashes(ctx, w.ID, w.BaselineHashes); err != nil {
		return model.WorkItem{}, err
	}
	return w, nil
}

// SetCriterionMet toggles the met flag on one acceptance criterion,
// maintaining the met-at/met-by pair invariant and recording history.
func (e *Engine) SetCriterionMet(ctx context.Context, criterionID string, met bool, metBy string) (model.Criterion, error) {
	c, err := e.store.GetCriterion(ctx, criterionID)
	if err != nil {
		return model.Criterion{}, err
	}
	wasMet := c.Met

	if met {
		now := e.now()
		if metBy == "" {
			return model.Criterion{}, fmt.Errorf("met_by is required when marking a criterion met")
		}
		if err := e.store.SetCriterionMet(ctx, c.ID, true, &now, metBy); err != nil {
			return model.Criterion{}, err
		}
		c.Met = true
		c.MetAt = &now
		c.MetBy = metBy
	} else {
		if err := e.store.SetCriterionMet(ctx, c.ID, false, nil, ""); err != nil {
			return model.Criterion{}, err
		}
		c.Met = false
		c.MetAt = nil
		c.MetBy = ""
	}

	v, err := e.store.GetVersion(ctx, c.VersionID)
	if err != nil {
		return model.Criterion{}, err
	}
	entry := e.historyEntry(v.DocumentID, "", model.ChangeUpdated,
		"criterion_met", fmt.Sprintf("%d:%t", c.Ordinal, wasMet), fmt.Sprintf("%d:%t", c.Ordinal, c.Met), "")
	if err := e.store.AppendHistory(ctx, entry); err != nil {
		return model.Criterion{}, err
	}
	return c, nil
}

// ReextractCriteria re-runs acceptance criteria extraction against a
// document's resolved (or explicitly numbered) version and reconciles
// the result with the stored rows. Idempotent: unchanged items produce
// no writes.
func (e *Engine) ReextractCriteria(ctx context.Context, ref string, number *int) ([]model.Criterion, error) {
	d, v, err := e.ResolveVersion(ctx, ref, number)
	if err != nil {
		return nil, err
	}

	_, body, err := doc.Parse(v.Content)
	if err != nil {
		return nil, err
	}
	items := criteria.Extract(body)

	existing, err := e.store.ListCriteria(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	var predecessor []model.Criterion
	if v.VersionNumber > 1 {
		prev, err := e.store.GetVersionByNumber(ctx, d.ID, v.VersionNumber-1)
		switch {
		case err == nil:
			if predecessor, err = e.store.ListCriteria(ctx, prev.ID); err != nil {
				return nil, err
			}
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}

	plan := criteria.PlanReextract(items, existing, predecessor)
	for i := range plan.Inserts {
		plan.Inserts[i].ID = e.newID()
		plan.Inserts[i].VersionID = v.ID
	}
	if len(plan.Updates) > 0 || len(plan.Inserts) > 0 {
		if err := e.store.ApplyReextraction(ctx, plan.Updates, plan.Inserts); err != nil {
			return nil, err
		}
	}

	return e.store.ListCriteria(ctx, v.ID)
}

// CriteriaSummary reports acceptance criteria progress for a
// document's resolved version.
func (e *Engine) CriteriaSummary(ctx context.Context, ref string, number *int) (criteria.SummaryStats, error) {
	_, v, err := e.ResolveVersion(ctx, ref, number)
	if err != nil {
		return criteria.SummaryStats{}, err
	}
	rows, err := e.store.ListCriteria(ctx, v.ID)
	if err != nil {
		return criteria.SummaryStats{}, err
	}
	return criteria.Summarize(rows), nil
}

// ListCriteria returns the acceptance criteria of a document's
// resolved version in ordinal order.
func (e *Engine) ListCriteria(ctx context.Context, ref string, number *int) ([]model.Criterion, error) {
	_, v, err := e.ResolveVersion(ctx, ref, number)
	if err != nil {
		return nil, err
	}
	return e.store.ListCriteria(ctx, v.ID)
}

func containsRef(refs []string, ref string) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}
