package engine

import (
	"context"
	"fmt"

	"github.com/specledger/specledger/internal/model"
)

// DeleteDocument removes a document and all of its descendants.
// Deletion is refused while documents outside the subtree depend on
// the target or any descendant; the error lists the dependents.
// Rows are deleted leaves first so parent references never dangle.
func (e *Engine) DeleteDocument(ctx context.Context, ref string) error {
	d, err := e.store.GetDocumentByAnyID(ctx, ref)
	if err != nil {
		return err
	}

	subtree, err := e.collectSubtree(ctx, d.ID)
	if err != nil {
		return err
	}
	inSubtree := make(map[string]struct{}, len(subtree))
	for _, doc := range subtree {
		inSubtree[doc.ID] = struct{}{}
	}

	var outside []string
	for _, doc := range subtree {
		dependents, err := e.store.Dependents(ctx, doc.ID)
		if err != nil {
			return err
		}
		for _, dep := range dependents {
			if _, ok := inSubtree[dep]; !ok {
				outside = append(outside, dep)
			}
		}
	}
	if len(outside) > 0 {
		refs, err := e.humanRefs(ctx, outside)
		if err != nil {
			return err
		}
		return &DependentsError{
			DocumentID:      d.ID,
			HumanReadableID: d.HumanReadableID,
			Dependents:      refs,
		}
	}

	// Reverse breadth-first order deletes leaves before parents.
	ids := make([]string, 0, len(subtree))
	entries := make([]model.HistoryEntry, 0, len(subtree))
	for i := len(subtree) - 1; i >= 0; i-- {
		ids = append(ids, subtree[i].ID)
		entries = append(entries, e.historyEntry(subtree[i].ID, "", model.ChangeDeleted,
			"", subtree[i].HumanReadableID, "", ""))
	}
	if err := e.store.DeleteDocuments(ctx, entries, ids...); err != nil {
		return err
	}

	e.log.Info().
		Str("document", d.HumanReadableID).
		Int("deleted", len(ids)).
		Msg("document deleted")
	return nil
}

// collectSubtree walks the parent hierarchy with an explicit work list
// and returns the subtree in breadth-first order, root first.
func (e *Engine) collectSubtree(ctx context.Context, rootID string) ([]model.Document, error) {
	root, err := e.store.GetDocument(ctx, rootID)
	if err != nil {
		return nil, err
	}
	order := []model.Document{root}
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		children, err := e.store.Children(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("collect subtree of %s: %w", rootID, err)
		}
		for _, child := range children {
			order = append(order, child)
			queue = append(queue, child.ID)
		}
	}
	return order, nil
}

func (e *Engine) humanRefs(ctx context.Context, ids []string) ([]string, error) {
	refs := make([]string, 0, len(ids))
	for _, id := range ids {
		d, err := e.store.GetDocument(ctx, id)
		if err != nil {
			return nil, err
		}
		refs = append(refs, d.HumanReadableID)
	}
	return refs, nil
}
