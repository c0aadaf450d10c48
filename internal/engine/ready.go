package engine

import (
	"context"
	"fmt"

	"github.com/specledger/specledger/internal/model"
)

// ListReadyToImplement returns the documents whose resolved version is
// approved and whose direct dependencies all have a deployed version.
// Only one hop is checked; transitive blocking is not considered.
func (e *Engine) ListReadyToImplement(ctx context.Context, projectID string) ([]ResolvedDocument, error) {
	docs, err := e.ListDocuments(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var ready []ResolvedDocument
	for _, rd := range docs {
		if rd.Version.Status != model.StatusApproved {
			continue
		}
		unblocked, err := e.directDepsDeployed(ctx, rd.Document.ID)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", rd.Document.HumanReadableID, err)
		}
		if unblocked {
			ready = append(ready, rd)
		}
	}
	return ready, nil
}

func (e *Engine) directDepsDeployed(ctx context.Context, documentID string) (bool, error) {
	deps, err := e.store.DirectDependencies(ctx, documentID)
	if err != nil {
		return false, err
	}
	for _, dep := range deps {
		d, err := e.store.GetDocument(ctx, dep)
		if err != nil {
			return false, err
		}
		if d.DeployedVersionID == "" {
			return false, nil
		}
	}
	return true, nil
}

// BlockedBy returns the human-readable IDs of the direct dependencies
// that keep a document from being ready: dependencies without a
// deployed version.
func (e *Engine) BlockedBy(ctx context.Context, ref string) ([]string, error) {
	d, err := e.store.GetDocumentByAnyID(ctx, ref)
	if err != nil {
		return nil, err
	}
	deps, err := e.store.DirectDependencies(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	var blocking []string
	for _, dep := range deps {
		depDoc, err := e.store.GetDocument(ctx, dep)
		if err != nil {
			return nil, err
		}
		if depDoc.DeployedVersionID == "" {
			blocking = append(blocking, depDoc.HumanReadableID)
		}
	}
	return blocking, nil
}
