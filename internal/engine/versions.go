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

// ResolveVersion selects the version representing a document's current
// content. With an explicit number, that version is returned or
// ErrNotFound. Otherwise precedence is: deployed pointer, then latest
// approved, then latest overall.
func (e *Engine) ResolveVersion(ctx context.Context, ref string, number *int) (model.Document, model.Version, error) {
	d, err := e.store.GetDocumentByAnyID(ctx, ref)
	if err != nil {
		return model.Document{}, model.Version{}, err
	}
	v, err := e.resolveVersion(ctx, d, number)
	if err != nil {
		return model.Document{}, model.Version{}, err
	}
	return d, v, nil
}

func (e *Engine) resolveVersion(ctx context.Context, d model.Document, number *int) (model.Version, error) {
	if number != nil {
		return e.store.GetVersionByNumber(ctx, d.ID, *number)
	}
	if d.DeployedVersionID != "" {
		return e.store.GetVersion(ctx, d.DeployedVersionID)
	}
	v, err := e.store.LatestApprovedVersion(ctx, d.ID)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.Version{}, err
	}
	return e.store.LatestVersion(ctx, d.ID)
}

// SetDeployedVersion points a document at a deployed version,
// optionally recording the release that produced the deployment.
// Last write wins; no deployment history is kept.
func (e *Engine) SetDeployedVersion(ctx context.Context, ref, versionID, releaseRef string) (model.Version, error) {
	d, err := e.store.GetDocumentByAnyID(ctx, ref)
	if err != nil {
		return model.Version{}, err
	}
	v, err := e.store.GetVersion(ctx, versionID)
	if err != nil {
		return model.Version{}, err
	}
	if v.DocumentID != d.ID {
		return model.Version{}, fmt.Errorf("version %s does not belong to document %s", versionID, d.HumanReadableID)
	}

	releaseID := ""
	if releaseRef != "" {
		release, err := e.store.GetWorkItemByAnyID(ctx, releaseRef)
		if err != nil {
			return model.Version{}, fmt.Errorf("resolve release %s: %w", releaseRef, err)
		}
		releaseID = release.ID
	}

	if err := e.store.SetDeployedVersion(ctx, d.ID, v.ID, releaseID); err != nil {
		return model.Version{}, err
	}
	entry := e.historyEntry(d.ID, releaseID, model.ChangeUpdated,
		"deployed_version_id", d.DeployedVersionID, v.ID, "")
	if err := e.store.AppendHistory(ctx, entry); err != nil {
		return model.Version{}, err
	}

	e.log.Info().
		Str("document", d.HumanReadableID).
		Int("version", v.VersionNumber).
		Msg("deployed version updated")
	return v, nil
}

// newVersion appends an immutable version built from authored content.
// Content is stored stripped of system-managed fields; acceptance
// criteria are extracted from the body with lineage carried from the
// document's latest version.
func (e *Engine) newVersion(
	ctx context.Context,
	d model.Document,
	content string,
	status model.Status,
	tags, crossRefs []string,
	sourceWorkItemID, reason string,
) (model.Version, error) {
	meta, body, err := doc.Parse(content)
	if err != nil {
		return model.Version{}, err
	}
	if err := doc.Validate(meta, d.Type); err != nil {
		return model.Version{}, err
	}
	if err := doc.ValidateTags(tags); err != nil {
		return model.Version{}, err
	}

	stripped, err := doc.Strip(content)
	if err != nil {
		return model.Version{}, err
	}
	length := len(stripped)
	if status == model.StatusReview || status == model.StatusApproved {
		if min := e.scorer.MinLengthForApproval(d.Type); length < min {
			return model.Version{}, &ContentLengthError{
				DocType:   string(d.Type),
				Length:    length,
				MinLength: min,
			}
		}
	}

	var prior []model.Criterion
	latest, err := e.store.LatestVersion(ctx, d.ID)
	switch {
	case err == nil:
		if prior, err = e.store.ListCriteria(ctx, latest.ID); err != nil {
			return model.Version{}, err
		}
	case !errors.Is(err, store.ErrNotFound):
		return model.Version{}, err
	}

	rows := criteria.CarryForward(criteria.Extract(body), prior)
	v := model.Version{
		ID:               e.newID(),
		DocumentID:       d.ID,
		Status:           status,
		Content:          stripped,
		ContentHash:      model.ContentHash(stripped),
		Title:            meta.Title,
		Description:      doc.Description(body),
		Tags:             tags,
		CrossRefs:        crossRefs,
		Length:           length,
		QualityScore:     e.scorer.Score(d.Type, length),
		SourceWorkItemID: sourceWorkItemID,
		ChangeReason:     reason,
		CreatedAt:        e.now(),
	}
	for i := range rows {
		rows[i].ID = e.newID()
		rows[i].VersionID = v.ID
	}

	entry := e.historyEntry(d.ID, sourceWorkItemID, model.ChangeUpdated,
		"content", "", v.ContentHash, reason)
	v, err = e.store.AppendVersion(ctx, v, rows, entry)
	if err != nil {
		return model.Version{}, err
	}

	e.log.Debug().
		Str("document", d.HumanReadableID).
		Int("version", v.VersionNumber).
		Str("status", string(v.Status)).
		Int("criteria", len(rows)).
		Msg("version created")
	return v, nil
}
