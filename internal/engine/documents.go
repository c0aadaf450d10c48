package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/specledger/specledger/internal/criteria"
	"github.com/specledger/specledger/internal/doc"
	"github.com/specledger/specledger/internal/graph"
	"github.com/specledger/specledger/internal/lifecycle"
	"github.com/specledger/specledger/internal/model"
	"github.com/specledger/specledger/internal/store"
)

// CreateDocumentParams carries the inputs for document creation.
// Parent and dependency references are authored inside the content
// frontmatter, not passed separately.
type CreateDocumentParams struct {
	Type      model.DocType
	ProjectID string
	Content   string
	Tags      []string
	Status    model.Status // defaults to draft
	Reason    string
}

// CreatedDocument is the result of CreateDocument.
type CreatedDocument struct {
	Document model.Document
	Version  model.Version
	Warnings []graph.Warning
}

// CreateDocument creates a document together with its first version.
// The content frontmatter supplies parent and depends_on references,
// which may be UUIDs or human-readable IDs.
func (e *Engine) CreateDocument(ctx context.Context, p CreateDocumentParams) (CreatedDocument, error) {
	meta, _, err := doc.Parse(p.Content)
	if err != nil {
		return CreatedDocument{}, err
	}
	if err := doc.Validate(meta, p.Type); err != nil {
		return CreatedDocument{}, err
	}
	if err := doc.ValidateTags(p.Tags); err != nil {
		return CreatedDocument{}, err
	}

	status := p.Status
	if status == "" {
		status = model.StatusDraft
	}
	if !model.ValidStatuses[status] {
		return CreatedDocument{}, fmt.Errorf("unknown status %q", status)
	}

	parentID := ""
	if meta.Parent != "" {
		parent, err := e.store.GetDocumentByAnyID(ctx, meta.Parent)
		if err != nil {
			return CreatedDocument{}, fmt.Errorf("resolve parent %s: %w", meta.Parent, err)
		}
		if parent.ProjectID != p.ProjectID {
			return CreatedDocument{}, &graph.ProjectMismatchError{
				DocumentID: parent.ID,
				ProjectID:  p.ProjectID,
			}
		}
		parentID = parent.ID
	}

	deps, err := e.resolveRefs(ctx, meta.DependsOn)
	if err != nil {
		return CreatedDocument{}, err
	}

	id := e.newID()
	warnings, err := e.graph.Validate(ctx, id, deps, p.ProjectID)
	if err != nil {
		return CreatedDocument{}, err
	}

	hrid, err := e.store.NextHumanReadableID(ctx, p.Type, p.ProjectID)
	if err != nil {
		return CreatedDocument{}, err
	}

	d := model.Document{
		ID:              id,
		HumanReadableID: hrid,
		Type:            p.Type,
		ParentID:        parentID,
		ProjectID:       p.ProjectID,
		CreatedAt:       e.now(),
	}

	v, rows, err := e.buildFirstVersion(d, p.Content, status, p.Tags, p.Reason)
	if err != nil {
		return CreatedDocument{}, err
	}

	entry := e.historyEntry(d.ID, "", model.ChangeCreated, "", "", hrid, p.Reason)
	if err := e.store.CreateDocument(ctx, d, v, rows, deps, entry); err != nil {
		return CreatedDocument{}, err
	}

	e.log.Info().
		Str("document", hrid).
		Str("type", string(p.Type)).
		Str("status", string(status)).
		Msg("document created")
	return CreatedDocument{Document: d, Version: v, Warnings: warnings}, nil
}

// buildFirstVersion assembles version 1 without touching the store;
// CreateDocument persists it atomically with the document row.
func (e *Engine) buildFirstVersion(
	d model.Document,
	content string,
	status model.Status,
	tags []string,
	reason string,
) (model.Version, []model.Criterion, error) {
	meta, body, err := doc.Parse(content)
	if err != nil {
		return model.Version{}, nil, err
	}

	stripped, err := doc.Strip(content)
	if err != nil {
		return model.Version{}, nil, err
	}
	length := len(stripped)
	if status == model.StatusReview || status == model.StatusApproved {
		if min := e.scorer.MinLengthForApproval(d.Type); length < min {
			return model.Version{}, nil, &ContentLengthError{
				DocType:   string(d.Type),
				Length:    length,
				MinLength: min,
			}
		}
	}

	v := model.Version{
		ID:            e.newID(),
		DocumentID:    d.ID,
		VersionNumber: 1,
		Status:        status,
		Content:       stripped,
		ContentHash:   model.ContentHash(stripped),
		Title:         meta.Title,
		Description:   doc.Description(body),
		Tags:          tags,
		Length:        length,
		QualityScore:  e.scorer.Score(d.Type, length),
		ChangeReason:  reason,
		CreatedAt:     e.now(),
	}

	rows := criteria.CarryForward(criteria.Extract(body), nil)
	for i := range rows {
		rows[i].ID = e.newID()
		rows[i].VersionID = v.ID
	}
	return v, rows, nil
}

// EditResult is the outcome of EditContent.
type EditResult struct {
	Document model.Document
	Version  model.Version
	Warnings []graph.Warning
	// Changed is false when the authored content was identical to the
	// resolved version and no new version was created.
	Changed bool
}

// EditContent appends a new version with the given content. Editing
// never mutates an existing version; when the resolved version is in
// review or approved the new version regresses to draft so the change
// re-enters the review workflow. A content-identical edit is a no-op.
func (e *Engine) EditContent(ctx context.Context, ref, content, reason, sourceWorkItemID string) (EditResult, error) {
	d, err := e.store.GetDocumentByAnyID(ctx, ref)
	if err != nil {
		return EditResult{}, err
	}
	resolved, err := e.resolveVersion(ctx, d, nil)
	if err != nil {
		return EditResult{}, err
	}

	changed, err := doc.ContentHasChanged(resolved.Content, content)
	if err != nil {
		return EditResult{}, err
	}
	if !changed {
		return EditResult{Document: d, Version: resolved, Changed: false}, nil
	}

	meta, _, err := doc.Parse(content)
	if err != nil {
		return EditResult{}, err
	}
	if err := doc.Validate(meta, d.Type); err != nil {
		return EditResult{}, err
	}

	deps, err := e.resolveRefs(ctx, meta.DependsOn)
	if err != nil {
		return EditResult{}, err
	}
	var warnings []graph.Warning
	current, err := e.store.DirectDependencies(ctx, d.ID)
	if err != nil {
		return EditResult{}, err
	}
	depsChanged := !sameIDSet(deps, current)
	if depsChanged {
		if warnings, err = e.graph.Validate(ctx, d.ID, deps, d.ProjectID); err != nil {
			return EditResult{}, err
		}
	}

	status := resolved.Status
	if status == model.StatusApproved || status == model.StatusReview {
		status = model.StatusDraft
	}

	v, err := e.newVersion(ctx, d, content, status, resolved.Tags, resolved.CrossRefs, sourceWorkItemID, reason)
	if err != nil {
		return EditResult{}, err
	}
	if depsChanged {
		if err := e.store.ReplaceDependencies(ctx, d.ID, deps); err != nil {
			return EditResult{}, err
		}
	}

	return EditResult{Document: d, Version: v, Warnings: warnings, Changed: true}, nil
}

// RenderDocument composes the reader-facing form of a document: the
// resolved (or explicitly numbered) version's content with status,
// status tag and human-readable ID injected into the frontmatter.
func (e *Engine) RenderDocument(ctx context.Context, ref string, number *int) (string, error) {
	d, v, err := e.ResolveVersion(ctx, ref, number)
	if err != nil {
		return "", err
	}
	tag, err := e.statusTag(ctx, d, v)
	if err != nil {
		return "", err
	}
	tags := append(append([]string{}, v.Tags...), tag)
	return doc.Inject(v.Content, string(v.Status), tags, d.HumanReadableID)
}

// statusTag picks the injected status indicator. The deployed form
// supersedes the version status because deployment implies approval.
func (e *Engine) statusTag(ctx context.Context, d model.Document, v model.Version) (string, error) {
	if d.DeployedVersionID == v.ID {
		if d.DeployedByReleaseID != "" {
			release, err := e.store.GetWorkItem(ctx, d.DeployedByReleaseID)
			if err == nil {
				return "deployed-" + release.HumanReadableID, nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return "", err
			}
		}
		return fmt.Sprintf("deployed-v%d", v.VersionNumber), nil
	}
	switch v.Status {
	case model.StatusDeprecated:
		return "deprecated", nil
	case model.StatusApproved:
		return "approved", nil
	case model.StatusReview:
		return "review", nil
	default:
		return "draft", nil
	}
}

// ResolvedDocument pairs a document with its resolved version.
type ResolvedDocument struct {
	Document model.Document
	Version  model.Version
}

// ListDocuments returns a project's documents with resolved versions,
// ordered by status rank then human-readable ID.
func (e *Engine) ListDocuments(ctx context.Context, projectID string) ([]ResolvedDocument, error) {
	docs, err := e.store.ListDocuments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]ResolvedDocument, 0, len(docs))
	for _, d := range docs {
		v, err := e.resolveVersion(ctx, d, nil)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", d.HumanReadableID, err)
		}
		out = append(out, ResolvedDocument{Document: d, Version: v})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri := lifecycle.DocumentStatusRank(out[i].Version.Status)
		rj := lifecycle.DocumentStatusRank(out[j].Version.Status)
		if ri != rj {
			return ri < rj
		}
		return out[i].Document.HumanReadableID < out[j].Document.HumanReadableID
	})
	return out, nil
}

// DocumentHistory returns a document's audit trail, oldest first.
func (e *Engine) DocumentHistory(ctx context.Context, ref string) ([]model.HistoryEntry, error) {
	d, err := e.store.GetDocumentByAnyID(ctx, ref)
	if err != nil {
		return nil, err
	}
	return e.store.DocumentHistory(ctx, d.ID)
}

// resolveRefs maps document references (UUID or human-readable) to
// document IDs, preserving order.
func (e *Engine) resolveRefs(ctx context.Context, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		d, err := e.store.GetDocumentByAnyID(ctx, ref)
		if errors.Is(err, store.ErrNotFound) {
			return nil, &graph.NotFoundError{DocumentID: ref}
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			return false
		}
	}
	return true
}
