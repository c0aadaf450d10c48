package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/specledger/specledger/internal/model"
)

const workItemColumns = `id, human_readable_id, item_type, status, title, assignee,
	project_id, proposed_content, baseline_hashes, created_at`

func scanWorkItem(row interface{ Scan(...any) error }) (model.WorkItem, error) {
	var (
		w         model.WorkItem
		proposed  string
		baselines string
		createdAt string
	)
	err := row.Scan(
		&w.ID,
		&w.HumanReadableID,
		&w.Type,
		&w.Status,
		&w.Title,
		&w.Assignee,
		&w.ProjectID,
		&proposed,
		&baselines,
		&createdAt,
	)
	if err != nil {
		return model.WorkItem{}, err
	}
	if w.ProposedContent, err = unmarshalStringMap(proposed); err != nil {
		return model.WorkItem{}, err
	}
	if w.BaselineHashes, err = unmarshalStringMap(baselines); err != nil {
		return model.WorkItem{}, err
	}
	if w.CreatedAt, err = unmarshalTime(createdAt); err != nil {
		return model.WorkItem{}, err
	}
	return w, nil
}

// CreateWorkItem atomically inserts a work item, its affected-document
// links, its target version pins, and a creation history entry.
func (s *Store) CreateWorkItem(ctx context.Context, w model.WorkItem, entry model.HistoryEntry) error {
	proposed, err := marshalStringMap(w.ProposedContent)
	if err != nil {
		return fmt.Errorf("create work item: %w", err)
	}
	baselines, err := marshalStringMap(w.BaselineHashes)
	if err != nil {
		return fmt.Errorf("create work item: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create work item: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO work_items
		(id, human_readable_id, item_type, status, title, assignee,
		 project_id, proposed_content, baseline_hashes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		w.ID,
		w.HumanReadableID,
		string(w.Type),
		string(w.Status),
		w.Title,
		w.Assignee,
		w.ProjectID,
		proposed,
		baselines,
		marshalTime(w.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create work item: %w", err)
	}

	for _, docID := range w.AffectedDocs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO work_item_documents (work_item_id, document_id) VALUES (?, ?)
		`, w.ID, docID); err != nil {
			return fmt.Errorf("create work item: link document %s: %w", docID, err)
		}
	}
	for _, versionID := range w.TargetVersionIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO work_item_targets (work_item_id, version_id) VALUES (?, ?)
		`, w.ID, versionID); err != nil {
			return fmt.Errorf("create work item: pin version %s: %w", versionID, err)
		}
	}
	if err := insertHistory(ctx, tx, entry); err != nil {
		return fmt.Errorf("create work item: history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create work item: commit: %w", err)
	}
	return nil
}

// GetWorkItem fetches a work item by UUID including its affected
// documents and target version pins.
func (s *Store) GetWorkItem(ctx context.Context, id string) (model.WorkItem, error) {
	return s.getWorkItem(ctx,
		`SELECT `+workItemColumns+` FROM work_items WHERE id = ?`, id)
}

// GetWorkItemByAnyID fetches a work item by UUID or human-readable ID.
func (s *Store) GetWorkItemByAnyID(ctx context.Context, ref string) (model.WorkItem, error) {
	return s.getWorkItem(ctx,
		`SELECT `+workItemColumns+` FROM work_items WHERE id = ? OR human_readable_id = ?`,
		ref, ref)
}

func (s *Store) getWorkItem(ctx context.Context, query string, args ...any) (model.WorkItem, error) {
	row := s.db.QueryRowContext(ctx, query, args...)
	w, err := scanWorkItem(row)
	if err == sql.ErrNoRows {
		return model.WorkItem{}, ErrNotFound
	}
	if err != nil {
		return model.WorkItem{}, fmt.Errorf("get work item: %w", err)
	}
	if w.AffectedDocs, err = s.workItemLinks(ctx,
		`SELECT document_id FROM work_item_documents WHERE work_item_id = ? ORDER BY document_id`,
		w.ID); err != nil {
		return model.WorkItem{}, err
	}
	if w.TargetVersionIDs, err = s.workItemLinks(ctx,
		`SELECT version_id FROM work_item_targets WHERE work_item_id = ? ORDER BY version_id`,
		w.ID); err != nil {
		return model.WorkItem{}, err
	}
	return w, nil
}

func (s *Store) workItemLinks(ctx context.Context, query, workItemID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, workItemID)
	if err != nil {
		return nil, fmt.Errorf("query work item links: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan work item link: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work item links: %w", err)
	}
	return ids, nil
}

// ListWorkItems returns work items in a project ordered by
// human-readable ID, without link tables loaded. An empty projectID
// lists every work item.
func (s *Store) ListWorkItems(ctx context.Context, projectID string) ([]model.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items`
	args := []any{}
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY human_readable_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	defer rows.Close()

	var items []model.WorkItem
	for rows.Next() {
		w, err := scanWorkItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work item: %w", err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work items: %w", err)
	}
	return items, nil
}

// UpdateWorkItemStatus sets a work item's status and records a history
// entry in one transaction.
func (s *Store) UpdateWorkItemStatus(ctx context.Context, id string, status model.WorkItemStatus, entry model.HistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update work item status: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE work_items SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update work item status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update work item status: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	if err := insertHistory(ctx, tx, entry); err != nil {
		return fmt.Errorf("update work item status: history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update work item status: commit: %w", err)
	}
	return nil
}

// SetProposedContent replaces the proposed content payload.
func (s *Store) SetProposedContent(ctx context.Context, id string, proposed map[string]string) error {
	data, err := marshalStringMap(proposed)
	if err != nil {
		return fmt.Errorf("set proposed content: %w", err)
	}
	return s.updateWorkItemField(ctx, id, "proposed_content", data)
}

// SetBaselineHashes replaces the captured baseline hashes.
func (s *Store) SetBaselineHashes(ctx context.Context, id string, baselines map[string]string) error {
	data, err := marshalStringMap(baselines)
	if err != nil {
		return fmt.Errorf("set baseline hashes: %w", err)
	}
	return s.updateWorkItemField(ctx, id, "baseline_hashes", data)
}

func (s *Store) updateWorkItemField(ctx context.Context, id, column, value string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE work_items SET `+column+` = ? WHERE id = ?`, value, id)
	if err != nil {
		return fmt.Errorf("update work item %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update work item %s: rows affected: %w", column, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceAffectedDocuments swaps a work item's affected-document links.
func (s *Store) ReplaceAffectedDocuments(ctx context.Context, workItemID string, documentIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace affected documents: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM work_item_documents WHERE work_item_id = ?`, workItemID); err != nil {
		return fmt.Errorf("replace affected documents: %w", err)
	}
	for _, docID := range documentIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO work_item_documents (work_item_id, document_id) VALUES (?, ?)
		`, workItemID, docID); err != nil {
			return fmt.Errorf("replace affected documents: link %s: %w", docID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace affected documents: commit: %w", err)
	}
	return nil
}

// RemoveAffectedDocument deletes one affected-document link. Returns
// nil when the link was already absent.
func (s *Store) RemoveAffectedDocument(ctx context.Context, workItemID, documentID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM work_item_documents WHERE work_item_id = ? AND document_id = ?`,
		workItemID, documentID)
	if err != nil {
		return fmt.Errorf("remove affected document: %w", err)
	}
	return nil
}

// WorkItemsForDocument returns the work items linked to a document,
// newest first.
func (s *Store) WorkItemsForDocument(ctx context.Context, documentID string) ([]model.WorkItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixedWorkItemColumns+` FROM work_items w
		JOIN work_item_documents wd ON wd.work_item_id = w.id
		WHERE wd.document_id = ?
		ORDER BY w.created_at DESC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("work items for document: %w", err)
	}
	defer rows.Close()

	var items []model.WorkItem
	for rows.Next() {
		w, err := scanWorkItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work item: %w", err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work items: %w", err)
	}
	return items, nil
}

const prefixedWorkItemColumns = `w.id, w.human_readable_id, w.item_type, w.status, w.title,
	w.assignee, w.project_id, w.proposed_content, w.baseline_hashes, w.created_at`

// NextWorkItemID allocates the next sequential human-readable work
// item ID for a type within a project, e.g. CR-0007.
func (s *Store) NextWorkItemID(ctx context.Context, itemType model.WorkItemType, projectID string) (string, error) {
	code := workItemCode(itemType)
	var maxSeq int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(CAST(SUBSTR(human_readable_id, ?) AS INTEGER)), 0)
		FROM work_items
		WHERE project_id = ? AND human_readable_id LIKE ?
	`, len(code)+2, projectID, code+"-%").Scan(&maxSeq)
	if err != nil {
		return "", fmt.Errorf("next work item id: %w", err)
	}
	return fmt.Sprintf("%s-%04d", code, maxSeq+1), nil
}

func workItemCode(t model.WorkItemType) string {
	switch t {
	case model.WorkItemChangeRequest:
		return "CR"
	case model.WorkItemDefect:
		return "DEF"
	case model.WorkItemDebt:
		return "DEBT"
	case model.WorkItemRelease:
		return "REL"
	}
	return "WI"
}
