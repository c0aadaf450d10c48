package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/specledger/specledger/internal/model"
)

const historyColumns = `id, document_id, work_item_id, change_type, field_name,
	old_value, new_value, change_reason, created_at`

func insertHistory(ctx context.Context, q dbtx, entry model.HistoryEntry) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO history
		(document_id, work_item_id, change_type, field_name,
		 old_value, new_value, change_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		nullable(entry.DocumentID),
		nullable(entry.WorkItemID),
		entry.ChangeType,
		entry.FieldName,
		entry.OldValue,
		entry.NewValue,
		entry.ChangeReason,
		marshalTime(entry.CreatedAt),
	)
	return err
}

// AppendHistory records a standalone history entry. Blocked transition
// attempts use this path so the audit row survives the rejection.
func (s *Store) AppendHistory(ctx context.Context, entry model.HistoryEntry) error {
	if err := insertHistory(ctx, s.db, entry); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// DocumentHistory returns a document's history, oldest first.
func (s *Store) DocumentHistory(ctx context.Context, documentID string) ([]model.HistoryEntry, error) {
	return s.queryHistory(ctx,
		`SELECT `+historyColumns+` FROM history WHERE document_id = ? ORDER BY id`,
		documentID)
}

// WorkItemHistory returns a work item's history, oldest first.
func (s *Store) WorkItemHistory(ctx context.Context, workItemID string) ([]model.HistoryEntry, error) {
	return s.queryHistory(ctx,
		`SELECT `+historyColumns+` FROM history WHERE work_item_id = ? ORDER BY id`,
		workItemID)
}

func (s *Store) queryHistory(ctx context.Context, query string, args ...any) ([]model.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var (
			entry      model.HistoryEntry
			documentID sql.NullString
			workItemID sql.NullString
			createdAt  string
		)
		err := rows.Scan(
			&entry.ID,
			&documentID,
			&workItemID,
			&entry.ChangeType,
			&entry.FieldName,
			&entry.OldValue,
			&entry.NewValue,
			&entry.ChangeReason,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entry.DocumentID = documentID.String
		entry.WorkItemID = workItemID.String
		if entry.CreatedAt, err = unmarshalTime(createdAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}
