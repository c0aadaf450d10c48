package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/specledger/specledger/internal/model"
)

const versionColumns = `id, document_id, version_number, status, content, content_hash,
	title, description, tags, cross_refs, length, quality_score,
	source_work_item_id, change_reason, created_at`

func scanVersion(row interface{ Scan(...any) error }) (model.Version, error) {
	var (
		v         model.Version
		tags      string
		crossRefs string
		sourceID  sql.NullString
		createdAt string
	)
	err := row.Scan(
		&v.ID,
		&v.DocumentID,
		&v.VersionNumber,
		&v.Status,
		&v.Content,
		&v.ContentHash,
		&v.Title,
		&v.Description,
		&tags,
		&crossRefs,
		&v.Length,
		&v.QualityScore,
		&sourceID,
		&v.ChangeReason,
		&createdAt,
	)
	if err != nil {
		return model.Version{}, err
	}
	v.SourceWorkItemID = sourceID.String
	if v.Tags, err = unmarshalStrings(tags); err != nil {
		return model.Version{}, err
	}
	if v.CrossRefs, err = unmarshalStrings(crossRefs); err != nil {
		return model.Version{}, err
	}
	if v.CreatedAt, err = unmarshalTime(createdAt); err != nil {
		return model.Version{}, err
	}
	return v, nil
}

func insertVersion(ctx context.Context, q dbtx, v model.Version) error {
	tags, err := marshalStrings(v.Tags)
	if err != nil {
		return err
	}
	crossRefs, err := marshalStrings(v.CrossRefs)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO versions
		(id, document_id, version_number, status, content, content_hash,
		 title, description, tags, cross_refs, length, quality_score,
		 source_work_item_id, change_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		v.ID,
		v.DocumentID,
		v.VersionNumber,
		string(v.Status),
		v.Content,
		v.ContentHash,
		v.Title,
		v.Description,
		tags,
		crossRefs,
		v.Length,
		string(v.QualityScore),
		nullable(v.SourceWorkItemID),
		v.ChangeReason,
		marshalTime(v.CreatedAt),
	)
	return err
}

// AppendVersion atomically assigns the next contiguous version number,
// inserts the version with its acceptance criteria, and records a
// history entry. The assigned number is written back into the returned
// version. The version number on the input is ignored.
func (s *Store) AppendVersion(
	ctx context.Context,
	v model.Version,
	criteria []model.Criterion,
	entry model.HistoryEntry,
) (model.Version, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Version{}, fmt.Errorf("append version: begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version_number), 0) + 1 FROM versions WHERE document_id = ?
	`, v.DocumentID).Scan(&v.VersionNumber)
	if err != nil {
		return model.Version{}, fmt.Errorf("append version: next number: %w", err)
	}

	if err := insertVersion(ctx, tx, v); err != nil {
		return model.Version{}, fmt.Errorf("append version: %w", err)
	}
	for _, c := range criteria {
		c.VersionID = v.ID
		if err := insertCriterion(ctx, tx, c); err != nil {
			return model.Version{}, fmt.Errorf("append version: criterion %d: %w", c.Ordinal, err)
		}
	}
	if err := insertHistory(ctx, tx, entry); err != nil {
		return model.Version{}, fmt.Errorf("append version: history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Version{}, fmt.Errorf("append version: commit: %w", err)
	}
	return v, nil
}

// GetVersion fetches a version by UUID.
func (s *Store) GetVersion(ctx context.Context, id string) (model.Version, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM versions WHERE id = ?`, id)
	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return model.Version{}, ErrNotFound
	}
	if err != nil {
		return model.Version{}, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

// GetVersionByNumber fetches a specific version of a document.
func (s *Store) GetVersionByNumber(ctx context.Context, documentID string, number int) (model.Version, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM versions WHERE document_id = ? AND version_number = ?`,
		documentID, number)
	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return model.Version{}, ErrNotFound
	}
	if err != nil {
		return model.Version{}, fmt.Errorf("get version by number: %w", err)
	}
	return v, nil
}

// LatestVersion fetches the highest-numbered version of a document.
func (s *Store) LatestVersion(ctx context.Context, documentID string) (model.Version, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+versionColumns+` FROM versions
		WHERE document_id = ?
		ORDER BY version_number DESC LIMIT 1
	`, documentID)
	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return model.Version{}, ErrNotFound
	}
	if err != nil {
		return model.Version{}, fmt.Errorf("latest version: %w", err)
	}
	return v, nil
}

// LatestApprovedVersion fetches the highest-numbered approved version
// of a document. Returns ErrNotFound when none is approved.
func (s *Store) LatestApprovedVersion(ctx context.Context, documentID string) (model.Version, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+versionColumns+` FROM versions
		WHERE document_id = ? AND status = ?
		ORDER BY version_number DESC LIMIT 1
	`, documentID, string(model.StatusApproved))
	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return model.Version{}, ErrNotFound
	}
	if err != nil {
		return model.Version{}, fmt.Errorf("latest approved version: %w", err)
	}
	return v, nil
}

// ListVersions returns all versions of a document in ascending number
// order.
func (s *Store) ListVersions(ctx context.Context, documentID string) ([]model.Version, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+versionColumns+` FROM versions
		WHERE document_id = ?
		ORDER BY version_number
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []model.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

// UpdateVersionStatus sets a version's status together with a history
// entry in one transaction. Status is a system-managed column; content
// and its hash stay untouched.
func (s *Store) UpdateVersionStatus(
	ctx context.Context,
	versionID string,
	status model.Status,
	entry model.HistoryEntry,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update version status: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE versions SET status = ? WHERE id = ?`, string(status), versionID)
	if err != nil {
		return fmt.Errorf("update version status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update version status: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	if err := insertHistory(ctx, tx, entry); err != nil {
		return fmt.Errorf("update version status: history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update version status: commit: %w", err)
	}
	return nil
}

// UpdateVersionCrossRefs replaces the work item cross-reference list
// on a version. Cross references are system-managed metadata, not
// content.
func (s *Store) UpdateVersionCrossRefs(ctx context.Context, versionID string, crossRefs []string) error {
	data, err := marshalStrings(crossRefs)
	if err != nil {
		return fmt.Errorf("update version cross refs: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE versions SET cross_refs = ? WHERE id = ?`, data, versionID)
	if err != nil {
		return fmt.Errorf("update version cross refs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update version cross refs: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
