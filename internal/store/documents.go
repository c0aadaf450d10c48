package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/specledger/specledger/internal/model"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so row helpers can run
// inside or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const documentColumns = `id, human_readable_id, doc_type, parent_id, project_id,
	deployed_version_id, deployed_by_release_id, created_at`

func scanDocument(row interface{ Scan(...any) error }) (model.Document, error) {
	var (
		doc       model.Document
		parentID  sql.NullString
		deployed  sql.NullString
		releaseID sql.NullString
		createdAt string
	)
	err := row.Scan(
		&doc.ID,
		&doc.HumanReadableID,
		&doc.Type,
		&parentID,
		&doc.ProjectID,
		&deployed,
		&releaseID,
		&createdAt,
	)
	if err != nil {
		return model.Document{}, err
	}
	doc.ParentID = parentID.String
	doc.DeployedVersionID = deployed.String
	doc.DeployedByReleaseID = releaseID.String
	doc.CreatedAt, err = unmarshalTime(createdAt)
	if err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

func insertDocument(ctx context.Context, q dbtx, doc model.Document) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO documents
		(id, human_readable_id, doc_type, parent_id, project_id,
		 deployed_version_id, deployed_by_release_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		doc.ID,
		doc.HumanReadableID,
		string(doc.Type),
		nullable(doc.ParentID),
		doc.ProjectID,
		nullable(doc.DeployedVersionID),
		nullable(doc.DeployedByReleaseID),
		marshalTime(doc.CreatedAt),
	)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateDocument atomically inserts a document, its first version, the
// version's acceptance criteria, its dependency edges, and a creation
// history entry.
func (s *Store) CreateDocument(
	ctx context.Context,
	doc model.Document,
	v model.Version,
	criteria []model.Criterion,
	dependsOn []string,
	entry model.HistoryEntry,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create document: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertDocument(ctx, tx, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	if err := insertVersion(ctx, tx, v); err != nil {
		return fmt.Errorf("create document: first version: %w", err)
	}
	for _, c := range criteria {
		if err := insertCriterion(ctx, tx, c); err != nil {
			return fmt.Errorf("create document: criterion %d: %w", c.Ordinal, err)
		}
	}
	if err := replaceDependencies(ctx, tx, doc.ID, dependsOn); err != nil {
		return fmt.Errorf("create document: dependencies: %w", err)
	}
	if err := insertHistory(ctx, tx, entry); err != nil {
		return fmt.Errorf("create document: history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create document: commit: %w", err)
	}
	return nil
}

// GetDocument fetches a document row by UUID.
// Returns ErrNotFound if no row exists.
func (s *Store) GetDocument(ctx context.Context, id string) (model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return model.Document{}, ErrNotFound
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// GetDocumentByAnyID fetches a document by UUID or human-readable ID.
func (s *Store) GetDocumentByAnyID(ctx context.Context, ref string) (model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ? OR human_readable_id = ?`,
		ref, ref)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return model.Document{}, ErrNotFound
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("get document by ref: %w", err)
	}
	return doc, nil
}

// ListDocuments returns all documents in a project ordered by
// human-readable ID. An empty projectID lists every document.
func (s *Store) ListDocuments(ctx context.Context, projectID string) ([]model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	args := []any{}
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY human_readable_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// Children returns the direct children of a document ordered by
// human-readable ID.
func (s *Store) Children(ctx context.Context, parentID string) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE parent_id = ? ORDER BY human_readable_id`,
		parentID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func collectDocuments(rows *sql.Rows) ([]model.Document, error) {
	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// SetDeployedVersion updates the deployed pointer for a document.
// Pass empty strings to clear the pointer. Last write wins.
func (s *Store) SetDeployedVersion(ctx context.Context, documentID, versionID, releaseID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET deployed_version_id = ?, deployed_by_release_id = ?
		WHERE id = ?
	`, nullable(versionID), nullable(releaseID), documentID)
	if err != nil {
		return fmt.Errorf("set deployed version: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set deployed version: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// NextHumanReadableID allocates the next sequential human-readable ID
// for a document type within a project, e.g. REQ-0042.
func (s *Store) NextHumanReadableID(ctx context.Context, docType model.DocType, projectID string) (string, error) {
	code := docType.HRIDCode()
	var maxSeq int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(CAST(SUBSTR(human_readable_id, ?) AS INTEGER)), 0)
		FROM documents
		WHERE project_id = ? AND human_readable_id LIKE ?
	`, len(code)+2, projectID, code+"-%").Scan(&maxSeq)
	if err != nil {
		return "", fmt.Errorf("next human readable id: %w", err)
	}
	return fmt.Sprintf("%s-%04d", code, maxSeq+1), nil
}

// DeleteDocuments removes the given documents and a deletion history
// entry per document in one transaction. Versions, criteria, and
// dependency edges cascade. Callers order IDs leaves first so parent
// foreign keys never dangle mid-delete.
func (s *Store) DeleteDocuments(ctx context.Context, entries []model.HistoryEntry, ids ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete documents: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete document %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete document %s: rows affected: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("delete document %s: %w", id, ErrNotFound)
		}
	}
	for _, entry := range entries {
		if err := insertHistory(ctx, tx, entry); err != nil {
			return fmt.Errorf("delete documents: history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete documents: commit: %w", err)
	}
	return nil
}
