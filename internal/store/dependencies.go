package store

import (
	"context"
	"fmt"
)

func replaceDependencies(ctx context.Context, q dbtx, documentID string, dependsOn []string) error {
	if _, err := q.ExecContext(ctx,
		`DELETE FROM document_dependencies WHERE document_id = ?`, documentID); err != nil {
		return err
	}
	for _, dep := range dependsOn {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO document_dependencies (document_id, depends_on_id)
			VALUES (?, ?)
		`, documentID, dep); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceDependencies swaps a document's outgoing dependency edges for
// the given set in one transaction.
func (s *Store) ReplaceDependencies(ctx context.Context, documentID string, dependsOn []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace dependencies: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := replaceDependencies(ctx, tx, documentID, dependsOn); err != nil {
		return fmt.Errorf("replace dependencies: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace dependencies: commit: %w", err)
	}
	return nil
}

// DirectDependencies returns the documents this document depends on.
func (s *Store) DirectDependencies(ctx context.Context, documentID string) ([]string, error) {
	return s.dependencyColumn(ctx, `
		SELECT depends_on_id FROM document_dependencies
		WHERE document_id = ? ORDER BY depends_on_id
	`, documentID)
}

// Dependents returns the documents that depend on this document.
func (s *Store) Dependents(ctx context.Context, documentID string) ([]string, error) {
	return s.dependencyColumn(ctx, `
		SELECT document_id FROM document_dependencies
		WHERE depends_on_id = ? ORDER BY document_id
	`, documentID)
}

func (s *Store) dependencyColumn(ctx context.Context, query, documentID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("query dependencies: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dependencies: %w", err)
	}
	return ids, nil
}
