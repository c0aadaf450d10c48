package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/specledger/specledger/internal/model"
)

const criterionColumns = `id, version_id, ordinal, criteria_text, content_hash,
	met, met_at, met_by, category, source_criterion_id`

func scanCriterion(row interface{ Scan(...any) error }) (model.Criterion, error) {
	var (
		c        model.Criterion
		met      int
		metAt    sql.NullString
		metBy    sql.NullString
		sourceID sql.NullString
	)
	err := row.Scan(
		&c.ID,
		&c.VersionID,
		&c.Ordinal,
		&c.Text,
		&c.Hash,
		&met,
		&metAt,
		&metBy,
		&c.Category,
		&sourceID,
	)
	if err != nil {
		return model.Criterion{}, err
	}
	c.Met = met != 0
	c.MetBy = metBy.String
	c.SourceCriterionID = sourceID.String
	if metAt.Valid {
		t, err := unmarshalTime(metAt.String)
		if err != nil {
			return model.Criterion{}, err
		}
		c.MetAt = &t
	}
	return c, nil
}

func insertCriterion(ctx context.Context, q dbtx, c model.Criterion) error {
	var metAt any
	if c.MetAt != nil {
		metAt = marshalTime(*c.MetAt)
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO acceptance_criteria
		(id, version_id, ordinal, criteria_text, content_hash,
		 met, met_at, met_by, category, source_criterion_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID,
		c.VersionID,
		c.Ordinal,
		c.Text,
		c.Hash,
		boolToInt(c.Met),
		metAt,
		nullable(c.MetBy),
		c.Category,
		nullable(c.SourceCriterionID),
	)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ListCriteria returns a version's acceptance criteria in ordinal
// order.
func (s *Store) ListCriteria(ctx context.Context, versionID string) ([]model.Criterion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+criterionColumns+` FROM acceptance_criteria
		WHERE version_id = ?
		ORDER BY ordinal
	`, versionID)
	if err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	defer rows.Close()

	var criteria []model.Criterion
	for rows.Next() {
		c, err := scanCriterion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan criterion: %w", err)
		}
		criteria = append(criteria, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate criteria: %w", err)
	}
	return criteria, nil
}

// GetCriterion fetches one criterion by UUID.
func (s *Store) GetCriterion(ctx context.Context, id string) (model.Criterion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+criterionColumns+` FROM acceptance_criteria WHERE id = ?`, id)
	c, err := scanCriterion(row)
	if err == sql.ErrNoRows {
		return model.Criterion{}, ErrNotFound
	}
	if err != nil {
		return model.Criterion{}, fmt.Errorf("get criterion: %w", err)
	}
	return c, nil
}

// SetCriterionMet updates the met flag with its met-at/met-by pair.
// Marking unmet clears both; marking met requires both.
func (s *Store) SetCriterionMet(ctx context.Context, id string, met bool, metAt *time.Time, metBy string) error {
	var (
		metAtVal any
		metByVal any
	)
	if met {
		if metAt == nil || metBy == "" {
			return fmt.Errorf("set criterion met: met_at and met_by required when met")
		}
		metAtVal = marshalTime(*metAt)
		metByVal = metBy
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE acceptance_criteria
		SET met = ?, met_at = ?, met_by = ?
		WHERE id = ?
	`, boolToInt(met), metAtVal, metByVal, id)
	if err != nil {
		return fmt.Errorf("set criterion met: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set criterion met: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyReextraction applies an extraction plan to a version's criteria
// in one transaction: mutable-field updates to existing rows followed
// by appended inserts.
func (s *Store) ApplyReextraction(ctx context.Context, updates, inserts []model.Criterion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply reextraction: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, c := range updates {
		var metAt any
		if c.MetAt != nil {
			metAt = marshalTime(*c.MetAt)
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE acceptance_criteria
			SET met = ?, met_at = ?, met_by = ?, category = ?
			WHERE id = ?
		`, boolToInt(c.Met), metAt, nullable(c.MetBy), c.Category, c.ID)
		if err != nil {
			return fmt.Errorf("apply reextraction: update %s: %w", c.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("apply reextraction: rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("apply reextraction: update %s: %w", c.ID, ErrNotFound)
		}
	}
	for _, c := range inserts {
		if err := insertCriterion(ctx, tx, c); err != nil {
			return fmt.Errorf("apply reextraction: insert ordinal %d: %w", c.Ordinal, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply reextraction: commit: %w", err)
	}
	return nil
}
