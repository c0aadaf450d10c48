package criteria

import "github.com/specledger/specledger/internal/model"

// CarryForward builds criterion rows for a brand-new version from
// extracted items, linking lineage to the immediately preceding
// version's rows by hash match. Matched items inherit the
// predecessor's met state and met-by/met-at pair; unmatched items take
// the checkbox state from the document with no provenance.
//
// Returned rows have no ID or VersionID; the caller assigns those at
// persist time.
func CarryForward(items []Item, predecessor []model.Criterion) []model.Criterion {
	prior := byHash(predecessor)

	rows := make([]model.Criterion, 0, len(items))
	for _, item := range items {
		row := model.Criterion{
			Ordinal:  item.Ordinal,
			Text:     item.Text,
			Hash:     item.Hash,
			Met:      item.Met,
			Category: item.Category,
		}
		if p, ok := prior[item.Hash]; ok {
			row.Met = p.Met
			row.MetAt = p.MetAt
			row.MetBy = p.MetBy
			row.SourceCriterionID = p.ID
		}
		rows = append(rows, row)
	}
	return rows
}

// ReextractPlan is the reconciliation of freshly extracted items
// against the rows already stored for the same version. Applying the
// same plan twice is a no-op: unchanged items produce neither updates
// nor inserts.
type ReextractPlan struct {
	// Updates are existing rows (by ID) whose mutable fields changed:
	// category, or the met flag when a checkbox was toggled in place.
	Updates []model.Criterion
	// Inserts are genuinely new items, with ordinals continuing after
	// the version's current maximum.
	Inserts []model.Criterion
}

// PlanReextract reconciles items against a version's existing rows.
// Hash matches are updated in place, never duplicated. New items gain
// lineage from the predecessor version when their hash matches there.
func PlanReextract(items []Item, existing, predecessor []model.Criterion) ReextractPlan {
	var plan ReextractPlan

	current := byHash(existing)
	prior := byHash(predecessor)

	maxOrdinal := 0
	for _, row := range existing {
		if row.Ordinal > maxOrdinal {
			maxOrdinal = row.Ordinal
		}
	}

	for _, item := range items {
		if row, ok := current[item.Hash]; ok {
			updated := row
			changed := false
			if item.Category != "" && row.Category != item.Category {
				updated.Category = item.Category
				changed = true
			}
			if row.Met != item.Met {
				updated.Met = item.Met
				// Provenance of the toggle is unknown from the text.
				updated.MetAt = nil
				updated.MetBy = ""
				changed = true
			}
			if changed {
				plan.Updates = append(plan.Updates, updated)
			}
			continue
		}

		maxOrdinal++
		row := model.Criterion{
			Ordinal:  maxOrdinal,
			Text:     item.Text,
			Hash:     item.Hash,
			Met:      item.Met,
			Category: item.Category,
		}
		if p, ok := prior[item.Hash]; ok {
			row.SourceCriterionID = p.ID
		}
		plan.Inserts = append(plan.Inserts, row)
	}

	return plan
}

func byHash(rows []model.Criterion) map[string]model.Criterion {
	m := make(map[string]model.Criterion, len(rows))
	for _, r := range rows {
		m[r.Hash] = r
	}
	return m
}
