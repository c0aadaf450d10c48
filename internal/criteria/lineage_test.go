package criteria

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specledger/specledger/internal/model"
)

func TestCarryForward_InheritsMetStateByHash(t *testing.T) {
	metAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	predecessor := []model.Criterion{
		{
			ID:    "crit-1",
			Text:  "Export completes within 30 seconds",
			Hash:  model.CriterionHash("Export completes within 30 seconds"),
			Met:   true,
			MetAt: &metAt,
			MetBy: "alice",
		},
	}

	items := Extract("## Acceptance Criteria\n\n- [ ] Export completes within 30 seconds\n- [ ] Brand new criterion\n")
	require.Len(t, items, 2)

	rows := CarryForward(items, predecessor)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].Met, "hash match inherits predecessor met state over the checkbox")
	require.NotNil(t, rows[0].MetAt)
	assert.Equal(t, metAt, *rows[0].MetAt)
	assert.Equal(t, "alice", rows[0].MetBy)
	assert.Equal(t, "crit-1", rows[0].SourceCriterionID)

	assert.False(t, rows[1].Met)
	assert.Nil(t, rows[1].MetAt)
	assert.Empty(t, rows[1].MetBy)
	assert.Empty(t, rows[1].SourceCriterionID, "unmatched items carry no lineage")
}

func TestCarryForward_NoPredecessorUsesCheckboxState(t *testing.T) {
	items := Extract("## Acceptance Criteria\n\n- [x] Already ticked in the document\n")
	require.Len(t, items, 1)

	rows := CarryForward(items, nil)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Met)
	assert.Nil(t, rows[0].MetAt)
	assert.Empty(t, rows[0].MetBy)
}

func TestPlanReextract_Idempotent(t *testing.T) {
	items := Extract(sampleBody)
	require.NotEmpty(t, items)

	existing := CarryForward(items, nil)
	for i := range existing {
		existing[i].ID = model.CriterionHash(existing[i].Text)[:8]
	}

	plan := PlanReextract(items, existing, nil)
	assert.Empty(t, plan.Updates, "unchanged content yields no updates")
	assert.Empty(t, plan.Inserts, "unchanged content yields no inserts")
}

func TestPlanReextract_CheckboxToggleUpdatesInPlace(t *testing.T) {
	metAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	existing := []model.Criterion{
		{
			ID:      "crit-1",
			Ordinal: 1,
			Text:    "Export completes within 30 seconds",
			Hash:    model.CriterionHash("Export completes within 30 seconds"),
			Met:     true,
			MetAt:   &metAt,
			MetBy:   "alice",
		},
	}

	items := Extract("## Acceptance Criteria\n\n- [ ] Export completes within 30 seconds\n")
	require.Len(t, items, 1)

	plan := PlanReextract(items, existing, nil)
	require.Len(t, plan.Updates, 1)
	assert.Empty(t, plan.Inserts)

	upd := plan.Updates[0]
	assert.Equal(t, "crit-1", upd.ID, "toggle updates the existing row, never duplicates")
	assert.False(t, upd.Met)
	assert.Nil(t, upd.MetAt, "clearing the met flag clears its provenance pair")
	assert.Empty(t, upd.MetBy)
}

func TestPlanReextract_CategoryChange(t *testing.T) {
	existing := []model.Criterion{
		{
			ID:      "crit-1",
			Ordinal: 1,
			Text:    "Memory stays under 256 MiB",
			Hash:    model.CriterionHash("Memory stays under 256 MiB"),
		},
	}

	items := Extract("## Acceptance Criteria\n\n### Success Criteria\n\n- [ ] Memory stays under 256 MiB\n")
	require.Len(t, items, 1)

	plan := PlanReextract(items, existing, nil)
	require.Len(t, plan.Updates, 1)
	assert.Equal(t, "Success Criteria", plan.Updates[0].Category)
}

func TestPlanReextract_NewItemsAppendAfterMaxOrdinal(t *testing.T) {
	existing := []model.Criterion{
		{
			ID:      "crit-1",
			Ordinal: 7,
			Text:    "Export completes within 30 seconds",
			Hash:    model.CriterionHash("Export completes within 30 seconds"),
		},
	}
	predecessor := []model.Criterion{
		{
			ID:   "old-crit",
			Text: "Brand new criterion",
			Hash: model.CriterionHash("Brand new criterion"),
			Met:  true,
		},
	}

	items := Extract("## Acceptance Criteria\n\n- [ ] Export completes within 30 seconds\n- [ ] Brand new criterion\n")
	require.Len(t, items, 2)

	plan := PlanReextract(items, existing, predecessor)
	assert.Empty(t, plan.Updates)
	require.Len(t, plan.Inserts, 1)

	ins := plan.Inserts[0]
	assert.Equal(t, 8, ins.Ordinal, "inserts continue after the current maximum ordinal")
	assert.Equal(t, "Brand new criterion", ins.Text)
	assert.Equal(t, "old-crit", ins.SourceCriterionID, "lineage falls back to the predecessor version")
}
