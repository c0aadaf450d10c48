package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specledger/specledger/internal/model"
)

func epicWithCriteria(title string, items []string, body string) string {
	section := "## Acceptance Criteria\n"
	for _, item := range items {
		section += "\n- [ ] " + item
	}
	return epicContent(title, longBody(body)+"\n\n"+section)
}

func TestCreateWorkItem_PinsVersionsAndCrossRefs(t *testing.T) {
	eng := setupTestEngine(t)
	ctx := context.Background()

	created := createEpic(t, eng, "Data export", longBody("## Purpose\n\nExport."))

	w, err := eng.CreateWorkItem(ctx, CreateWorkItemParams{
		Type:         model.WorkItemDefect,
		Title:        "Export truncates output",
		Assignee:     "alice",
		ProjectID:    "default",
		AffectedDocs: []string{"EPIC-0001"},
	})
	require.NoError(t, err)

	assert.Equal(t, "DEF-0001", w.HumanReadableID)
	assert.Equal(t, model.WorkCreated, w.Status)
	assert.Equal(t, []string{created.Document.ID}, w.AffectedDocs)
	assert.Equal(t, []string{created.Version.ID}, w.TargetVersionIDs)
	assert.Empty(t, w.BaselineHashes, "baselines are captured for change requests only")

	v, err := eng.store.GetVersion(ctx, created.Version.ID)
	require.NoError(t, err)
	assert.Contains(t, v.CrossRefs, w.ID)
}

func TestCreateWorkItem_BaselinesForChangeRequests(t *testing.T) {
	eng := setupTestEngine(t)
	ctx := context.Background()

	created := createEpic(t, eng, "Data export", longBody("## Purpose\n\nExport."))

	w, err := eng.CreateWorkItem(ctx, CreateWorkItemParams{
		Type:         model.WorkItemChangeRequest,
		Title:        "Rework export",
		ProjectID:    "default",
		AffectedDocs: []string{"EPIC-0001"},
		ProposedContent: map[string]string{
			"EPIC-0001": epicContent("Data export", longBody("## Purpose\n\nReworked.")),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, created.Version.ContentHash, w.BaselineHashes[created.Document.ID])
	assert.Contains(t, w.ProposedContent, created.Document.ID, "proposed content is keyed by document ID after resolution")
}

func TestCreateWorkItem_Validation(t *testing.T) {
	eng := setupTestEngine(t)
	ctx := context.Background()

	createEpic(t, eng, "Data export", longBody("## Purpose\n\nExport."))

	_, err := eng.CreateWorkItem(ctx, CreateWorkItemParams{
		Type: model.WorkItemDefect, ProjectID: "default",
	})
	assert.ErrorContains(t, err, "title cannot be empty")

	_, err = eng.CreateWorkItem(ctx, CreateWorkItemParams{
		Type: "epic", Title: "t", ProjectID: "default",
	})
	assert.ErrorContains(t, err, "unknown work item type")

	_, err = eng.CreateWorkItem(ctx, CreateWorkItemParams{
		Type:            model.WorkItemDefect,
		Title:           "t",
		ProjectID:       "default",
		AffectedDocs:    []string{"EPIC-0001"},
		ProposedContent: map[string]string{"EPIC-0001": "x"},
	})
	assert.ErrorContains(t, err, "only valid on change requests")

	_, err = eng.CreateWorkItem(ctx, CreateWorkItemParams{
		Type:            model.WorkItemChangeRequest,
		Title:           "t",
		ProjectID:       "default",
		ProposedContent: map[string]string{"EPIC-0001": "x"},
	})
	assert.ErrorContains(t, err, "not an affected document")
}

func TestUpdateProposedContent_RefreshesBaseline(t *testing.T) {
	eng := setupTestEngine(t)
	ctx := context.Background()

	created := createEpic(t, eng, "Data export", longBody("## Purpose\n\nExport."))

	w, err := eng.CreateWorkItem(ctx, CreateWorkItemParams{
		Type:      model.WorkItemChangeRequest,
		Title:     "Rework export",
		ProjectID: "default",
	})
	require.NoError(t, err)

	// A later edit moves the document past the creation-time version;
	// proposing content afterwards captures the current hash.
	res, err := eng.EditContent(ctx, "EPIC-0001",
		epicContent("Data export", longBody("## Purpose\n\nEdited.")), "", "")
	require.NoError(t, err)

	proposed := epicContent("Data export", longBody("## Purpose\n\nProposed."))
	w, err = eng.UpdateProposedContent(ctx, w.HumanReadableID, "EPIC-0001", proposed)
	require.NoError(t, err)

	assert.Equal(t, res.Version.ContentHash, w.BaselineHashes[created.Document.ID])
	assert.Equal(t, proposed, w.ProposedContent[created.Document.ID])
	assert.Contains(t, w.AffectedDocs, created.Document.ID, "proposing for a new document links it")

	v, err := eng.store.GetVersion(ctx, res.Version.ID)
	require.NoError(t, err)
	assert.Contains(t, v.CrossRefs, w.ID)
}

func TestUpdateProposedContent_RejectsTerminalAndNonChangeRequest(t *testing.T) {
	eng := setupTestEngine(t)
	ctx := context.Background()

	createEpic(t, eng, "Data export", longBody("## Purpose\n\nExport."))

	def, err := eng.CreateWorkItem(ctx, CreateWorkItemParams{
		Type: model.WorkItemDefect, Title: "t", ProjectID: "default",
	})
	require.NoError(t, err)
	_, err = eng.UpdateProposedContent(ctx, def.HumanReadableID, "EPIC-0001", "x")
	assert.ErrorContains(t, err, "not a change request")

	cr, err := eng.CreateWorkItem(ctx, CreateWorkItemParams{
		Type: model.WorkItemChangeRequest, Title: "t", ProjectID: "default",
	})
	require.NoError(t, err)
	_, _, err = eng.TransitionWorkItem(ctx, cr.HumanReadableID, model.WorkCancelled, "")
	require.NoError(t, err)
	_, err = eng.UpdateProposedContent(ctx, cr.HumanReadableID, "EPIC-0001", "x")
	assert.ErrorContains(t, err, "cannot be edited")
}

func TestCriteria_ExtractedOnCreate(t *testing.T) {
	eng := setupTestEngine(t)
	ctx := context.Background()

	_, err := eng.CreateDocument(ctx, CreateDocumentParams{
		Type:      model.TypeEpic,
		ProjectID: "default",
		Content: epicWithCriteria("Data export",
			[]string{"Export completes within 30 seconds", "Output is valid JSON"},
			"## Purpose\n\nExport."),
	})
	require.NoError(t, err)

	rows, err := eng.ListCriteria(ctx, "EPIC-0001", nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Ordinal)
	assert.Equal(t, "Export completes within 30 seconds", rows[0].Text)
	assert.False(t, rows[0].Met)

	summary, err := eng.CriteriaSummary(ctx, "EPIC-0001", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 0, summary.Met)
}

func TestSetCriterionMet_AndHistory(t *testing.T) {
	eng := setupTestEngine(t)
	ctx := context.Background()

	_, err := eng.CreateDocument(ctx, CreateDocumentParams{
		Type:      model.TypeEpic,
		ProjectID: "default",
		Content: epicWithCriteria("Data export",
			[]string{"Export completes within 30 seconds"}, "## Purpose\n\nExport."),
	})
	require.NoError(t, err)

	rows, err := eng.ListCriteria(ctx, "EPIC-0001", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = eng.SetCriterionMet(ctx, rows[0].ID, true, "")
	assert.ErrorContains(t, err, "met_by is required")

	c, err := eng.SetCriterionMet(ctx, rows[0].ID, true, "alice")
	require.NoError(t, err)
	assert.True(t, c.Met)
	require.NotNil(t, c.MetAt)
	assert.Equal(t, "alice", c.MetBy)

	hist, err := eng.DocumentHistory(ctx, "EPIC-0001")
	require.NoError(t, err)
	last := hist[len(hist)-1]
	assert.Equal(t, "criterion_met", last.FieldName)
	assert.Equal(t, "1:false", last.OldValue)
	assert.Equal(t, "1:true", last.NewValue)

	c, err = eng.SetCriterionMet(ctx, rows[0].ID, false, "")
	require.NoError(t, err)
	assert.False(t, c.Met)
	assert.Nil(t, c.MetAt)
	assert.Empty(t, c.MetBy)
}

func TestCriteria_LineageAcrossVersions(t *testing.T) {
	eng := setupTestEngine(t)
	ctx := context.Background()

	_, err := eng.CreateDocument(ctx, CreateDocumentParams{
		Type:      model.TypeEpic,
		ProjectID: "default",
		Content: epicWithCriteria("Data export",
			[]string{"Export completes within 30 seconds", "Output is valid JSON"},
			"## Purpose\n\nExport."),
	})
	require.NoError(t, err)

	rows, err := eng.ListCriteria(ctx, "EPIC-0001", nil)
	require.NoError(t, err)
	_, err = eng.SetCriterionMet(ctx, rows[0].ID, true, "alice")
	require.NoError(t, err)

	// The edit keeps the first criterion verbatim, drops the second and
	// adds a third.
	res, err := eng.EditContent(ctx, "EPIC-0001",
		epicWithCriteria("Data export",
			[]string{"Export completes within 30 seconds", "Errors are reported per row"},
			"## Purpose\n\nExport, revised."), "", "")
	require.NoError(t, err)
	require.True(t, res.Changed)

	two := 2
	next, err := eng.ListCriteria(ctx, "EPIC-0001", &two)
	require.NoError(t, err)
	require.Len(t, next, 2)

	assert.True(t, next[0].Met, "verbatim criteria inherit their met state")
	assert.Equal(t, "alice", next[0].MetBy)
	assert.Equal(t, rows[0].ID, next[0].SourceCriterionID)

	assert.Equal(t, "Errors are reported per row", next[1].Text)
	assert.False(t, next[1].Met)
	assert.Empty(t, next[1].SourceCriterionID)

	// The prior version's rows are untouched.
	one := 1
	prior, err := eng.ListCriteria(ctx, "EPIC-0001", &one)
	require.NoError(t, err)
	require.Len(t, prior, 2)
	assert.Equal(t, "Output is valid JSON", prior[1].Text)
}

func TestReextractCriteria_Idempotent(t *testing.T) {
	eng := setupTestEngine(t)
	ctx := context.Background()

	_, err := eng.CreateDocument(ctx, CreateDocumentParams{
		Type:      model.TypeEpic,
		ProjectID: "default",
		Content: epicWithCriteria("Data export",
			[]string{"Export completes within 30 seconds"}, "## Purpose\n\nExport."),
	})
	require.NoError(t, err)

	first, err := eng.ReextractCriteria(ctx, "EPIC-0001", nil)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := eng.ReextractCriteria(ctx, "EPIC-0001", nil)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID, "re-running extraction writes nothing new")
}

func TestWorkItemHumanReadableIDs(t *testing.T) {
	eng := setupTestEngine(t)
	ctx := context.Background()

	types := []struct {
		t    model.WorkItemType
		hrid string
	}{
		{model.WorkItemChangeRequest, "CR-0001"},
		{model.WorkItemDefect, "DEF-0001"},
		{model.WorkItemDebt, "DEBT-0001"},
		{model.WorkItemRelease, "REL-0001"},
	}
	for i, tt := range types {
		w, err := eng.CreateWorkItem(ctx, CreateWorkItemParams{
			Type: tt.t, Title: fmt.Sprintf("item %d", i), ProjectID: "default",
		})
		require.NoError(t, err)
		assert.Equal(t, tt.hrid, w.HumanReadableID)
	}
}
