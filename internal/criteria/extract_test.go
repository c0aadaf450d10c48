package criteria

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specledger/specledger/internal/model"
)

const sampleBody = `# Streaming export

## Purpose

Export dashboards as a stream.

## Acceptance Criteria

- [ ] Export completes within 30 seconds
- [x] Partial results are flushed every 512 rows

### Success Criteria

- [ ] Throughput stays above 1000 rows/sec
- [X] Memory stays under 256 MiB

## Notes

- [ ] This checkbox is outside the section
`

func TestExtract_SectionAndOrdinals(t *testing.T) {
	items := Extract(sampleBody)
	require.Len(t, items, 4)

	assert.Equal(t, "Export completes within 30 seconds", items[0].Text)
	assert.Equal(t, "Partial results are flushed every 512 rows", items[1].Text)
	assert.Equal(t, "Throughput stays above 1000 rows/sec", items[2].Text)
	assert.Equal(t, "Memory stays under 256 MiB", items[3].Text)

	for i, item := range items {
		assert.Equal(t, i+1, item.Ordinal, "ordinals follow document order")
		assert.Equal(t, model.CriterionHash(item.Text), item.Hash)
	}
}

func TestExtract_CheckboxStates(t *testing.T) {
	items := Extract(sampleBody)
	require.Len(t, items, 4)

	assert.False(t, items[0].Met)
	assert.True(t, items[1].Met, "lowercase x marks met")
	assert.False(t, items[2].Met)
	assert.True(t, items[3].Met, "uppercase X marks met")
}

func TestExtract_SubsectionCategories(t *testing.T) {
	items := Extract(sampleBody)
	require.Len(t, items, 4)

	assert.Empty(t, items[0].Category)
	assert.Empty(t, items[1].Category)
	assert.Equal(t, "Success Criteria", items[2].Category)
	assert.Equal(t, "Success Criteria", items[3].Category)
}

func TestExtract_SectionHeadingCaseInsensitive(t *testing.T) {
	body := "## acceptance criteria\n\n- [ ] Lowercase heading still counts\n"
	items := Extract(body)
	require.Len(t, items, 1)
	assert.Equal(t, "Lowercase heading still counts", items[0].Text)
}

func TestExtract_StopsAtNextSection(t *testing.T) {
	items := Extract(sampleBody)
	for _, item := range items {
		assert.NotContains(t, item.Text, "outside the section")
	}
}

func TestExtract_SkipsPlaceholdersAndShortItems(t *testing.T) {
	body := strings.Join([]string{
		"## Acceptance Criteria",
		"",
		"- [ ] [User-observable outcome 1]",
		"- [ ] ok",
		"- [ ] Real criterion text",
	}, "\n")

	items := Extract(body)
	require.Len(t, items, 1)
	assert.Equal(t, "Real criterion text", items[0].Text)
	assert.Equal(t, 1, items[0].Ordinal, "skipped lines do not consume ordinals")
}

func TestExtract_NoSection(t *testing.T) {
	assert.Nil(t, Extract("# Title\n\n- [ ] A stray checkbox\n"))
	assert.Nil(t, Extract(""))
}

func TestSummarize(t *testing.T) {
	rows := []model.Criterion{
		{Met: true},
		{Met: false},
		{Met: true},
		{Met: false},
	}

	s := Summarize(rows)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Met)
	assert.Equal(t, 2, s.Unmet)
	assert.InDelta(t, 50.0, s.Percent, 0.001)

	empty := Summarize(nil)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.Percent)
}
