package doc

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specledger/specledger/internal/model"
)

const sampleContent = `---
type: feature
title: Streaming export
parent: COMP-0001
depends_on: [REQ-0001, REQ-0002]
---

## Purpose

Stream exports without buffering.`

func TestParse_SplitsFrontmatterAndBody(t *testing.T) {
	meta, body, err := Parse(sampleContent)
	require.NoError(t, err)

	assert.Equal(t, model.TypeFeature, meta.Type)
	assert.Equal(t, "Streaming export", meta.Title)
	assert.Equal(t, "COMP-0001", meta.Parent)
	assert.Equal(t, []string{"REQ-0001", "REQ-0002"}, meta.DependsOn)
	assert.Equal(t, "## Purpose\n\nStream exports without buffering.", body)
}

func TestParse_MissingFrontmatter(t *testing.T) {
	_, _, err := Parse("just a body with no metadata")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "frontmatter")
}

func TestParse_UnknownKeyRejected(t *testing.T) {
	content := "---\ntype: epic\ntitle: T\ncustom_field: nope\n---\n\nbody"
	_, _, err := Parse(content)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		meta    Meta
		want    model.DocType
		wantErr string
	}{
		{
			name: "valid feature",
			meta: Meta{Type: model.TypeFeature, Title: "T", Parent: "COMP-0001"},
			want: model.TypeFeature,
		},
		{
			name: "valid epic without parent",
			meta: Meta{Type: model.TypeEpic, Title: "T"},
			want: model.TypeEpic,
		},
		{
			name:    "missing type",
			meta:    Meta{Title: "T"},
			want:    model.TypeFeature,
			wantErr: "type",
		},
		{
			name:    "unknown type",
			meta:    Meta{Type: "gadget", Title: "T"},
			want:    model.TypeFeature,
			wantErr: "unknown document type",
		},
		{
			name:    "type mismatch",
			meta:    Meta{Type: model.TypeEpic, Title: "T"},
			want:    model.TypeFeature,
			wantErr: "does not match expected type",
		},
		{
			name:    "empty title",
			meta:    Meta{Type: model.TypeEpic, Title: "  "},
			want:    model.TypeEpic,
			wantErr: "title",
		},
		{
			name:    "epic with parent",
			meta:    Meta{Type: model.TypeEpic, Title: "T", Parent: "EPIC-0001"},
			want:    model.TypeEpic,
			wantErr: "parent",
		},
		{
			name:    "non-epic without parent",
			meta:    Meta{Type: model.TypeRequirement, Title: "T"},
			want:    model.TypeRequirement,
			wantErr: "parent",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.meta, tt.want)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInject_Golden(t *testing.T) {
	injected, err := Inject(sampleContent, "approved", []string{"p1", "backend"}, "FEAT-0002")
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithNameSuffix(".golden"))
	g.Assert(t, "inject", []byte(injected))
}

func TestStrip_Golden(t *testing.T) {
	injected, err := Inject(sampleContent, "approved", []string{"p1"}, "FEAT-0002")
	require.NoError(t, err)

	stripped, err := Strip(injected)
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithNameSuffix(".golden"))
	g.Assert(t, "strip", []byte(stripped))
}

func TestStrip_RemovesSystemFields(t *testing.T) {
	injected, err := Inject(sampleContent, "review", []string{"x"}, "FEAT-0009")
	require.NoError(t, err)

	stripped, err := Strip(injected)
	require.NoError(t, err)

	meta, _, err := Parse(stripped)
	require.NoError(t, err)
	assert.Empty(t, meta.Status)
	assert.Nil(t, meta.Tags)
	assert.Empty(t, meta.HumanReadableID)
	assert.Equal(t, "Streaming export", meta.Title)
}

func TestContentHasChanged(t *testing.T) {
	t.Run("identical content", func(t *testing.T) {
		changed, err := ContentHasChanged(sampleContent, sampleContent)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("system fields only", func(t *testing.T) {
		injected, err := Inject(sampleContent, "approved", []string{"ops"}, "FEAT-0001")
		require.NoError(t, err)

		changed, err := ContentHasChanged(sampleContent, injected)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("title change", func(t *testing.T) {
		other := "---\ntype: feature\ntitle: Batched export\nparent: COMP-0001\n---\n\nbody text here"
		changed, err := ContentHasChanged(sampleContent, other)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("body change", func(t *testing.T) {
		other := sampleContent + "\n\nExtra paragraph."
		changed, err := ContentHasChanged(sampleContent, other)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("empty old content", func(t *testing.T) {
		changed, err := ContentHasChanged("", sampleContent)
		require.NoError(t, err)
		assert.True(t, changed)
	})
}

func TestRender_Deterministic(t *testing.T) {
	meta, body, err := Parse(sampleContent)
	require.NoError(t, err)

	first := Render(meta, body)
	second := Render(meta, body)
	assert.Equal(t, first, second)

	// Round trip preserves the authored view.
	again, _, err := Parse(first)
	require.NoError(t, err)
	assert.Equal(t, meta, again)
}
