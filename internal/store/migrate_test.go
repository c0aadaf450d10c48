package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specledger/specledger/internal/doc"
	"github.com/specledger/specledger/internal/model"
)

const legacyContent = `---
type: feature
title: Legacy export
status: approved
created_at: 2024-01-05T10:00:00
tags: !!python/object/apply:builtins.list
- backend
parent: COMP-0001
---

## Purpose

Legacy body text.
`

func TestRepairLegacyContent(t *testing.T) {
	repaired, ok := repairLegacyContent(legacyContent)
	require.True(t, ok)

	meta, body, err := doc.Parse(repaired)
	require.NoError(t, err)
	assert.Equal(t, model.TypeFeature, meta.Type)
	assert.Equal(t, "Legacy export", meta.Title)
	assert.Equal(t, "COMP-0001", meta.Parent)
	assert.Contains(t, body, "Legacy body text.")

	// System-managed fields never survive the repair.
	assert.NotContains(t, repaired, "status:")
	assert.NotContains(t, repaired, "created_at:")
	assert.NotContains(t, repaired, "!!python")
}

func TestRepairLegacyContent_Unrepairable(t *testing.T) {
	_, ok := repairLegacyContent("no frontmatter at all")
	assert.False(t, ok)

	_, ok = repairLegacyContent("---\nstatus: draft\n---\n\nmissing type and title\n")
	assert.False(t, ok)
}

func TestMigration_RepairsLegacyRowsOnOpen(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/legacy.db"

	s, err := Open(path)
	require.NoError(t, err)

	_, v := seedDocument(t, s, "FEAT-0001")

	// Rewind the database to a pre-migration state with a legacy row.
	_, err = s.DB().Exec(`UPDATE versions SET content = ? WHERE id = ?`, legacyContent, v.ID)
	require.NoError(t, err)
	_, err = s.DB().Exec(`PRAGMA user_version = 0`)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetVersion(context.Background(), v.ID)
	require.NoError(t, err)

	meta, _, err := doc.Parse(got.Content)
	require.NoError(t, err)
	assert.Equal(t, "Legacy export", meta.Title)
	assert.Equal(t, model.ContentHash(got.Content), got.ContentHash, "repair rewrites the stored hash")

	var version int
	require.NoError(t, s.DB().QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}
