package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command against a shared temp database and
// returns stdout.
func runCLI(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", dbPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeDocFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const testEpic = `---
type: epic
title: Data export
---

## Purpose

` // body is padded below so the epic clears the approval length floor

func testEpicContent() string {
	return testEpic + strings.Repeat("Streams dashboards to object storage in fixed-size batches. ", 8) + "\n"
}

func TestCreateAndShow(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "test.db")
	file := writeDocFile(t, dir, "epic.md", testEpicContent())

	out, err := runCLI(t, db, "create", "epic", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Created EPIC-0001 (version 1, draft)")

	out, err = runCLI(t, db, "show", "EPIC-0001")
	require.NoError(t, err)
	assert.Contains(t, out, "status: draft")
	assert.Contains(t, out, "human_readable_id: EPIC-0001")

	out, err = runCLI(t, db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "EPIC-0001")
}

func TestCreate_ParseErrorReportsE006(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "test.db")
	file := writeDocFile(t, dir, "bad.md", "no frontmatter here\n")

	out, err := runCLI(t, db, "create", "epic", file)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]")
}

func TestCreate_ReservedTagRejected(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "test.db")
	file := writeDocFile(t, dir, "epic.md", testEpicContent())

	out, err := runCLI(t, db, "create", "epic", file, "--tag", "deployed-v3")
	require.Error(t, err)
	assert.Contains(t, out, "Error [E006]")
	assert.Contains(t, out, "deployed-v3")
}

func TestTransition_BlockedReportsE003(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "test.db")
	file := writeDocFile(t, dir, "epic.md", testEpicContent())

	_, err := runCLI(t, db, "create", "epic", file)
	require.NoError(t, err)

	out, err := runCLI(t, db, "transition", "EPIC-0001", "approved")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]")

	out, err = runCLI(t, db, "transition", "EPIC-0001", "review")
	require.NoError(t, err)
	assert.Contains(t, out, "review")
}

func TestShow_UnknownDocumentReportsE002(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "test.db")

	out, err := runCLI(t, db, "show", "EPIC-0404")
	require.Error(t, err)
	assert.Contains(t, out, "Error [E002]")
}
