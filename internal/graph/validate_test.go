package graph

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory Source for validator tests.
type fakeSource struct {
	projects map[string]string
	deps     map[string][]string
	tags     map[string][]string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		projects: map[string]string{},
		deps:     map[string][]string{},
		tags:     map[string][]string{},
	}
}

func (f *fakeSource) add(id, project string, deps ...string) {
	f.projects[id] = project
	f.deps[id] = deps
}

func (f *fakeSource) DocumentProject(_ context.Context, id string) (string, bool, error) {
	p, ok := f.projects[id]
	return p, ok, nil
}

func (f *fakeSource) DirectDependencies(_ context.Context, id string) ([]string, error) {
	return f.deps[id], nil
}

func (f *fakeSource) DocumentTags(_ context.Context, id string) ([]string, error) {
	return f.tags[id], nil
}

func newTestValidator(src Source) *Validator {
	return NewValidator(src, zerolog.Nop())
}

func TestValidate_SelfDependency(t *testing.T) {
	src := newFakeSource()
	src.add("A", "default")

	v := newTestValidator(src)
	_, err := v.Validate(context.Background(), "A", []string{"A"}, "default")
	assert.ErrorIs(t, err, ErrSelfDependency)
}

func TestValidate_MissingDependency(t *testing.T) {
	src := newFakeSource()
	src.add("A", "default")

	v := newTestValidator(src)
	_, err := v.Validate(context.Background(), "A", []string{"ghost"}, "default")

	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "ghost", nfe.DocumentID)
}

func TestValidate_ProjectMismatch(t *testing.T) {
	src := newFakeSource()
	src.add("A", "default")
	src.add("B", "other")

	v := newTestValidator(src)
	_, err := v.Validate(context.Background(), "A", []string{"B"}, "default")

	var pme *ProjectMismatchError
	require.ErrorAs(t, err, &pme)
	assert.Equal(t, "B", pme.DocumentID)
	assert.Equal(t, "default", pme.ProjectID)
}

func TestValidate_RejectsCycleWithPath(t *testing.T) {
	// A -> B -> C already exist; adding C -> A closes the cycle.
	src := newFakeSource()
	src.add("A", "default", "B")
	src.add("B", "default", "C")
	src.add("C", "default")

	v := newTestValidator(src)
	_, err := v.Validate(context.Background(), "C", []string{"A"}, "default")

	var ce *CircularDependencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"A", "B", "C", "A"}, ce.Path)
	assert.True(t, IsCircular(err))
	assert.Contains(t, err.Error(), "A -> B -> C -> A")
}

func TestValidate_AcyclicPasses(t *testing.T) {
	src := newFakeSource()
	src.add("A", "default", "B")
	src.add("B", "default", "C")
	src.add("C", "default")
	src.add("D", "default")

	v := newTestValidator(src)

	// Diamond shapes are fine, only cycles are rejected.
	warnings, err := v.Validate(context.Background(), "D", []string{"A", "C"}, "default")
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidate_NewDocumentID(t *testing.T) {
	src := newFakeSource()
	src.add("A", "default")

	v := newTestValidator(src)
	warnings, err := v.Validate(context.Background(), "not-yet-created", []string{"A"}, "default")
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidate_PriorityInversionWarnings(t *testing.T) {
	src := newFakeSource()
	src.add("A", "default")
	src.add("B", "default")
	src.add("C", "default")
	src.tags["A"] = []string{"p1"}
	src.tags["B"] = []string{"backend", "p3"}
	src.tags["C"] = []string{"frontend"}

	v := newTestValidator(src)
	warnings, err := v.Validate(context.Background(), "A", []string{"B", "C"}, "default")
	require.NoError(t, err)

	// B inverts (P1 depends on P3); C has no priority tag and is skipped.
	require.Len(t, warnings, 1)
	w := warnings[0]
	assert.Equal(t, "A", w.DocumentID)
	assert.Equal(t, 1, w.DocumentPriority)
	assert.Equal(t, "B", w.DependencyID)
	assert.Equal(t, 3, w.DependencyPriority)
	assert.Contains(t, w.Message, "priority inversion")
}

func TestValidate_NoWarningWhenOriginUntagged(t *testing.T) {
	src := newFakeSource()
	src.add("A", "default")
	src.add("B", "default")
	src.tags["B"] = []string{"p3"}

	v := newTestValidator(src)
	warnings, err := v.Validate(context.Background(), "A", []string{"B"}, "default")
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestPriorityFromTags(t *testing.T) {
	tests := []struct {
		tags []string
		want int
		ok   bool
	}{
		{[]string{"p1"}, 1, true},
		{[]string{"priority2"}, 2, true},
		{[]string{"P3"}, 3, true},
		{[]string{"backend", "p2"}, 2, true},
		{[]string{"backend"}, 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := PriorityFromTags(tt.tags)
		assert.Equal(t, tt.ok, ok, "tags %v", tt.tags)
		assert.Equal(t, tt.want, got, "tags %v", tt.tags)
	}
}

func TestTransitiveDependencies(t *testing.T) {
	src := newFakeSource()
	src.add("A", "default", "B", "C")
	src.add("B", "default", "D")
	src.add("C", "default", "D")
	src.add("D", "default")

	v := newTestValidator(src)
	closure, err := v.TransitiveDependencies(context.Background(), "A")
	require.NoError(t, err)

	assert.Len(t, closure, 3)
	assert.Contains(t, closure, "B")
	assert.Contains(t, closure, "C")
	assert.Contains(t, closure, "D")
	assert.NotContains(t, closure, "A", "a document is not in its own closure")
}

func TestTransitiveDependencies_DepthBound(t *testing.T) {
	src := newFakeSource()
	// A chain twice as deep as the bound; traversal must terminate and
	// return only the reachable prefix.
	for i := 0; i < MaxDepth*2; i++ {
		src.add(fmt.Sprintf("doc-%03d", i), "default", fmt.Sprintf("doc-%03d", i+1))
	}
	src.add(fmt.Sprintf("doc-%03d", MaxDepth*2), "default")

	v := newTestValidator(src)
	closure, err := v.TransitiveDependencies(context.Background(), "doc-000")
	require.NoError(t, err)
	assert.Len(t, closure, MaxDepth)
}
