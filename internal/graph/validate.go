package graph

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// MaxDepth bounds dependency traversal. Graphs deeper than this are
// treated as corrupted; traversal stops rather than overflowing.
const MaxDepth = 50

// Source supplies the graph structure. The store implements it; tests
// use an in-memory map.
type Source interface {
	// DocumentProject returns the project of a document, or ok=false
	// when the document does not exist.
	DocumentProject(ctx context.Context, id string) (projectID string, ok bool, err error)
	// DirectDependencies returns the documents id directly depends on.
	DirectDependencies(ctx context.Context, id string) ([]string, error)
	// DocumentTags returns the resolved version's tags for a document.
	DocumentTags(ctx context.Context, id string) ([]string, error)
}

// Warning is a non-blocking finding, currently only priority
// inversions.
type Warning struct {
	DocumentID         string `json:"document_id"`
	DocumentPriority   int    `json:"document_priority"`
	DependencyID       string `json:"dependency_id"`
	DependencyPriority int    `json:"dependency_priority"`
	Message            string `json:"message"`
}

// Validator checks proposed dependency sets against a Source.
type Validator struct {
	source Source
	log    zerolog.Logger
}

// NewValidator creates a Validator. The logger may be zerolog.Nop().
func NewValidator(source Source, log zerolog.Logger) *Validator {
	return &Validator{source: source, log: log}
}

// Validate checks a proposed dependency set for a document. Blocking
// failures return an error; priority inversions come back as warnings
// alongside a nil error.
func (v *Validator) Validate(ctx context.Context, documentID string, proposed []string, projectID string) ([]Warning, error) {
	for _, dep := range proposed {
		if dep == documentID {
			return nil, ErrSelfDependency
		}
	}

	for _, dep := range proposed {
		depProject, ok, err := v.source.DocumentProject(ctx, dep)
		if err != nil {
			return nil, fmt.Errorf("validate dependencies: %w", err)
		}
		if !ok {
			return nil, &NotFoundError{DocumentID: dep}
		}
		if depProject != projectID {
			return nil, &ProjectMismatchError{DocumentID: dep, ProjectID: projectID}
		}
	}

	for _, dep := range proposed {
		path, err := v.pathTo(ctx, dep, documentID)
		if err != nil {
			return nil, fmt.Errorf("validate dependencies: %w", err)
		}
		if path != nil {
			// Close the cycle through the proposed edge documentID -> dep.
			cycle := append(path, dep)
			return nil, &CircularDependencyError{Path: cycle}
		}
	}

	warnings, err := v.priorityInversions(ctx, documentID, proposed)
	if err != nil {
		return nil, fmt.Errorf("validate dependencies: %w", err)
	}
	return warnings, nil
}

// TransitiveDependencies computes the full dependency closure of a
// document with an explicit work list, excluding the document itself.
// Traversal beyond MaxDepth is dropped with a warning log.
func (v *Validator) TransitiveDependencies(ctx context.Context, documentID string) (map[string]struct{}, error) {
	type frame struct {
		id    string
		depth int
	}

	seen := map[string]struct{}{documentID: {}}
	stack := []frame{{id: documentID, depth: 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth >= MaxDepth {
			v.log.Warn().Str("document_id", documentID).Int("max_depth", MaxDepth).
				Msg("dependency traversal depth bound reached")
			continue
		}

		deps, err := v.source.DirectDependencies(ctx, f.id)
		if err != nil {
			return nil, fmt.Errorf("transitive dependencies of %s: %w", documentID, err)
		}
		for _, dep := range deps {
			if _, ok := seen[dep]; ok {
				continue
			}
			seen[dep] = struct{}{}
			stack = append(stack, frame{id: dep, depth: f.depth + 1})
		}
	}

	delete(seen, documentID)
	return seen, nil
}

// pathTo searches for a dependency path from start to target and
// returns it ([start ... target]), or nil when target is unreachable.
// Depth-first with an explicit stack and the shared depth bound.
func (v *Validator) pathTo(ctx context.Context, start, target string) ([]string, error) {
	type frame struct {
		id    string
		depth int
	}

	parent := map[string]string{}
	seen := map[string]struct{}{start: {}}
	stack := []frame{{id: start, depth: 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.id == target {
			return rebuildPath(parent, start, target), nil
		}
		if f.depth >= MaxDepth {
			continue
		}

		deps, err := v.source.DirectDependencies(ctx, f.id)
		if err != nil {
			return nil, err
		}
		for _, dep := range deps {
			if _, ok := seen[dep]; ok {
				continue
			}
			seen[dep] = struct{}{}
			parent[dep] = f.id
			stack = append(stack, frame{id: dep, depth: f.depth + 1})
		}
	}
	return nil, nil
}

func rebuildPath(parent map[string]string, start, target string) []string {
	path := []string{target}
	for cur := target; cur != start; {
		cur = parent[cur]
		path = append([]string{cur}, path...)
	}
	return path
}
