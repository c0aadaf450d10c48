package graph

import (
	"context"
	"fmt"
	"strings"
)

// PriorityFromTags derives an integer priority from the tag
// convention: p1/priority1 is highest (1), down to p3/priority3.
// Returns ok=false when no priority tag is present.
func PriorityFromTags(tags []string) (int, bool) {
	for _, tag := range tags {
		switch strings.ToLower(tag) {
		case "p1", "priority1":
			return 1, true
		case "p2", "priority2":
			return 2, true
		case "p3", "priority3":
			return 3, true
		}
	}
	return 0, false
}

// priorityInversions warns when the origin document carries a
// numerically lower (higher-priority) value than a dependency it
// relies on. Documents without a priority tag are skipped.
func (v *Validator) priorityInversions(ctx context.Context, documentID string, deps []string) ([]Warning, error) {
	tags, err := v.source.DocumentTags(ctx, documentID)
	if err != nil {
		return nil, err
	}
	docPriority, ok := PriorityFromTags(tags)
	if !ok {
		return nil, nil
	}

	var warnings []Warning
	for _, dep := range deps {
		depTags, err := v.source.DocumentTags(ctx, dep)
		if err != nil {
			return nil, err
		}
		depPriority, ok := PriorityFromTags(depTags)
		if !ok {
			continue
		}
		if docPriority < depPriority {
			warnings = append(warnings, Warning{
				DocumentID:         documentID,
				DocumentPriority:   docPriority,
				DependencyID:       dep,
				DependencyPriority: depPriority,
				Message: fmt.Sprintf("priority inversion: P%d document depends on P%d document %s",
					docPriority, depPriority, dep),
			})
		}
	}
	return warnings, nil
}
