package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSelfDependency rejects a document depending on itself.
var ErrSelfDependency = errors.New("document cannot depend on itself")

// NotFoundError reports a proposed dependency that does not exist.
type NotFoundError struct {
	DocumentID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dependency %s not found", e.DocumentID)
}

// ProjectMismatchError reports a proposed dependency outside the
// origin document's project.
type ProjectMismatchError struct {
	DocumentID string
	ProjectID  string
}

// Error implements the error interface.
func (e *ProjectMismatchError) Error() string {
	return fmt.Sprintf("dependency %s is in a different project than %s", e.DocumentID, e.ProjectID)
}

// CircularDependencyError reports a detected cycle. Path lists the
// documents along the cycle, first and last entries equal.
type CircularDependencyError struct {
	Path []string
}

// Error implements the error interface.
func (e *CircularDependencyError) Error() string {
	return "circular dependency detected: " + strings.Join(e.Path, " -> ")
}

// IsCircular reports whether err is a cycle rejection. Uses errors.As
// to handle wrapped errors.
func IsCircular(err error) bool {
	var ce *CircularDependencyError
	return errors.As(err, &ce)
}
