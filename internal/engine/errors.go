package engine

import (
	"fmt"
	"strings"
)

// ConflictError reports a merge baseline mismatch: the document named
// here was modified after the change request captured its baseline.
type ConflictError struct {
	DocumentID      string
	HumanReadableID string
	BaselineHash    string
	CurrentHash     string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	ref := e.HumanReadableID
	if ref == "" {
		ref = e.DocumentID
	}
	return fmt.Sprintf("merge conflict on document %s: content changed since the change request captured its baseline (baseline %.12s..., current %.12s...)",
		ref, e.BaselineHash, e.CurrentHash)
}

// DependentsError blocks deletion of a document that other documents
// still depend on.
type DependentsError struct {
	DocumentID      string
	HumanReadableID string
	Dependents      []string
}

// Error implements the error interface.
func (e *DependentsError) Error() string {
	ref := e.HumanReadableID
	if ref == "" {
		ref = e.DocumentID
	}
	return fmt.Sprintf("cannot delete document %s: %d document(s) depend on it: %s",
		ref, len(e.Dependents), strings.Join(e.Dependents, ", "))
}

// ContentLengthError blocks a version from entering review or approved
// with content below the minimum length for its document type.
type ContentLengthError struct {
	DocType   string
	Length    int
	MinLength int
}

// Error implements the error interface.
func (e *ContentLengthError) Error() string {
	return fmt.Sprintf("content too short for review/approval: %s documents require at least %d characters, got %d",
		e.DocType, e.MinLength, e.Length)
}
