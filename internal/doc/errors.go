package doc

import "fmt"

// ParseError reports document text with missing or malformed metadata.
type ParseError struct {
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return "parse error: " + e.Message
}

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError reports metadata that parsed but fails a structural
// requirement (missing required field, type mismatch).
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return "validation error: " + e.Message
}

// ReservedTagError reports a user tag that collides with a
// system-injected status indicator.
type ReservedTagError struct {
	Tag     string
	Message string
}

// Error implements the error interface.
func (e *ReservedTagError) Error() string {
	return fmt.Sprintf("reserved tag %q: %s", e.Tag, e.Message)
}
