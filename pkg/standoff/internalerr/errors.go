package internalerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDuplicate     = errors.New("duplicate entry")
	ErrInvalidConfig = errors.New("invalid configuration")

	ErrFieldParse       = errors.New("field parse error")
	ErrMismatch         = errors.New("text mismatch")
	ErrUnclosedBracket  = errors.New("unclosed bracket")
	ErrTypeContinuation = errors.New("entity type continuation")
	ErrEntityText       = errors.New("entity text")
	ErrLeftover         = errors.New("leftover alphanumeric text")
)

// Kind classifies an alignment failure.
type Kind string

const (
	KindFieldParse       Kind = "field-parse"
	KindMismatch         Kind = "mismatch"
	KindUnclosedBracket  Kind = "unclosed-bracket"
	KindTypeContinuation Kind = "type-continuation"
	KindEntityText       Kind = "entity-text"
	KindLeftover         Kind = "leftover"
)

var sentinels = map[Kind]error{
	KindFieldParse:       ErrFieldParse,
	KindMismatch:         ErrMismatch,
	KindUnclosedBracket:  ErrUnclosedBracket,
	KindTypeContinuation: ErrTypeContinuation,
	KindEntityText:       ErrEntityText,
	KindLeftover:         ErrLeftover,
}

// AlignmentError is returned for every condition that must stop a
// conversion. Line is the 1-based BIO line number, or 0 when the failure
// is not tied to one line.
type AlignmentError struct {
	Kind    Kind
	Line    int
	Context string
}

// NewAlignmentError builds an AlignmentError with a formatted context.
func NewAlignmentError(kind Kind, line int, format string, args ...interface{}) *AlignmentError {
	return &AlignmentError{
		Kind:    kind,
		Line:    line,
		Context: fmt.Sprintf(format, args...),
	}
}

func (e *AlignmentError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", e.Kind, e.Line, e.Context)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Context)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *AlignmentError) Unwrap() error {
	return sentinels[e.Kind]
}
