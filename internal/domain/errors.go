package domain

import (
	"errors"
	"fmt"
)

// Sentinel causes. Every Error built by this module unwraps to one of these
// so callers can branch with errors.Is.
var (
	ErrMissingDeclaration   = errors.New("missing varnishtest declaration")
	ErrAmbiguousLabel       = errors.New("ambiguous block label")
	ErrNoCases              = errors.New("block contains no request/response cases")
	ErrNoStages             = errors.New("no stages produced")
	ErrUnsupportedOperator  = errors.New("unsupported comparison operator")
	ErrDuplicateExpectation = errors.New("duplicate expectation")
	ErrCoercion             = errors.New("value coercion failed")
	ErrFieldMapping         = errors.New("malformed field mapping")
	ErrUsage                = errors.New("usage error")
	ErrSchema               = errors.New("document does not match tavern schema")
	ErrDestinationConflict  = errors.New("destination path conflict")
	ErrAmbiguousServer      = errors.New("script mentions server without a server block")
)

// Error is the base error type with context.
type Error struct {
	Phase      string // "config", "scan", "parse", "convert", "write", "usage"
	File       string
	LineNumber int
	Message    string
	Suggestion string
	Cause      error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("[%s]", e.Phase)
	if e.File != "" {
		s += fmt.Sprintf(" %s", e.File)
	}
	if e.LineNumber > 0 {
		s += fmt.Sprintf(":%d", e.LineNumber)
	}
	s += fmt.Sprintf(": %s", e.Message)
	if e.Cause != nil {
		s += fmt.Sprintf(": %v", e.Cause)
	}
	if e.Suggestion != "" {
		s += fmt.Sprintf(" (hint: %s)", e.Suggestion)
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error.
func NewError(phase, file string, line int, message string, cause error) *Error {
	return &Error{
		Phase:      phase,
		File:       file,
		LineNumber: line,
		Message:    message,
		Cause:      cause,
	}
}

// NewErrorWithSuggestion creates a new Error carrying a remediation hint.
func NewErrorWithSuggestion(phase, file string, line int, message, suggestion string, cause error) *Error {
	e := NewError(phase, file, line, message, cause)
	e.Suggestion = suggestion
	return e
}

// WithFile returns err annotated with the given file path when err is an
// *Error without one. Other errors are wrapped in a new *Error.
func WithFile(err error, phase, file string) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		if de.File == "" {
			cp := *de
			cp.File = file
			return &cp
		}
		return err
	}
	return NewError(phase, file, 0, "failed", err)
}
