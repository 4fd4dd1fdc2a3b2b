package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies failures surfaced by the wizard core.
type ErrorKind string

const (
	// CatalogUnavailable means the catalog could not be fetched or parsed.
	// Fatal to the session: the wizard cannot leave the welcome step.
	CatalogUnavailable ErrorKind = "catalog_unavailable"

	// InvalidState means an operation was invoked in a step that does not
	// accept it, or with empty input. The session state is unchanged.
	InvalidState ErrorKind = "invalid_state"

	// NotFound means a referenced component id does not exist in the catalog.
	NotFound ErrorKind = "not_found"

	// IncompleteSelection means assembly was attempted before the persona
	// and LLM profile were chosen.
	IncompleteSelection ErrorKind = "incomplete_selection"

	// GenerationFailed means the conversation assistant failed or timed out.
	GenerationFailed ErrorKind = "generation_failed"
)

// Recoverable reports whether the caller can re-prompt and continue the
// session after an error of this kind.
func (k ErrorKind) Recoverable() bool {
	switch k {
	case InvalidState, NotFound, GenerationFailed:
		return true
	default:
		return false
	}
}

// Error is the typed error returned by catalog, wizard, assembler and
// assistant operations.
type Error struct {
	Kind    ErrorKind
	Op      string // operation that failed, e.g. "choosePersona"
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an *Error with a formatted message.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and operation to an underlying error.
func Wrap(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
