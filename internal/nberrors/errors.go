// Package nberrors classifies engine errors into the four severities of
// spec §7 (Fatal, Logic, User, Warning) and renders them with the
// single-letter tag the log format uses ('F'/'L'/'E'/'W').
//
// Grounded on the teacher's internal/errors/errors.go: a typed error
// struct with a builder-method chain (WithSource/WithStack there,
// WithTerm/Wrap here), kept stdlib-only — the teacher itself
// never reaches for a third-party error library for this concern.
package nberrors

import (
	"errors"
	"fmt"
)

// Kind is the severity of an engine error, ordered most to least severe.
type Kind int

const (
	// Fatal: heap exhaustion, hash-grow failure, unrecoverable I/O on a
	// core file. The engine logs and the hosting process should exit.
	Fatal Kind = iota
	// Logic: an internal invariant was violated (cycle detected, rule
	// re-fired while scheduled, subscriber-tree corruption). The engine
	// continues but marks the offending record to prevent repeated
	// misfiring.
	Logic
	// User: malformed input from an external collaborator (unresolved
	// term with no source, schedule-parse failure). The calling
	// operation returns a null/error marker.
	User
	// Warning: deprecated syntax, truncated buffers, an unparseable
	// source-provided value (treated as Unknown). The operation
	// continues.
	Warning
)

func (k Kind) tag() byte {
	switch k {
	case Fatal:
		return 'F'
	case Logic:
		return 'L'
	case User:
		return 'E'
	case Warning:
		return 'W'
	default:
		return '?'
	}
}

func (k Kind) String() string {
	switch k {
	case Fatal:
		return "Fatal"
	case Logic:
		return "Logic"
	case User:
		return "User"
	case Warning:
		return "Warning"
	default:
		return "Unknown"
	}
}

// Error is an engine error carrying its severity and, optionally, the
// name of the term/cell it concerns.
type Error struct {
	Kind    Kind
	Message string
	Term    string // term or cell name, if relevant; empty otherwise
	Cause   error  // wrapped underlying error, if any
}

func (e *Error) Error() string {
	if e.Term != "" {
		return fmt.Sprintf("%c %s: %s (%s)", e.Kind.tag(), e.Kind, e.Message, e.Term)
	}
	return fmt.Sprintf("%c %s: %s", e.Kind.tag(), e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Tag returns the single-letter severity tag used by the engine's log
// format (spec §7).
func (e *Error) Tag() byte { return e.Kind.tag() }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Newf constructs an error of the given kind.
func Newf(kind Kind, format string, args ...any) *Error {
	return newError(kind, format, args...)
}

// Fatalf, Logicf, Userf, Warningf are convenience constructors for each
// severity.
func Fatalf(format string, args ...any) *Error   { return newError(Fatal, format, args...) }
func Logicf(format string, args ...any) *Error   { return newError(Logic, format, args...) }
func Userf(format string, args ...any) *Error    { return newError(User, format, args...) }
func Warningf(format string, args ...any) *Error { return newError(Warning, format, args...) }

// WithTerm annotates the error with the term/cell name it concerns.
func (e *Error) WithTerm(name string) *Error {
	e.Term = name
	return e
}

// Wrap attaches an underlying cause, preserving severity/message.
func (e *Error) Wrap(cause error) *Error {
	e.Cause = cause
	return e
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error,
// defaulting to User for ordinary errors reaching the engine boundary.
func KindOf(err error) Kind {
	if err == nil {
		return -1
	}
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind
	}
	return User
}
