package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	Forbidden
	Conflict
	Unauthenticated
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Conflict:
		return "conflict"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error is a classified error. Sentinels are declared as *Error values so errors.Is
// matches by identity.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err while keeping it reachable through errors.Unwrap.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// FaultKind lets other error types take part in classification.
func (e *Error) FaultKind() Kind { return e.Kind }

type classified interface {
	FaultKind() Kind
}

// KindOf returns the kind of the outermost classified error in the chain, or Internal.
func KindOf(err error) Kind {
	if err == nil {
		return Internal
	}
	var c classified
	if errors.As(err, &c) {
		return c.FaultKind()
	}
	return Internal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-facing text of a classified error. Internal errors get a
// generic message so storage details never leak.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var c classified
	if !errors.As(err, &c) || c.FaultKind() == Internal {
		return "Server error"
	}
	if fe, ok := c.(*Error); ok && fe.Message != "" {
		return fe.Message
	}
	if e, ok := c.(error); ok {
		return e.Error()
	}
	return err.Error()
}
