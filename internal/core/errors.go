// Package core holds the services every other package in GCodeKit5 depends
// on: the typed error taxonomy, the event bus, and opaque id allocation.
package core

import (
	"errors"
	"fmt"
)

// Kind classifies a failure the way the rest of the system needs to react to
// it: input errors are rejected without mutating state, communication errors
// trip the device link to disconnected, and so on.
type Kind int

const (
	// KindInputValidation covers parse failures, out-of-range parameters,
	// and invalid geometry supplied by a caller.
	KindInputValidation Kind = iota
	// KindResource covers file-not-found, unrecognized formats, and I/O
	// failures reading or writing a resource.
	KindResource
	// KindGeometry covers CSG/offset/tessellation operations that could not
	// produce a valid result.
	KindGeometry
	// KindCommunication covers transport disconnects, read/write errors,
	// timeouts, and controller alarms.
	KindCommunication
	// KindProtocol covers malformed firmware responses.
	KindProtocol
	// KindInvariant covers violated internal invariants. These are never
	// panics; they are returned like any other error.
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindInputValidation:
		return "input_validation"
	case KindResource:
		return "resource"
	case KindGeometry:
		return "geometry"
	case KindCommunication:
		return "communication"
	case KindProtocol:
		return "protocol"
	case KindInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Error is the typed error carried across package boundaries. It wraps an
// underlying cause (if any) and is comparable with errors.Is against the
// sentinel Kind values below.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is one of the sentinel Kind markers, so callers
// can write errors.Is(err, core.ErrGeometry) instead of a type switch.
func (e *Error) Is(target error) bool {
	k, ok := target.(kindSentinel)
	return ok && k.kind == e.Kind
}

type kindSentinel struct{ kind Kind }

func (kindSentinel) Error() string { return "" }

var (
	ErrInputValidation = kindSentinel{KindInputValidation}
	ErrResource        = kindSentinel{KindResource}
	ErrGeometry        = kindSentinel{KindGeometry}
	ErrCommunication   = kindSentinel{KindCommunication}
	ErrProtocol        = kindSentinel{KindProtocol}
	ErrInvariant       = kindSentinel{KindInvariant}
)

// New builds an Error of the given kind, wrapping cause if non-nil.
func New(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

// Wrap is a convenience for the common "op failed: %w" shape used throughout
// the codebase when a lower layer already returned an error worth tagging
// with a kind.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(kind, op, err.Error(), err)
}

// KindOf extracts the Kind of err if it (or something it wraps) is a *Error,
// returning ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
