// Package apierror defines the error taxonomy shared by every provider
// adapter and the agent run loop. Call sites construct typed errors through
// the per-kind constructors (InvalidInput, Unsupported, Invariant, Transport,
// and the rest) rather than ad-hoc fmt.Errorf, so callers can branch on
// Kind via errors.As instead of string matching.
package apierror

import (
	"errors"
	"fmt"
)

// Kind discriminates the error taxonomy callers can branch on.
type Kind string

const (
	// KindInvalidInput means the caller supplied a value the library rejects
	// before any network call.
	KindInvalidInput Kind = "invalid_input"
	// KindUnsupported means a well-formed request asks for a capability the
	// selected provider cannot serve.
	KindUnsupported Kind = "unsupported"
	// KindNotImplemented means the code path is intentionally unfinished.
	KindNotImplemented Kind = "not_implemented"
	// KindProvider means the provider returned a non-2xx response.
	KindProvider Kind = "provider"
	// KindRefusal means the provider returned 2xx with an explicit refusal.
	KindRefusal Kind = "refusal"
	// KindInvariant means the provider violated its own documented contract.
	KindInvariant Kind = "invariant"
	// KindTransport means a network, DNS, TLS, or I/O error occurred.
	KindTransport Kind = "transport"
	// KindCancelled means the caller cancelled the operation.
	KindCancelled Kind = "cancelled"
	// KindMaxTurnsExceeded means an agent Run hit its configured turn limit.
	KindMaxTurnsExceeded Kind = "max_turns_exceeded"
)

// Error is the concrete error type returned by adapters and the agent loop.
type Error struct {
	Kind Kind
	// Msg is a human-readable summary.
	Msg string
	// Err is the underlying cause, when one exists (wrapped network error,
	// JSON decode failure, etc).
	Err error
	// Status is the provider's HTTP status code, set only for KindProvider.
	Status int
	// Body is the provider's raw (decoded) error body, set only for
	// KindProvider.
	Body string
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func newErr(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// InvalidInput builds a KindInvalidInput error.
func InvalidInput(msg string) *Error { return newErr(KindInvalidInput, msg, nil) }

// InvalidInputf builds a KindInvalidInput error with formatting.
func InvalidInputf(format string, args ...any) *Error {
	return newErr(KindInvalidInput, fmt.Sprintf(format, args...), nil)
}

// Unsupported builds a KindUnsupported error.
func Unsupported(msg string) *Error { return newErr(KindUnsupported, msg, nil) }

// Unsupportedf builds a KindUnsupported error with formatting.
func Unsupportedf(format string, args ...any) *Error {
	return newErr(KindUnsupported, fmt.Sprintf(format, args...), nil)
}

// NotImplemented builds a KindNotImplemented error.
func NotImplemented(msg string) *Error { return newErr(KindNotImplemented, msg, nil) }

// Invariant builds a KindInvariant error wrapping the structural violation.
func Invariant(msg string, err error) *Error { return newErr(KindInvariant, msg, err) }

// Invariantf builds a KindInvariant error with formatting.
func Invariantf(format string, args ...any) *Error {
	return newErr(KindInvariant, fmt.Sprintf(format, args...), nil)
}

// Transport wraps a network/DNS/TLS/I/O error.
func Transport(err error) *Error { return newErr(KindTransport, "transport error", err) }

// Cancelled builds a KindCancelled error.
func Cancelled() *Error { return newErr(KindCancelled, "operation cancelled", nil) }

// Refusal builds a KindRefusal error carrying the provider's refusal text.
func Refusal(msg string) *Error { return newErr(KindRefusal, msg, nil) }

// MaxTurnsExceeded builds a KindMaxTurnsExceeded error.
func MaxTurnsExceeded(turns int) *Error {
	return newErr(KindMaxTurnsExceeded, fmt.Sprintf("exceeded max turns (%d)", turns), nil)
}

// Provider builds a KindProvider error carrying the original HTTP status and
// decoded body.
func Provider(status int, body string, err error) *Error {
	return &Error{Kind: KindProvider, Msg: "provider error", Err: err, Status: status, Body: body}
}
