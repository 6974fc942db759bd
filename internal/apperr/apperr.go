// Package apperr defines the error kinds surfaced by the API. Every failure
// leaving a pipeline carries a stable machine-readable kind plus a
// human-readable message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable machine-readable failure category.
type Kind string

const (
	// KindValidation marks user-fixable bad input (shape or range).
	KindValidation Kind = "validation_error"
	// KindUpstreamUnavailable marks an unreachable or rate-limited provider.
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	// KindUpstreamParse marks a provider reply that could not be structured.
	KindUpstreamParse Kind = "upstream_parse_error"
	// KindNotFound marks a missing resource (run ID, etc.).
	KindNotFound Kind = "not_found"
	// KindInternal is the catch-all for unexpected failures.
	KindInternal Kind = "internal_error"
)

// Error is an error with a kind and an optional pipeline step name.
type Error struct {
	Kind Kind
	Step string
	Err  error
}

func (e *Error) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Step, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Validation creates a validation error with a formatted message.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error with a formatted message.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Err: fmt.Errorf(format, args...)}
}

// Upstream wraps a provider failure, preserving the step that failed so a
// multi-step pipeline can report where it aborted.
func Upstream(step string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Step: step, Err: err}
}

// Parse wraps an unstructurable provider reply.
func Parse(step string, err error) *Error {
	return &Error{Kind: KindUpstreamParse, Step: step, Err: err}
}

// KindOf extracts the Kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// StepOf extracts the failed pipeline step from an error chain, if any.
func StepOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Step
	}
	return ""
}

// HTTPStatus maps an error kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstreamUnavailable, KindUpstreamParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
