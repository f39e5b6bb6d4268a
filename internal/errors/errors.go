// Package errors provides domain error handling for the transcript server:
// a wrapped DomainError carrying a sentinel kind, plus the mapping from those
// kinds to public error codes and HTTP statuses.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Every DomainError carries exactly one of them.
var (
	// ErrNotFound indicates a requested tool, video or transcript does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates authentication is required or failed.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated caller lacks a required scope.
	ErrForbidden = errors.New("forbidden")

	// ErrBadRequest indicates invalid input or a malformed request.
	ErrBadRequest = errors.New("bad request")

	// ErrUnavailable indicates a dependency (authorization server, transcript source) is unreachable.
	ErrUnavailable = errors.New("unavailable")

	// ErrInternal indicates an unanticipated failure.
	ErrInternal = errors.New("internal error")
)

// Context keys understood by Code, Reason and Violations.
const (
	ContextErrorCode  = "error_code"
	ContextReason     = "reason"
	ContextViolations = "violations"
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	// Domain identifies the subsystem where the error occurred (e.g., "oauth", "youtube").
	Domain string

	// Op identifies the operation that failed (e.g., "ValidateToken", "Invoke").
	Op string

	// Kind is the sentinel error that categorizes this error.
	Kind error

	// Err is the underlying wrapped error, if any.
	Err error

	// Context provides additional key-value pairs for callers and logs.
	Context map[string]any
}

// New creates a new DomainError. err may be nil.
func New(domain, op string, kind, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Err:     err,
		Context: make(map[string]any),
	}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %v: %v", e.Domain, e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s.%s: %v", e.Domain, e.Op, e.Kind)
}

// Unwrap returns the underlying wrapped error.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target error.
// It checks both the Kind field and the wrapped error chain.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// WithContext adds a key-value pair to the error's context and returns the error.
func (e *DomainError) WithContext(key string, value any) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCode sets the public error code.
func (e *DomainError) WithCode(code string) *DomainError {
	return e.WithContext(ContextErrorCode, code)
}

// WithReason sets the machine-readable sub-reason.
func (e *DomainError) WithReason(reason string) *DomainError {
	return e.WithContext(ContextReason, reason)
}

// contextString returns a string context value, or "".
func (e *DomainError) contextString(key string) string {
	if e == nil || e.Context == nil {
		return ""
	}
	s, _ := e.Context[key].(string)
	return s
}

// As finds the first DomainError in err's chain.
func As(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
