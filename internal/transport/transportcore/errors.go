package transportcore

import (
	"errors"
)

// Sentinel errors for transport operations.
// For creating domain errors with context, wrap these with DomainError from internal/errors.
var (
	// ErrInvalidBody indicates a request body that is not the expected JSON.
	ErrInvalidBody = errors.New("invalid request body")

	// ErrMethodNotAllowed indicates the HTTP method is not allowed for the endpoint.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrPanic indicates a handler panicked.
	ErrPanic = errors.New("handler panicked")

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = errors.New("server closed")
)
