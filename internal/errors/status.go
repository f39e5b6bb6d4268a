package errors

import (
	"errors"
	"net/http"
)

// Public error codes returned in error envelopes.
const (
	CodeMissingToken          = "missing_token"
	CodeInvalidToken          = "invalid_token"
	CodeInsufficientScope     = "insufficient_scope"
	CodeInvalidRequest        = "invalid_request"
	CodeInvalidInput          = "invalid_input"
	CodeInvalidURL            = "invalid_url"
	CodeToolNotFound          = "tool_not_found"
	CodeVideoNotFound         = "video_not_found"
	CodeTranscriptUnavailable = "transcript_unavailable"
	CodeServiceUnavailable    = "service_unavailable"
	CodeInternalError         = "internal_error"
)

// ContextMessage holds a client-safe message overriding the default for the code.
const ContextMessage = "message"

var defaultMessages = map[string]string{
	CodeMissingToken:          "Authorization header with a Bearer token is required",
	CodeInvalidToken:          "The access token is invalid",
	CodeInsufficientScope:     "The access token lacks a required scope",
	CodeInvalidRequest:        "The request is malformed",
	CodeInvalidInput:          "The parameters do not match the tool input schema",
	CodeInvalidURL:            "The URL is not a recognised YouTube video URL",
	CodeToolNotFound:          "The requested tool is not registered",
	CodeVideoNotFound:         "The video does not exist or is not available",
	CodeTranscriptUnavailable: "No transcript is available for this video",
	CodeServiceUnavailable:    "A dependency is temporarily unavailable",
	CodeInternalError:         "An internal server error occurred",
}

// WithMessage sets a client-safe message.
func (e *DomainError) WithMessage(msg string) *DomainError {
	return e.WithContext(ContextMessage, msg)
}

// HTTPStatus maps an error to its HTTP status by sentinel kind.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the public error code of err. Errors without an explicit code
// get the generic code for their kind.
func Code(err error) string {
	if de, ok := As(err); ok {
		if code := de.contextString(ContextErrorCode); code != "" {
			return code
		}
	}
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return CodeInvalidRequest
	case http.StatusUnauthorized:
		return CodeInvalidToken
	case http.StatusForbidden:
		return CodeInsufficientScope
	case http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	default:
		return CodeInternalError
	}
}

// Reason returns the machine-readable sub-reason of err, or "".
func Reason(err error) string {
	de, _ := As(err)
	return de.contextString(ContextReason)
}

// Message returns a message that is safe to show to clients. Internal errors
// never expose their underlying cause.
func Message(err error) string {
	code := Code(err)
	if code != CodeInternalError {
		if de, ok := As(err); ok {
			if msg := de.contextString(ContextMessage); msg != "" {
				return msg
			}
		}
	}
	if msg, ok := defaultMessages[code]; ok {
		return msg
	}
	return http.StatusText(HTTPStatus(err))
}

// Violations returns the schema violations attached to err, if any.
func Violations(err error) []string {
	de, ok := As(err)
	if !ok || de.Context == nil {
		return nil
	}
	v, _ := de.Context[ContextViolations].([]string)
	return v
}
