package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	internalerrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/mcp-youtube-transcript/pkg/oauth"
)

// Realm is the protection space named in WWW-Authenticate challenges.
const Realm = "youtube-transcript"

// SuccessEnvelope wraps a successful tool result.
type SuccessEnvelope struct {
	Success         bool   `json:"success"`
	Result          any    `json:"result"`
	CorrelationID   string `json:"correlation_id"`
	ExecutionTimeMS int64  `json:"execution_time_ms"`
}

// ErrorBody describes a failure to the client.
type ErrorBody struct {
	ErrorCode     string   `json:"error_code"`
	Message       string   `json:"message"`
	CorrelationID string   `json:"correlation_id"`
	Reason        string   `json:"reason,omitempty"`
	Violations    []string `json:"violations,omitempty"`
}

// ErrorEnvelope wraps a failure.
type ErrorEnvelope struct {
	Success         bool      `json:"success"`
	Error           ErrorBody `json:"error"`
	ExecutionTimeMS int64     `json:"execution_time_ms"`
}

// responder implements transportcore.Responder.
type responder struct {
	metadataURL string
	logger      *slog.Logger
}

// NewResponder creates a responder. metadataURL is advertised in
// WWW-Authenticate challenges per RFC 9728.
func NewResponder(metadataURL string, logger *slog.Logger) transportcore.Responder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &responder{metadataURL: metadataURL, logger: logger}
}

// JSON writes v with the given status.
func (e *responder) JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(pkgoauth.HeaderContentType, pkgoauth.ContentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		e.logger.Error("failed to encode response", "error", err)
	}
}

// Success writes a success envelope.
func (e *responder) Success(w http.ResponseWriter, r *http.Request, result any) {
	ctx := r.Context()
	e.JSON(w, http.StatusOK, SuccessEnvelope{
		Success:         true,
		Result:          result,
		CorrelationID:   transportcore.CorrelationIDFromContext(ctx),
		ExecutionTimeMS: transportcore.Elapsed(ctx).Milliseconds(),
	})
}

// Error writes an error envelope for err.
func (e *responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := internalerrors.HTTPStatus(err)
	correlationID := transportcore.CorrelationIDFromContext(ctx)

	if status >= http.StatusInternalServerError {
		e.logger.Error("request failed",
			"correlation_id", correlationID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		w.Header().Set(pkgoauth.HeaderWWWAuthenticate, e.challenge(err).WWWAuthenticate())
	}

	e.JSON(w, status, ErrorEnvelope{
		Success: false,
		Error: ErrorBody{
			ErrorCode:     internalerrors.Code(err),
			Message:       internalerrors.Message(err),
			CorrelationID: correlationID,
			Reason:        publicReason(err),
			Violations:    internalerrors.Violations(err),
		},
		ExecutionTimeMS: transportcore.Elapsed(ctx).Milliseconds(),
	})
}

// challenge builds the RFC 6750 challenge for a 401 or 403. A request that
// carried no credentials gets a bare challenge with no error code.
func (e *responder) challenge(err error) *internalerrors.OAuthError {
	var challenge *internalerrors.OAuthError
	switch internalerrors.Code(err) {
	case internalerrors.CodeMissingToken:
		challenge = &internalerrors.OAuthError{}
	case internalerrors.CodeInsufficientScope:
		challenge = internalerrors.NewOAuthError(internalerrors.OAuthErrorInsufficientScope, internalerrors.Message(err)).
			WithScope(strings.Join(oauth.RequiredScopes(err), " "))
	default:
		challenge = internalerrors.NewOAuthError(internalerrors.OAuthErrorInvalidToken, internalerrors.Message(err))
	}
	return challenge.WithRealm(Realm).WithResourceMetadata(e.metadataURL)
}

// publicReason returns the failure sub-reason for authentication errors.
// Reasons on other errors are internal.
func publicReason(err error) string {
	switch internalerrors.HTTPStatus(err) {
	case http.StatusUnauthorized, http.StatusServiceUnavailable:
		return oauth.FailureReason(err)
	}
	return ""
}
