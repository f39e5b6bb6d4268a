package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	internalerrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
)

// NewRecoveryMiddleware creates middleware that recovers from panics.
// It logs the panic with a stack trace and answers with an internal_error
// envelope that reveals nothing about the cause.
// If logger is nil, it uses the default slog logger.
func NewRecoveryMiddleware(responder transportcore.Responder, logger *slog.Logger) transportcore.Middleware {
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					if recovered == http.ErrAbortHandler {
						panic(recovered)
					}

					logger.Error("panic recovered",
						"correlation_id", transportcore.CorrelationIDFromContext(r.Context()),
						"panic", recovered,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					err := internalerrors.New("transport", "ServeHTTP", internalerrors.ErrInternal,
						fmt.Errorf("%w: %v", transportcore.ErrPanic, recovered))
					responder.Error(w, r, err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
