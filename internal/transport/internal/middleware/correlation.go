package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/mcp-youtube-transcript/pkg/oauth"
)

// maxCorrelationIDLength bounds client-supplied correlation ids.
const maxCorrelationIDLength = 128

// NewCorrelationMiddleware assigns every request a correlation id and a
// start time. A reasonable X-Correlation-ID from the client is kept;
// otherwise a UUID is generated. The id is echoed in the response header.
func NewCorrelationMiddleware() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(pkgoauth.HeaderCorrelationID)
			if !validCorrelationID(id) {
				id = uuid.NewString()
			}

			w.Header().Set(pkgoauth.HeaderCorrelationID, id)

			ctx := transportcore.ContextWithCorrelationID(r.Context(), id)
			ctx = transportcore.ContextWithStartTime(ctx, time.Now())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validCorrelationID(id string) bool {
	if id == "" || len(id) > maxCorrelationIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
