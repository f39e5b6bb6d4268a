package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"

	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
)

// corsMaxAge is how long, in seconds, browsers may cache a preflight answer.
const corsMaxAge = 600

// NewCORSMiddleware sets CORS headers for allowed origins and answers
// preflight requests itself, so they never reach authentication.
// An origin of "*" allows any origin; an empty list grants none.
func NewCORSMiddleware(allowedOrigins []string) transportcore.Middleware {
	origins := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			origins = append(origins, origin)
		}
	}

	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Correlation-ID", "Mcp-Session-Id"},
		ExposedHeaders: []string{"WWW-Authenticate", "X-Correlation-ID"},
		MaxAge:         corsMaxAge,
	}
	if len(origins) == 0 {
		// cors treats an empty origin list as "*"; deny every origin instead
		// while still answering preflights.
		opts.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(opts).Handler
}
