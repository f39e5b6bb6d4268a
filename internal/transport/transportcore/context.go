package transportcore

import (
	"context"
	"time"

	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// AuthContextKey is the context key for the authenticated identity.
	AuthContextKey contextKey = "auth_context"

	// CorrelationIDContextKey is the context key for the request correlation id.
	CorrelationIDContextKey contextKey = "correlation_id"

	// StartTimeContextKey is the context key for the time the request arrived.
	StartTimeContextKey contextKey = "start_time"
)

// AuthFromContext extracts the authenticated identity from the request context.
// Returns nil and false if authentication did not run or failed.
func AuthFromContext(ctx context.Context) (*oauth.AuthContext, bool) {
	if ctx == nil {
		return nil, false
	}
	auth, ok := ctx.Value(AuthContextKey).(*oauth.AuthContext)
	return auth, ok && auth != nil
}

// ContextWithAuth adds the authenticated identity to the request context.
func ContextWithAuth(ctx context.Context, auth *oauth.AuthContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, AuthContextKey, auth)
}

// CorrelationIDFromContext returns the request correlation id, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(CorrelationIDContextKey).(string)
	return id
}

// ContextWithCorrelationID adds a correlation id to the request context.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, CorrelationIDContextKey, id)
}

// StartTimeFromContext returns when the request arrived. Requests that did
// not pass the correlation middleware report the zero time.
func StartTimeFromContext(ctx context.Context) time.Time {
	if ctx == nil {
		return time.Time{}
	}
	t, _ := ctx.Value(StartTimeContextKey).(time.Time)
	return t
}

// ContextWithStartTime records when the request arrived.
func ContextWithStartTime(ctx context.Context, t time.Time) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, StartTimeContextKey, t)
}

// Elapsed returns the time since the request arrived, or zero when unknown.
func Elapsed(ctx context.Context) time.Duration {
	start := StartTimeFromContext(ctx)
	if start.IsZero() {
		return 0
	}
	return time.Since(start)
}
