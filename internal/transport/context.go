package transport

import (
	"context"

	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
)

// AuthFromContext returns the identity the authentication middleware
// attached to the request.
func AuthFromContext(ctx context.Context) (*oauth.AuthContext, bool) {
	return transportcore.AuthFromContext(ctx)
}

// CorrelationIDFromContext returns the request correlation id, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return transportcore.CorrelationIDFromContext(ctx)
}
