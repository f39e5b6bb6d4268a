// Package transport serves the transcript tools over two HTTP surfaces.
//
// The protocol surface (MCP_PORT) speaks stateless JSON-RPC 2.0 on POST /mcp.
// The REST surface (REST_API_PORT) exposes GET /tools/list and
// POST /tools/invoke with success and error envelopes.
//
// # Middleware Chain
//
// Every request on either surface passes, outermost first:
//
//  1. Correlation - assigns X-Correlation-ID and the start time
//  2. Recovery - turns panics into internal_error envelopes
//  3. Logging - one line per request
//  4. Metrics - request counts and latency per surface
//  5. CORS - answers preflight requests before authentication
//  6. Authentication - bearer token validation outside the bypass rules
//
// Tool invocation routes additionally require OAUTH_REQUIRED_SCOPES.
//
// # Bypass Rules
//
// Evaluated in order before any token is inspected:
//
//	/health        exact
//	/.well-known/  prefix
//	/register      exact
//	/metrics       exact
//
// # Error Responses
//
// Failures use the error envelope. 401 and 403 carry an RFC 6750 challenge
// that points at the RFC 9728 metadata document:
//
//	HTTP/1.1 401 Unauthorized
//	WWW-Authenticate: Bearer realm="youtube-transcript", error="invalid_token", error_description="The access token has expired", resource_metadata="https://mcp.example.com/.well-known/oauth-protected-resource"
//
//	{"success":false,"error":{"error_code":"invalid_token","message":"The access token has expired","correlation_id":"...","reason":"expired"},"execution_time_ms":3}
//
// An unreachable authorization server yields 503 service_unavailable, never 401.
package transport
