package transport

import (
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
)

var (
	// ErrInvalidBody indicates a request body that is not the expected JSON.
	ErrInvalidBody = transportcore.ErrInvalidBody

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = transportcore.ErrServerClosed
)
