package handlers

import (
	"net/http"

	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
)

// methodNotAllowed answers a request whose method the endpoint does not
// serve, advertising the one it does.
func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	http.Error(w, transportcore.ErrMethodNotAllowed.Error(), http.StatusMethodNotAllowed)
}
