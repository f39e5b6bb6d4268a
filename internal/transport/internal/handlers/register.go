package handlers

import (
	"net/http"

	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
)

// RegistrationAcknowledged is the status returned by POST /register.
const RegistrationAcknowledged = "registration_acknowledged"

// NewRegisterHandler acknowledges dynamic client registration requests.
// Registration itself happens at the authorization server; nothing is stored.
func NewRegisterHandler(responder transportcore.Responder) http.Handler {
	if responder == nil {
		panic("responder cannot be nil")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		responder.JSON(w, http.StatusOK, map[string]string{"status": RegistrationAcknowledged})
	})
}
