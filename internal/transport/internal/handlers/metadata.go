package handlers

import (
	"net/http"

	internalerrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
)

// metadataHandler serves OAuth 2.0 Protected Resource Metadata per RFC 9728.
type metadataHandler struct {
	service   oauth.MetadataService
	responder transportcore.Responder
}

// NewMetadataHandler creates a handler for /.well-known/oauth-protected-resource.
func NewMetadataHandler(service oauth.MetadataService, responder transportcore.Responder) http.Handler {
	if service == nil {
		panic("service cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	return &metadataHandler{service: service, responder: responder}
}

func (h *metadataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	metadata, err := h.service.GetMetadata(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, metadata)
}

// discoveryHandler proxies the authorization server's discovery document.
type discoveryHandler struct {
	service   oauth.DiscoveryService
	responder transportcore.Responder
}

// NewDiscoveryHandler creates a handler for
// /.well-known/oauth-authorization-server. A nil service means no
// authorization server is configured and the document is reported missing.
func NewDiscoveryHandler(service oauth.DiscoveryService, responder transportcore.Responder) http.Handler {
	if responder == nil {
		panic("responder cannot be nil")
	}
	return &discoveryHandler{service: service, responder: responder}
}

func (h *discoveryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	if h.service == nil {
		h.responder.JSON(w, http.StatusNotFound, map[string]string{
			"error":   "not_found",
			"message": "no authorization server is configured",
		})
		return
	}

	doc, err := h.service.Metadata(r.Context())
	if err != nil {
		if internalerrors.HTTPStatus(err) == http.StatusInternalServerError {
			err = internalerrors.New("transport", "discovery", internalerrors.ErrUnavailable, err).
				WithCode(internalerrors.CodeServiceUnavailable)
		}
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, doc)
}
