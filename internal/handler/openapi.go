package handler

import (
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/filmvault/filmvault/internal/openapi"
)

// OpenAPIHandler serves the OpenAPI document of the catalogue API. The
// document is static, so it is built once on first request.
type OpenAPIHandler struct {
	baseURL string
	version string

	once sync.Once
	doc  *openapi3.T
}

// NewOpenAPIHandler creates a new OpenAPIHandler.
func NewOpenAPIHandler(baseURL, version string) *OpenAPIHandler {
	return &OpenAPIHandler{
		baseURL: baseURL,
		version: version,
	}
}

// ServeSpec returns the OpenAPI document.
// GET /openapi.json
func (h *OpenAPIHandler) ServeSpec(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		h.doc = openapi.Generate(h.baseURL, h.version)
	})
	writeJSON(w, http.StatusOK, h.doc)
}
