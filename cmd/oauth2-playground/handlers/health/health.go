// Package health serves the liveness and dependency health endpoint.
package health

import (
	"context"
	"net/http"

	"github.com/auric-id/oauth2-playground/cmd/oauth2-playground/handlers/common"
)

// Checker verifies the service's storage dependencies.
type Checker interface {
	CheckHealth(ctx context.Context) error
}

// Handler processes health check requests.
type Handler struct {
	checker Checker
	version string
}

// Response is the health check body.
type Response struct {
	Status  string         `json:"status"`
	Version string         `json:"version,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// New creates a health check handler.
func New(checker Checker) *Handler {
	return &Handler{checker: checker}
}

// WithVersion sets the version reported in responses.
func (h *Handler) WithVersion(version string) *Handler {
	h.version = version
	return h
}

// ServeHTTP reports overall health, degrading to 503 when a dependency fails.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		Status:  "healthy",
		Version: h.version,
		Details: make(map[string]any),
	}

	status := http.StatusOK
	if err := h.checker.CheckHealth(r.Context()); err != nil {
		resp.Status = "unhealthy"
		resp.Details["storage"] = map[string]any{
			"status":  "unhealthy",
			"message": err.Error(),
		}
		status = http.StatusServiceUnavailable
	} else {
		resp.Details["storage"] = map[string]any{"status": "healthy"}
	}

	common.WriteJSON(w, status, resp)
}
