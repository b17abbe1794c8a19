// Package authorize serves the authorization-URL step and the callback
// landing that captures the provider's redirect for the human in the loop.
package authorize

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/auric-id/oauth2-playground/cmd/oauth2-playground/handlers/common"
	"github.com/auric-id/oauth2-playground/internal/playground"
)

// Flow is the slice of the playground flow this package needs.
type Flow interface {
	BuildAuthorizationURL(ctx context.Context, id string, req playground.BuildRequest) (*playground.Session, error)
	ResolveState(ctx context.Context, state string) (*playground.Session, error)
}

// Handler processes authorization request building and callbacks.
type Handler struct {
	flow Flow
}

// New creates an authorize handler.
func New(flow Flow) *Handler {
	return &Handler{flow: flow}
}

// BuildURL assembles the authorization URL for a session.
func (h *Handler) BuildURL(w http.ResponseWriter, r *http.Request) {
	var req playground.BuildRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	s, err := h.flow.BuildAuthorizationURL(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		common.HandleError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, s.Redacted())
}

// callbackResponse echoes what the provider sent back, resolved to the
// session the state belongs to. The playground never auto-exchanges here;
// the user carries the code to the exchange step themselves.
type callbackResponse struct {
	SessionID        string `json:"session_id,omitempty"`
	Code             string `json:"code,omitempty"`
	State            string `json:"state,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Callback lands the provider's redirect and echoes its query as JSON.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp := callbackResponse{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}

	if resp.State != "" {
		if s, err := h.flow.ResolveState(r.Context(), resp.State); err == nil {
			resp.SessionID = s.ID
		}
	}

	if resp.State == "" && resp.Error == "" && resp.Code == "" {
		common.WriteError(w, http.StatusBadRequest, "invalid_request",
			"callback carries neither code, state nor error")
		return
	}
	common.WriteJSON(w, http.StatusOK, resp)
}
