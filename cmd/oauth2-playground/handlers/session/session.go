// Package session serves the playground session lifecycle: creation with app
// selection, retrieval, reset, backward navigation and deletion.
package session

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/auric-id/oauth2-playground/cmd/oauth2-playground/handlers/common"
	"github.com/auric-id/oauth2-playground/internal/authorize"
	"github.com/auric-id/oauth2-playground/internal/playground"
)

// Flow is the slice of the playground flow this package needs.
type Flow interface {
	StartSession(ctx context.Context) (*playground.Session, error)
	SelectClient(ctx context.Context, id string, cfg playground.ClientConfig) (*playground.Session, error)
	GetSession(ctx context.Context, id string) (*playground.Session, error)
	Reset(ctx context.Context, id string) (*playground.Session, error)
	GoBack(ctx context.Context, id string, to playground.State) (*playground.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// Handler processes session lifecycle requests.
type Handler struct {
	flow Flow
}

// New creates a session handler.
func New(flow Flow) *Handler {
	return &Handler{flow: flow}
}

type createRequest struct {
	Tenant       string               `json:"tenant"`
	ClientID     string               `json:"client_id"`
	Type         authorize.ClientType `json:"type"`
	ClientSecret string               `json:"client_secret,omitempty"`
}

// Create starts a session. When the body carries a client configuration the
// app selection step completes in the same request.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	s, err := h.flow.StartSession(r.Context())
	if err != nil {
		common.HandleError(w, err)
		return
	}

	if req.Tenant != "" || req.ClientID != "" {
		s, err = h.flow.SelectClient(r.Context(), s.ID, playground.ClientConfig{
			Tenant:   req.Tenant,
			ClientID: req.ClientID,
			Type:     req.Type,
			Secret:   req.ClientSecret,
		})
		if err != nil {
			// The half-made session would only confuse; the store's
			// TTL would collect it anyway.
			_ = h.flow.DeleteSession(r.Context(), s.ID)
			common.HandleError(w, err)
			return
		}
	}

	common.WriteJSON(w, http.StatusCreated, s.Redacted())
}

// SelectClient completes the app selection step for an existing session.
func (h *Handler) SelectClient(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	s, err := h.flow.SelectClient(r.Context(), chi.URLParam(r, "id"), playground.ClientConfig{
		Tenant:   req.Tenant,
		ClientID: req.ClientID,
		Type:     req.Type,
		Secret:   req.ClientSecret,
	})
	if err != nil {
		common.HandleError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, s.Redacted())
}

// Get returns the session's current state.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.flow.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.HandleError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, s.Redacted())
}

// Reset discards everything and returns the session to app selection.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	s, err := h.flow.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.HandleError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, s.Redacted())
}

type backRequest struct {
	To playground.State `json:"to"`
}

// Back jumps to an earlier wizard step without discarding later results.
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	var req backRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if !req.To.Valid() {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown wizard step")
		return
	}

	s, err := h.flow.GoBack(r.Context(), chi.URLParam(r, "id"), req.To)
	if err != nil {
		common.HandleError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, s.Redacted())
}

// Delete removes a session.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
