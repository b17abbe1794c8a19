// Package token serves the token-step operations: exchange, refresh,
// introspection, revocation, userinfo and per-token inspection.
package token

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/auric-id/oauth2-playground/cmd/oauth2-playground/handlers/common"
	"github.com/auric-id/oauth2-playground/internal/playground"
	"github.com/auric-id/oauth2-playground/internal/provider"
)

// Flow is the slice of the playground flow this package needs.
type Flow interface {
	ExchangeCode(ctx context.Context, id, code, state string) (*playground.Session, error)
	Refresh(ctx context.Context, id string) (*playground.Session, error)
	Introspect(ctx context.Context, id string, kind playground.TokenKind) (*provider.Introspection, error)
	Revoke(ctx context.Context, id string, kind playground.TokenKind) (*playground.Session, error)
	UserInfo(ctx context.Context, id string) (*provider.UserInfo, error)
	Inspect(ctx context.Context, id string, kind playground.TokenKind) (*playground.TokenView, error)
}

// Handler processes token-step requests.
type Handler struct {
	flow Flow
}

// New creates a token handler.
func New(flow Flow) *Handler {
	return &Handler{flow: flow}
}

type exchangeRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// Exchange redeems the authorization code captured at the callback.
func (h *Handler) Exchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	s, err := h.flow.ExchangeCode(r.Context(), chi.URLParam(r, "id"), req.Code, req.State)
	if err != nil {
		common.HandleError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, s.Redacted())
}

// Refresh rotates the session's token set.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	s, err := h.flow.Refresh(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.HandleError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, s.Redacted())
}

type kindRequest struct {
	Token playground.TokenKind `json:"token,omitempty"`
}

// kind extracts the target token kind from the body, defaulting to the
// access token.
func kind(r *http.Request) (playground.TokenKind, error) {
	var req kindRequest
	if err := common.DecodeBody(r, &req); err != nil {
		return "", err
	}
	if req.Token == "" {
		return playground.TokenAccess, nil
	}
	return req.Token, nil
}

// Introspect asks the provider for a token's authoritative state.
func (h *Handler) Introspect(w http.ResponseWriter, r *http.Request) {
	k, err := kind(r)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	info, err := h.flow.Introspect(r.Context(), chi.URLParam(r, "id"), k)
	if err != nil {
		common.HandleError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, info)
}

// Revoke invalidates one of the session's tokens at the provider.
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	k, err := kind(r)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	s, err := h.flow.Revoke(r.Context(), chi.URLParam(r, "id"), k)
	if err != nil {
		common.HandleError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, s.Redacted())
}

// UserInfo fetches the claims behind the session's access token. A rejected
// token is a 401 with the provider's error passed through.
func (h *Handler) UserInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.flow.UserInfo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.HandleError(w, err)
		return
	}
	if info.Rejected() {
		common.WriteJSON(w, http.StatusUnauthorized, info)
		return
	}
	common.WriteJSON(w, http.StatusOK, info)
}

// Inspect returns the decoded view of one token from the session's set.
func (h *Handler) Inspect(w http.ResponseWriter, r *http.Request) {
	k := playground.TokenKind(chi.URLParam(r, "kind"))
	switch k {
	case playground.TokenAccess, playground.TokenRefresh, playground.TokenID:
	default:
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown token kind")
		return
	}

	view, err := h.flow.Inspect(r.Context(), chi.URLParam(r, "id"), k)
	if err != nil {
		common.HandleError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, view)
}
