// Package decode serves the stateless JWT inspector: paste any compact
// serialization, get its decoded sections back. No session required.
package decode

import (
	"net/http"
	"time"

	"github.com/auric-id/oauth2-playground/cmd/oauth2-playground/handlers/common"
	"github.com/auric-id/oauth2-playground/internal/jwtinspect"
)

// Handler processes stateless decode requests.
type Handler struct {
	now func() time.Time
}

// New creates a decode handler.
func New() *Handler {
	return &Handler{now: time.Now}
}

// WithClock substitutes the time source, for tests.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

type request struct {
	Token string `json:"token"`
}

// Response is the decoded token with its temporal claims interpreted.
type Response struct {
	*jwtinspect.Decoded
	Times         jwtinspect.TokenTimes `json:"times"`
	Expired       bool                  `json:"expired"`
	TimeRemaining string                `json:"time_remaining,omitempty"`
}

// ServeHTTP decodes the posted token. Malformed input is an invalid_token
// error; a well-formed but expired token decodes fine and is merely flagged.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Token == "" {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "the token field is required")
		return
	}

	decoded, err := jwtinspect.Decode(req.Token)
	if err != nil {
		common.HandleError(w, err)
		return
	}

	now := h.now()
	common.WriteJSON(w, http.StatusOK, Response{
		Decoded:       decoded,
		Times:         jwtinspect.Times(decoded.Claims),
		Expired:       jwtinspect.IsExpired(decoded.Claims, now),
		TimeRemaining: jwtinspect.TimeRemaining(decoded.Claims, now),
	})
}
