// Package common holds the JSON response and error helpers shared by the
// playground's handler packages.
package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/auric-id/oauth2-playground/internal/correlation"
	"github.com/auric-id/oauth2-playground/internal/jwtinspect"
	"github.com/auric-id/oauth2-playground/internal/playground"
	"github.com/auric-id/oauth2-playground/internal/provider"
	"github.com/auric-id/oauth2-playground/internal/validation"
)

// ErrorResponse is the OAuth-style error body every endpoint uses.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// SetJSONHeaders sets the response headers for JSON bodies. Token material
// must never be cached.
func SetJSONHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	SetJSONHeaders(w)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing left to salvage.
		return
	}
}

// WriteError sends an OAuth-style error response.
func WriteError(w http.ResponseWriter, status int, code, description string) {
	WriteJSON(w, status, ErrorResponse{
		Error:            code,
		ErrorDescription: strings.TrimSpace(description),
	})
}

// HandleError maps domain errors onto HTTP status codes and OAuth-style
// bodies. Provider failures pass the server's own error code through.
func HandleError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		WriteError(w, http.StatusBadRequest, "invalid_request", verr.Error())
		return
	}

	var ferr *provider.FlowError
	if errors.As(err, &ferr) {
		status := http.StatusBadGateway
		if ferr.Status >= 400 && ferr.Status < 500 {
			status = ferr.Status
		}
		WriteError(w, status, ferr.Code, ferr.Description)
		return
	}

	switch {
	case errors.Is(err, playground.ErrSessionNotFound):
		WriteError(w, http.StatusNotFound, "session_not_found", "unknown or expired session")
	case errors.Is(err, correlation.ErrUnknownState):
		WriteError(w, http.StatusNotFound, "unknown_state", "state does not resolve to a session")
	case errors.Is(err, playground.ErrStaleSession):
		WriteError(w, http.StatusConflict, "stale_request", "session changed while the request was in flight; result dropped")
	case errors.Is(err, playground.ErrInvalidTransition):
		WriteError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, playground.ErrStateMismatch):
		WriteError(w, http.StatusBadRequest, "state_mismatch", err.Error())
	case errors.Is(err, playground.ErrClientSecretRequired):
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, playground.ErrNoTokens), errors.Is(err, playground.ErrNoRefreshToken):
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, jwtinspect.ErrInvalidToken):
		WriteError(w, http.StatusBadRequest, "invalid_token", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "server_error", "an unexpected error occurred")
	}
}

// DecodeBody parses a JSON request body into v. An empty body is allowed and
// leaves v untouched.
func DecodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
