package authorize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/auric-id/oauth2-playground/internal/playground"
	"github.com/auric-id/oauth2-playground/internal/validation"
)

// mockFlow implements Flow with pluggable behavior per call.
type mockFlow struct {
	build   func(ctx context.Context, id string, req playground.BuildRequest) (*playground.Session, error)
	resolve func(ctx context.Context, state string) (*playground.Session, error)
}

func (m *mockFlow) BuildAuthorizationURL(ctx context.Context, id string, req playground.BuildRequest) (*playground.Session, error) {
	return m.build(ctx, id, req)
}

func (m *mockFlow) ResolveState(ctx context.Context, state string) (*playground.Session, error) {
	return m.resolve(ctx, state)
}

func newRouter(flow Flow) *chi.Mux {
	h := New(flow)
	r := chi.NewRouter()
	r.Post("/playground/sessions/{id}/authorize-url", h.BuildURL)
	r.Get("/playground/callback", h.Callback)
	return r
}

func TestBuildURL(t *testing.T) {
	flow := &mockFlow{
		build: func(ctx context.Context, id string, req playground.BuildRequest) (*playground.Session, error) {
			if req.RedirectURI != "https://app.example.com/callback" {
				t.Errorf("redirect_uri = %q", req.RedirectURI)
			}
			return &playground.Session{
				ID:               id,
				State:            playground.StateAuthorize,
				AuthorizationURL: "https://auth.example.com/acme/oauth2/authorize?x=y",
			}, nil
		},
	}

	body := `{"redirect_uri":"https://app.example.com/callback"}`
	req := httptest.NewRequest(http.MethodPost, "/playground/sessions/s1/authorize-url", strings.NewReader(body))
	w := httptest.NewRecorder()
	newRouter(flow).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var s playground.Session
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if s.AuthorizationURL == "" {
		t.Error("authorization_url missing from response")
	}
}

func TestBuildURLValidationError(t *testing.T) {
	flow := &mockFlow{
		build: func(ctx context.Context, id string, req playground.BuildRequest) (*playground.Session, error) {
			return nil, &validation.Error{Field: "redirect_uri", Message: "must not be empty"}
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/playground/sessions/s1/authorize-url", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	newRouter(flow).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCallbackEcho(t *testing.T) {
	flow := &mockFlow{
		resolve: func(ctx context.Context, state string) (*playground.Session, error) {
			return &playground.Session{ID: "s1"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/playground/callback?code=code-1&state=state-1", nil)
	w := httptest.NewRecorder()
	newRouter(flow).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp callbackResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if resp.Code != "code-1" || resp.State != "state-1" || resp.SessionID != "s1" {
		t.Errorf("callback = %+v", resp)
	}
}

func TestCallbackProviderError(t *testing.T) {
	flow := &mockFlow{
		resolve: func(ctx context.Context, state string) (*playground.Session, error) {
			return &playground.Session{ID: "s1"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet,
		"/playground/callback?error=access_denied&error_description=user+said+no&state=state-1", nil)
	w := httptest.NewRecorder()
	newRouter(flow).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp callbackResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling body: %v", err)
	}
	if resp.Error != "access_denied" || resp.ErrorDescription != "user said no" {
		t.Errorf("callback = %+v", resp)
	}
}

func TestCallbackEmpty(t *testing.T) {
	flow := &mockFlow{}

	req := httptest.NewRequest(http.MethodGet, "/playground/callback", nil)
	w := httptest.NewRecorder()
	newRouter(flow).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
