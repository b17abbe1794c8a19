package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/auric-id/oauth2-playground/internal/pkce"
)

// fakeIdP is an in-process identity provider implementing the token,
// introspection, revocation and userinfo endpoints, plus a simulated user
// authorization step that stands in for the browser redirect.
type fakeIdP struct {
	t      *testing.T
	server *httptest.Server
	key    []byte

	mu       sync.Mutex
	codes    map[string]pendingCode // code -> what was authorized
	refresh  map[string]string      // refresh token -> subject
	revoked  map[string]bool
	subjects map[string]string // access token -> subject
}

type pendingCode struct {
	clientID    string
	redirectURI string
	challenge   string
	scope       string
}

func newFakeIdP(t *testing.T) *fakeIdP {
	idp := &fakeIdP{
		t:        t,
		key:      []byte("integration-test-key"),
		codes:    make(map[string]pendingCode),
		refresh:  make(map[string]string),
		revoked:  make(map[string]bool),
		subjects: make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /{tenant}/oauth2/token", idp.handleToken)
	mux.HandleFunc("POST /oauth2/introspect", idp.handleIntrospect)
	mux.HandleFunc("POST /oauth2/revoke", idp.handleRevoke)
	mux.HandleFunc("GET /{tenant}/userinfo", idp.handleUserInfo)

	idp.server = httptest.NewServer(mux)
	t.Cleanup(idp.server.Close)
	return idp
}

func (idp *fakeIdP) URL() string { return idp.server.URL }

// authorize simulates the user approving the consent screen: it parses the
// authorization URL the playground built and returns the code and state the
// provider would send to the redirect URI.
func (idp *fakeIdP) authorize(authorizationURL string) (code, state string) {
	u, err := url.Parse(authorizationURL)
	if err != nil {
		idp.t.Fatalf("parsing authorization URL: %v", err)
	}
	q := u.Query()

	if q.Get("response_type") != "code" {
		idp.t.Fatalf("unexpected response_type %q", q.Get("response_type"))
	}
	if q.Get("code_challenge") != "" && q.Get("code_challenge_method") != "S256" {
		idp.t.Fatalf("challenge without S256 method")
	}

	code = uuid.NewString()
	idp.mu.Lock()
	idp.codes[code] = pendingCode{
		clientID:    q.Get("client_id"),
		redirectURI: q.Get("redirect_uri"),
		challenge:   q.Get("code_challenge"),
		scope:       q.Get("scope"),
	}
	idp.mu.Unlock()
	return code, q.Get("state")
}

func (idp *fakeIdP) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		oauthError(w, http.StatusBadRequest, "invalid_request", "unparseable form")
		return
	}

	switch r.Form.Get("grant_type") {
	case "authorization_code":
		idp.handleCodeGrant(w, r)
	case "refresh_token":
		idp.handleRefreshGrant(w, r)
	default:
		oauthError(w, http.StatusBadRequest, "unsupported_grant_type", "")
	}
}

func (idp *fakeIdP) handleCodeGrant(w http.ResponseWriter, r *http.Request) {
	idp.mu.Lock()
	defer idp.mu.Unlock()

	pending, ok := idp.codes[r.Form.Get("code")]
	if !ok {
		oauthError(w, http.StatusBadRequest, "invalid_grant", "unknown or redeemed code")
		return
	}
	delete(idp.codes, r.Form.Get("code"))

	if r.Form.Get("client_id") != pending.clientID {
		oauthError(w, http.StatusBadRequest, "invalid_client", "client_id mismatch")
		return
	}
	if r.Form.Get("redirect_uri") != pending.redirectURI {
		oauthError(w, http.StatusBadRequest, "invalid_grant", "redirect_uri mismatch")
		return
	}
	if pending.challenge != "" {
		verifier := r.Form.Get("code_verifier")
		if verifier == "" || !pkce.VerifyChallenge(verifier, pending.challenge) {
			oauthError(w, http.StatusBadRequest, "invalid_grant", "pkce verification failed")
			return
		}
	}

	idp.issueLocked(w, r.PathValue("tenant"), "integration-user", pending.scope)
}

func (idp *fakeIdP) handleRefreshGrant(w http.ResponseWriter, r *http.Request) {
	idp.mu.Lock()
	defer idp.mu.Unlock()

	rt := r.Form.Get("refresh_token")
	sub, ok := idp.refresh[rt]
	if !ok || idp.revoked[rt] {
		oauthError(w, http.StatusBadRequest, "invalid_grant", "unknown or revoked refresh token")
		return
	}
	delete(idp.refresh, rt)

	idp.issueLocked(w, r.PathValue("tenant"), sub, "")
}

// issueLocked mints a token set. Callers hold the mutex.
func (idp *fakeIdP) issueLocked(w http.ResponseWriter, tenant, sub, scope string) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": idp.server.URL + "/" + tenant,
		"sub": sub,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
		// Unique per token: without it, two tokens minted in the same
		// second are byte-identical under deterministic HS256 signing.
		"jti": uuid.NewString(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(idp.key)
	if err != nil {
		idp.t.Fatalf("signing access token: %v", err)
	}

	refresh := "rt-" + uuid.NewString()
	idp.refresh[refresh] = sub
	idp.subjects[access] = sub

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "Bearer",
		"expires_in":    3600,
		"scope":         scope,
	})
}

func (idp *fakeIdP) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := r.BasicAuth(); !ok {
		oauthError(w, http.StatusUnauthorized, "invalid_client", "basic auth required")
		return
	}
	if err := r.ParseForm(); err != nil {
		oauthError(w, http.StatusBadRequest, "invalid_request", "unparseable form")
		return
	}

	idp.mu.Lock()
	defer idp.mu.Unlock()

	token := r.Form.Get("token")
	sub, known := idp.subjects[token]
	if !known || idp.revoked[token] {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active": true,
		"sub":    sub,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
}

func (idp *fakeIdP) handleRevoke(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := r.BasicAuth(); !ok {
		oauthError(w, http.StatusUnauthorized, "invalid_client", "basic auth required")
		return
	}
	if err := r.ParseForm(); err != nil {
		oauthError(w, http.StatusBadRequest, "invalid_request", "unparseable form")
		return
	}

	idp.mu.Lock()
	idp.revoked[r.Form.Get("token")] = true
	idp.mu.Unlock()

	// Revocation is idempotent and succeeds for unknown tokens too.
	w.WriteHeader(http.StatusOK)
}

func (idp *fakeIdP) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	idp.mu.Lock()
	sub, known := idp.subjects[token]
	dead := idp.revoked[token]
	idp.mu.Unlock()

	if token == "" || !known || dead {
		oauthError(w, http.StatusUnauthorized, "invalid_token", "token invalid or expired")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sub":   sub,
		"name":  "Integration User",
		"email": sub + "@example.com",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func oauthError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, map[string]string{
		"error":             code,
		"error_description": description,
	})
}
