// Package provider is the HTTP client for the identity provider's token,
// introspection, revocation and userinfo endpoints.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	tokenPathFormat    = "/%s/oauth2/token"
	userinfoPathFormat = "/%s/userinfo"
	introspectPath     = "/oauth2/introspect"
	revokePath         = "/oauth2/revoke"

	// defaultTimeout bounds every provider call. The UI design leaves
	// deadlines to the HTTP layer, so the layer must actually have one.
	defaultTimeout = 10 * time.Second
)

// Client talks to one identity provider issuer. Tenant-scoped endpoints take
// the tenant per call; introspection and revocation are issuer-global.
type Client struct {
	http   *http.Client
	issuer string

	// includeSys asks introspection for system claims alongside the
	// standard ones.
	includeSys bool
}

// Option configures the provider client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithSystemClaims requests include_sys on introspection calls.
func WithSystemClaims() Option {
	return func(c *Client) { c.includeSys = true }
}

// New creates a client for the given issuer base URL.
func New(issuer string, opts ...Option) (*Client, error) {
	if issuer == "" {
		return nil, fmt.Errorf("issuer URL is required")
	}
	issuer = strings.TrimSuffix(issuer, "/")
	if _, err := url.Parse(issuer); err != nil {
		return nil, fmt.Errorf("invalid issuer URL: %w", err)
	}

	c := &Client{
		http:   &http.Client{Timeout: defaultTimeout},
		issuer: issuer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ExchangeCode redeems an authorization code at the tenant's token endpoint.
func (c *Client) ExchangeCode(ctx context.Context, req ExchangeRequest) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {req.Code},
		"redirect_uri": {req.RedirectURI},
		"client_id":    {req.ClientID},
	}
	if req.ClientSecret != "" {
		data.Set("client_secret", req.ClientSecret)
	}
	if req.CodeVerifier != "" {
		data.Set("code_verifier", req.CodeVerifier)
	}

	return c.tokenRequest(ctx, "exchange", req.Tenant, data)
}

// Refresh rotates a token set using a refresh token. The caller replaces its
// whole TokenResponse with the result; the previous refresh token must not be
// retained after a successful rotation.
func (c *Client) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {req.RefreshToken},
		"client_id":     {req.ClientID},
	}
	if req.ClientSecret != "" {
		data.Set("client_secret", req.ClientSecret)
	}

	return c.tokenRequest(ctx, "refresh", req.Tenant, data)
}

// tokenRequest posts a form to the tenant token endpoint and decodes the
// standard token response or error body.
func (c *Client) tokenRequest(ctx context.Context, op, tenant string, data url.Values) (*TokenResponse, error) {
	endpoint := c.issuer + fmt.Sprintf(tokenPathFormat, tenant)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, networkError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, flowErrorFromBody(op, resp.StatusCode, body)
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &FlowError{
			Op:          op,
			Code:        CodeServerError,
			Description: "malformed token response",
			Status:      resp.StatusCode,
			err:         err,
		}
	}
	token.ObtainedAt = time.Now()

	return &token, nil
}

// Introspect asks the provider for the authoritative state of a token. The
// endpoint requires confidential-style credentials even to inspect a public
// client's token.
func (c *Client) Introspect(ctx context.Context, token, clientID, clientSecret string) (*Introspection, error) {
	data := url.Values{"token": {token}}
	if c.includeSys {
		data.Set("include_sys", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.issuer+introspectPath, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(clientID, clientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, networkError("introspect", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError("introspect", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, flowErrorFromBody("introspect", resp.StatusCode, body)
	}

	var info Introspection
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, &FlowError{
			Op:          "introspect",
			Code:        CodeServerError,
			Description: "malformed introspection response",
			Status:      resp.StatusCode,
			err:         err,
		}
	}
	return &info, nil
}

// Revoke invalidates a token. Revocation is idempotent: revoking an unknown
// or already-revoked token succeeds. Non-2xx responses surface the server's
// error description; nothing is retried.
func (c *Client) Revoke(ctx context.Context, token, clientID, clientSecret string) error {
	data := url.Values{"token": {token}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.issuer+revokePath, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("creating revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(clientID, clientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return networkError("revoke", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return flowErrorFromBody("revoke", resp.StatusCode, body)
	}
	return nil
}

// UserInfo fetches the claims for an access token. The Bearer header comes
// from an oauth2 static token source so the call behaves like any other
// ecosystem client. A 401/403 is returned as a rejected UserInfo value, not
// an error.
func (c *Client) UserInfo(ctx context.Context, tenant, accessToken string) (*UserInfo, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	hc := oauth2.NewClient(ctx, src)

	endpoint := c.issuer + fmt.Sprintf(userinfoPathFormat, tenant)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating userinfo request: %w", err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, networkError("userinfo", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError("userinfo", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		var errResp errorBody
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
			errResp.Error = "invalid_token"
			errResp.ErrorDescription = "token invalid or expired"
		}
		return &UserInfo{
			Error:            errResp.Error,
			ErrorDescription: errResp.ErrorDescription,
			Status:           resp.StatusCode,
		}, nil

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, flowErrorFromBody("userinfo", resp.StatusCode, body)
	}

	var claims map[string]any
	if err := json.Unmarshal(body, &claims); err != nil {
		return nil, &FlowError{
			Op:          "userinfo",
			Code:        CodeServerError,
			Description: "malformed userinfo response",
			Status:      resp.StatusCode,
			err:         err,
		}
	}
	return &UserInfo{Claims: claims, Status: resp.StatusCode}, nil
}

// flowErrorFromBody builds a FlowError from a non-2xx response, preferring
// the server's error/error_description fields when present.
func flowErrorFromBody(op string, status int, body []byte) *FlowError {
	var errResp errorBody
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &FlowError{
			Op:          op,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
			Status:      status,
		}
	}
	return &FlowError{
		Op:          op,
		Code:        CodeServerError,
		Description: fmt.Sprintf("unexpected response: %s", strings.TrimSpace(string(body))),
		Status:      status,
	}
}
