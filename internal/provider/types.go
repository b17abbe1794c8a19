package provider

import (
	"time"

	"golang.org/x/oauth2"
)

// TokenResponse is the result of a successful code or refresh exchange.
// A session replaces its TokenResponse wholesale on every exchange: fields
// the new response omits are cleared, never carried over from the old one.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`

	// ObtainedAt anchors expires_in to wall time so lifetime arithmetic
	// survives serialization into the session store.
	ObtainedAt time.Time `json:"obtained_at"`
}

// ExpiresAt returns the wall-clock instant the access token expires.
func (t *TokenResponse) ExpiresAt() time.Time {
	return t.ObtainedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Token converts the response into an *oauth2.Token so callers can hand it
// to the wider oauth2 ecosystem. id_token and scope ride along as extras.
func (t *TokenResponse) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt(),
	}
	return tok.WithExtra(map[string]any{
		"id_token": t.IDToken,
		"scope":    t.Scope,
	})
}

// ExchangeRequest carries the parameters for an authorization-code exchange.
// ClientSecret is set only for confidential clients; CodeVerifier only when
// PKCE was used in the matching authorization request.
type ExchangeRequest struct {
	Tenant       string
	Code         string
	RedirectURI  string
	ClientID     string
	ClientSecret string
	CodeVerifier string
}

// RefreshRequest carries the parameters for a refresh-token grant.
type RefreshRequest struct {
	Tenant       string
	RefreshToken string
	ClientID     string
	ClientSecret string
}

// Introspection is the server-asserted state of a token. Active is
// authoritative: a token revoked before its exp claim is inactive here even
// though it decodes as unexpired locally. The two views deliberately diverge.
type Introspection struct {
	Active      bool     `json:"active"`
	Subject     string   `json:"sub,omitempty"`
	ClientID    string   `json:"client_id,omitempty"`
	ExpiresAt   int64    `json:"exp,omitempty"`
	Scope       string   `json:"scope,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// UserInfo is the claims map returned by the userinfo endpoint. A 401/403
// comes back as a value with Error set rather than a Go error, so callers can
// render "token invalid or expired" without a generic failure path.
type UserInfo struct {
	Claims           map[string]any `json:"claims,omitempty"`
	Error            string         `json:"error,omitempty"`
	ErrorDescription string         `json:"error_description,omitempty"`
	Status           int            `json:"-"`
}

// Rejected reports whether the endpoint refused the access token.
func (u *UserInfo) Rejected() bool { return u.Error != "" }

// errorBody is the standard OAuth2 error response shape.
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
