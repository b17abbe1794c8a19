package playground

import (
	"fmt"
	"time"

	"github.com/auric-id/oauth2-playground/internal/authorize"
	"github.com/auric-id/oauth2-playground/internal/pkce"
	"github.com/auric-id/oauth2-playground/internal/provider"
)

// State is a step in the playground wizard. Transitions move strictly forward
// through explicit user actions; jumping backward is always allowed and never
// destroys what later steps accumulated.
type State string

const (
	StateSelectApp State = "select_app"
	StateConfigure State = "configure"
	StateAuthorize State = "authorize"
	StateTokens    State = "tokens"
)

var stateOrder = map[State]int{
	StateSelectApp: 0,
	StateConfigure: 1,
	StateAuthorize: 2,
	StateTokens:    3,
}

// Valid reports whether s names a wizard step.
func (s State) Valid() bool {
	_, ok := stateOrder[s]
	return ok
}

// TokenStatus is the playground's current judgement of the token set.
// Inactive comes from introspection and wins over local expiry inference.
type TokenStatus string

const (
	TokenStatusNone     TokenStatus = "none"
	TokenStatusActive   TokenStatus = "active"
	TokenStatusExpired  TokenStatus = "expired"
	TokenStatusInactive TokenStatus = "inactive"
)

// TokenKind selects which token of the set an operation targets.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
	TokenID      TokenKind = "id"
)

// ClientConfig identifies the application under test. Secret is set only for
// confidential subtypes; it lives in the short-lived session store alongside
// the rest of the attempt state.
type ClientConfig struct {
	Tenant   string               `json:"tenant"`
	ClientID string               `json:"client_id"`
	Type     authorize.ClientType `json:"type"`
	Secret   string               `json:"secret,omitempty"`
}

// Session is the whole state of one playground run. Flow methods treat it as
// an immutable value: they clone, modify the clone, and persist it under an
// incremented version, so a reset is a single well-defined replacement and
// late responses cannot clobber newer state.
type Session struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
	State   State  `json:"state"`

	Client           ClientConfig       `json:"client"`
	Request          *authorize.Request `json:"request,omitempty"`
	AuthorizationURL string             `json:"authorization_url,omitempty"`
	PKCE             *pkce.Pair         `json:"pkce,omitempty"`

	Tokens       *provider.TokenResponse `json:"tokens,omitempty"`
	TokenStatus  TokenStatus             `json:"token_status"`
	RefreshCount int                     `json:"refresh_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy safe to mutate independently.
func (s *Session) Clone() *Session {
	next := *s
	if s.Request != nil {
		req := *s.Request
		req.Scopes = append([]string(nil), s.Request.Scopes...)
		next.Request = &req
	}
	if s.PKCE != nil {
		pair := *s.PKCE
		next.PKCE = &pair
	}
	if s.Tokens != nil {
		tokens := *s.Tokens
		next.Tokens = &tokens
	}
	return &next
}

// Redacted returns a copy safe to serialize to clients. The client secret
// stays in the store but never travels back out in a response body.
func (s *Session) Redacted() *Session {
	next := s.Clone()
	next.Client.Secret = ""
	return next
}

// CanGoBack reports whether to is an earlier step than the current one.
func (s *Session) CanGoBack(to State) bool {
	target, ok := stateOrder[to]
	if !ok {
		return false
	}
	return target < stateOrder[s.State]
}

// token returns the raw token string for a kind, or an error when the set
// does not carry it.
func (s *Session) token(kind TokenKind) (string, error) {
	if s.Tokens == nil {
		return "", ErrNoTokens
	}
	switch kind {
	case TokenAccess:
		return s.Tokens.AccessToken, nil
	case TokenRefresh:
		if s.Tokens.RefreshToken == "" {
			return "", ErrNoRefreshToken
		}
		return s.Tokens.RefreshToken, nil
	case TokenID:
		if s.Tokens.IDToken == "" {
			return "", fmt.Errorf("%w: no id token issued", ErrNoTokens)
		}
		return s.Tokens.IDToken, nil
	default:
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
}
