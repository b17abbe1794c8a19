// Package playground drives the authorization-code walkthrough: a wizard of
// sessions moving select_app -> configure -> authorize -> tokens, with every
// provider interaction guarded against landing on a session that moved on.
package playground

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auric-id/oauth2-playground/internal/authorize"
	"github.com/auric-id/oauth2-playground/internal/correlation"
	"github.com/auric-id/oauth2-playground/internal/metrics"
	"github.com/auric-id/oauth2-playground/internal/pkce"
	"github.com/auric-id/oauth2-playground/internal/provider"
	"github.com/auric-id/oauth2-playground/internal/validation"
)

// TokenClient is the slice of the provider client the flow needs. Tests swap
// in a fake; production wires *provider.Client.
type TokenClient interface {
	ExchangeCode(ctx context.Context, req provider.ExchangeRequest) (*provider.TokenResponse, error)
	Refresh(ctx context.Context, req provider.RefreshRequest) (*provider.TokenResponse, error)
	Introspect(ctx context.Context, token, clientID, clientSecret string) (*provider.Introspection, error)
	Revoke(ctx context.Context, token, clientID, clientSecret string) error
	UserInfo(ctx context.Context, tenant, accessToken string) (*provider.UserInfo, error)
}

// BuildRequest carries the user's authorization request inputs. Zero values
// fall back to the client profile's defaults; UsePKCE can only widen what the
// profile requires, never narrow it.
type BuildRequest struct {
	ResponseType authorize.ResponseType `json:"response_type,omitempty"`
	RedirectURI  string                 `json:"redirect_uri"`
	Scopes       []string               `json:"scopes,omitempty"`
	State        string                 `json:"state,omitempty"`
	Nonce        string                 `json:"nonce,omitempty"`
	UsePKCE      *bool                  `json:"use_pkce,omitempty"`
}

// Flow orchestrates playground sessions. All mutations go through
// SaveIfVersion so a response that raced a reset is dropped, not applied.
type Flow struct {
	store  Store
	corr   *correlation.Manager
	client TokenClient
	issuer string

	now func() time.Time
	log *zap.Logger
}

// NewFlow creates a flow over a session store, a correlation manager and a
// provider client for the given issuer.
func NewFlow(store Store, corr *correlation.Manager, client TokenClient, issuer string, opts ...FlowOption) *Flow {
	f := &Flow{
		store:  store,
		corr:   corr,
		client: client,
		issuer: issuer,
		now:    time.Now,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// StartSession creates a fresh session at the app selection step.
func (f *Flow) StartSession(ctx context.Context) (*Session, error) {
	now := f.now()
	s := &Session{
		ID:          uuid.NewString(),
		Version:     1,
		State:       StateSelectApp,
		TokenStatus: TokenStatusNone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := f.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	metrics.SessionsStarted.Inc()
	f.log.Info("session started", zap.String("session_id", s.ID))
	return s, nil
}

// GetSession retrieves a session by ID.
func (f *Flow) GetSession(ctx context.Context, id string) (*Session, error) {
	return f.store.Get(ctx, id)
}

// SelectClient records the application under test and advances to the
// configuration step. Machine clients are refused here: they have no
// authorization request to build.
func (f *Flow) SelectClient(ctx context.Context, id string, cfg ClientConfig) (*Session, error) {
	s, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.State != StateSelectApp {
		return nil, fmt.Errorf("%w: select_app required, session is at %s", ErrInvalidTransition, s.State)
	}

	if cfg.Tenant == "" {
		return nil, &validation.Error{Field: "tenant", Message: "must not be empty"}
	}
	if cfg.ClientID == "" {
		return nil, &validation.Error{Field: "client_id", Message: "must not be empty"}
	}
	profile, ok := authorize.ProfileFor(cfg.Type)
	if !ok {
		return nil, &validation.Error{Field: "type", Message: fmt.Sprintf("unknown client subtype %q", cfg.Type)}
	}
	if !profile.SupportsAuthorizationCode() {
		return nil, &validation.Error{Field: "type", Message: fmt.Sprintf("subtype %q does not support the authorization code flow", cfg.Type)}
	}

	next := s.Clone()
	next.Client = cfg
	next.State = StateConfigure
	next.UpdatedAt = f.now()
	next.Version++

	if err := f.store.SaveIfVersion(ctx, next, s.Version); err != nil {
		return nil, err
	}
	return next, nil
}

// BuildAuthorizationURL assembles the authorization request from the user's
// inputs and the client profile's defaults, generates PKCE material when the
// flow calls for it, and binds the resulting state to this session. Allowed
// from configure and, for rebuilds, from authorize.
func (f *Flow) BuildAuthorizationURL(ctx context.Context, id string, req BuildRequest) (*Session, error) {
	s, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.State != StateConfigure && s.State != StateAuthorize {
		return nil, fmt.Errorf("%w: configure required, session is at %s", ErrInvalidTransition, s.State)
	}

	profile, ok := authorize.ProfileFor(s.Client.Type)
	if !ok {
		return nil, fmt.Errorf("%w: no client selected", ErrInvalidTransition)
	}

	responseType := req.ResponseType
	if responseType == "" {
		responseType = authorize.ResponseTypeCode
	}
	scopes := req.Scopes
	if len(scopes) == 0 {
		scopes = profile.DefaultScopes
	}

	usePKCE := profile.RequiresPKCE
	if req.UsePKCE != nil && *req.UsePKCE {
		usePKCE = true
	}

	areq := authorize.Request{
		ClientID:     s.Client.ClientID,
		ResponseType: responseType,
		RedirectURI:  req.RedirectURI,
		Scopes:       scopes,
		State:        req.State,
		Nonce:        req.Nonce,
		UsePKCE:      usePKCE,
	}

	var pair *pkce.Pair
	if usePKCE && strings.Contains(string(responseType), "code") {
		p, err := pkce.Generate()
		if err != nil {
			return nil, fmt.Errorf("generating pkce material: %w", err)
		}
		pair = &p
		areq.Challenge = p.Challenge
	}

	result, err := authorize.BuildURL(f.issuer, s.Client.Tenant, areq)
	if err != nil {
		return nil, err
	}
	areq.State = result.State
	areq.Nonce = result.Nonce

	// A rebuild abandons the previous attempt; its state must stop
	// resolving to this session.
	if s.Request != nil && s.Request.State != "" {
		if err := f.corr.Release(ctx, s.Request.State); err != nil {
			f.log.Warn("releasing superseded state binding", zap.Error(err))
		}
	}

	next := s.Clone()
	next.Request = &areq
	next.AuthorizationURL = result.URL
	next.PKCE = pair
	next.State = StateAuthorize
	next.UpdatedAt = f.now()
	next.Version++

	if err := f.store.SaveIfVersion(ctx, next, s.Version); err != nil {
		return nil, err
	}
	if err := f.corr.Bind(ctx, result.State, s.ID); err != nil {
		return nil, fmt.Errorf("binding authorization state: %w", err)
	}

	f.log.Info("authorization url built",
		zap.String("session_id", s.ID),
		zap.Bool("pkce", pair != nil))
	return next, nil
}

// ResolveState finds the session an authorization callback belongs to.
func (f *Flow) ResolveState(ctx context.Context, state string) (*Session, error) {
	sessionID, err := f.corr.Resolve(ctx, state)
	if err != nil {
		return nil, err
	}
	return f.store.Get(ctx, sessionID)
}

// ExchangeCode redeems the callback's authorization code. The state must
// match the session's pending request; the stored verifier and client secret
// ride along exactly as the profile dictates. A session that was reset while
// the exchange was in flight drops the result.
func (f *Flow) ExchangeCode(ctx context.Context, id, code, state string) (*Session, error) {
	s, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.State != StateAuthorize || s.Request == nil {
		return nil, fmt.Errorf("%w: no pending authorization request", ErrInvalidTransition)
	}
	if code == "" {
		return nil, &validation.Error{Field: "code", Message: "must not be empty"}
	}
	if state != s.Request.State {
		return nil, ErrStateMismatch
	}
	boundID, err := f.corr.Resolve(ctx, state)
	if err != nil {
		if errors.Is(err, correlation.ErrUnknownState) {
			return nil, ErrStateMismatch
		}
		return nil, err
	}
	if boundID != s.ID {
		return nil, ErrStateMismatch
	}

	profile, _ := authorize.ProfileFor(s.Client.Type)
	if profile.Confidential && s.Client.Secret == "" {
		return nil, ErrClientSecretRequired
	}

	exReq := provider.ExchangeRequest{
		Tenant:       s.Client.Tenant,
		Code:         code,
		RedirectURI:  s.Request.RedirectURI,
		ClientID:     s.Client.ClientID,
		ClientSecret: s.Client.Secret,
	}
	if s.PKCE != nil {
		exReq.CodeVerifier = s.PKCE.Verifier
	}

	tokens, err := f.client.ExchangeCode(ctx, exReq)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("exchange", "error").Inc()
		return nil, err
	}
	metrics.ProviderRequests.WithLabelValues("exchange", "ok").Inc()

	next := s.Clone()
	next.Tokens = tokens
	next.TokenStatus = f.localTokenStatus(tokens)
	next.State = StateTokens
	next.UpdatedAt = f.now()
	next.Version++

	if err := f.store.SaveIfVersion(ctx, next, s.Version); err != nil {
		if errors.Is(err, ErrStaleSession) || errors.Is(err, ErrSessionNotFound) {
			metrics.StaleResponsesDropped.Inc()
			f.log.Info("dropping exchange result for superseded session",
				zap.String("session_id", s.ID))
			return nil, ErrStaleSession
		}
		return nil, err
	}

	if err := f.corr.Release(ctx, state); err != nil {
		f.log.Warn("releasing redeemed state binding", zap.Error(err))
	}

	f.log.Info("authorization code exchanged", zap.String("session_id", s.ID))
	return next, nil
}

// Refresh rotates the session's token set. The response replaces the stored
// set wholesale, so a response without a new refresh token ends the refresh
// chain rather than silently reusing the old one.
func (f *Flow) Refresh(ctx context.Context, id string) (*Session, error) {
	s, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.State != StateTokens {
		return nil, fmt.Errorf("%w: no token set to refresh", ErrInvalidTransition)
	}
	if s.Tokens == nil {
		return nil, ErrNoTokens
	}
	if s.Tokens.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	tokens, err := f.client.Refresh(ctx, provider.RefreshRequest{
		Tenant:       s.Client.Tenant,
		RefreshToken: s.Tokens.RefreshToken,
		ClientID:     s.Client.ClientID,
		ClientSecret: s.Client.Secret,
	})
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("refresh", "error").Inc()
		return nil, err
	}
	metrics.ProviderRequests.WithLabelValues("refresh", "ok").Inc()
	metrics.TokenRefreshes.Inc()

	next := s.Clone()
	next.Tokens = tokens
	next.TokenStatus = f.localTokenStatus(tokens)
	next.RefreshCount++
	next.UpdatedAt = f.now()
	next.Version++

	if err := f.store.SaveIfVersion(ctx, next, s.Version); err != nil {
		if errors.Is(err, ErrStaleSession) || errors.Is(err, ErrSessionNotFound) {
			metrics.StaleResponsesDropped.Inc()
			f.log.Info("dropping refresh result for superseded session",
				zap.String("session_id", s.ID))
			return nil, ErrStaleSession
		}
		return nil, err
	}

	f.log.Info("token set refreshed",
		zap.String("session_id", s.ID),
		zap.Int("refresh_count", next.RefreshCount))
	return next, nil
}

// Introspect asks the provider for the authoritative state of one of the
// session's tokens. For the access token the answer overrides any local
// expiry inference; active:false marks the set inactive even when exp is
// still in the future.
func (f *Flow) Introspect(ctx context.Context, id string, kind TokenKind) (*provider.Introspection, error) {
	s, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	token, err := s.token(kind)
	if err != nil {
		return nil, err
	}
	if s.Client.Secret == "" {
		return nil, ErrClientSecretRequired
	}

	info, err := f.client.Introspect(ctx, token, s.Client.ClientID, s.Client.Secret)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("introspect", "error").Inc()
		return nil, err
	}
	metrics.ProviderRequests.WithLabelValues("introspect", "ok").Inc()

	if kind == TokenAccess {
		next := s.Clone()
		if info.Active {
			next.TokenStatus = TokenStatusActive
		} else {
			next.TokenStatus = TokenStatusInactive
		}
		next.UpdatedAt = f.now()
		next.Version++

		// The introspection answer is still valid for display even when
		// the session moved on; only the status write is dropped.
		if err := f.store.SaveIfVersion(ctx, next, s.Version); err != nil {
			metrics.StaleResponsesDropped.Inc()
			f.log.Info("dropping introspection status for superseded session",
				zap.String("session_id", s.ID))
		}
	}
	return info, nil
}

// Revoke invalidates one of the session's tokens at the provider. Revoking
// the access token marks the set inactive locally; the raw token values stay
// visible so the user can introspect what a revoked token looks like.
func (f *Flow) Revoke(ctx context.Context, id string, kind TokenKind) (*Session, error) {
	s, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	token, err := s.token(kind)
	if err != nil {
		return nil, err
	}
	if s.Client.Secret == "" {
		return nil, ErrClientSecretRequired
	}

	if err := f.client.Revoke(ctx, token, s.Client.ClientID, s.Client.Secret); err != nil {
		metrics.ProviderRequests.WithLabelValues("revoke", "error").Inc()
		return nil, err
	}
	metrics.ProviderRequests.WithLabelValues("revoke", "ok").Inc()

	next := s.Clone()
	if kind == TokenAccess {
		next.TokenStatus = TokenStatusInactive
	}
	next.UpdatedAt = f.now()
	next.Version++

	if err := f.store.SaveIfVersion(ctx, next, s.Version); err != nil {
		if errors.Is(err, ErrStaleSession) || errors.Is(err, ErrSessionNotFound) {
			metrics.StaleResponsesDropped.Inc()
			return nil, ErrStaleSession
		}
		return nil, err
	}

	f.log.Info("token revoked",
		zap.String("session_id", s.ID),
		zap.String("kind", string(kind)))
	return next, nil
}

// UserInfo fetches the claims behind the session's access token. Read-only;
// a rejected token comes back as a flagged UserInfo value, not an error.
func (f *Flow) UserInfo(ctx context.Context, id string) (*provider.UserInfo, error) {
	s, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	token, err := s.token(TokenAccess)
	if err != nil {
		return nil, err
	}

	info, err := f.client.UserInfo(ctx, s.Client.Tenant, token)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("userinfo", "error").Inc()
		return nil, err
	}
	if info.Rejected() {
		metrics.ProviderRequests.WithLabelValues("userinfo", "rejected").Inc()
	} else {
		metrics.ProviderRequests.WithLabelValues("userinfo", "ok").Inc()
	}
	return info, nil
}

// Inspect returns the display view of one token from the session's set.
func (f *Flow) Inspect(ctx context.Context, id string, kind TokenKind) (*TokenView, error) {
	s, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	token, err := s.token(kind)
	if err != nil {
		return nil, err
	}
	return newTokenView(kind, token, f.now())
}

// Reset discards everything the session accumulated and returns it to the
// app selection step. The ID survives; the version bump makes every response
// still in flight for the old attempt stale.
func (f *Flow) Reset(ctx context.Context, id string) (*Session, error) {
	s, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.Request != nil && s.Request.State != "" {
		if err := f.corr.Release(ctx, s.Request.State); err != nil {
			f.log.Warn("releasing state binding on reset", zap.Error(err))
		}
	}

	next := &Session{
		ID:          s.ID,
		Version:     s.Version + 1,
		State:       StateSelectApp,
		TokenStatus: TokenStatusNone,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   f.now(),
	}
	if err := f.store.SaveIfVersion(ctx, next, s.Version); err != nil {
		return nil, err
	}

	metrics.SessionsReset.Inc()
	f.log.Info("session reset", zap.String("session_id", s.ID))
	return next, nil
}

// GoBack jumps to an earlier wizard step without discarding anything the
// later steps produced. Forward jumps and unknown steps are refused.
func (f *Flow) GoBack(ctx context.Context, id string, to State) (*Session, error) {
	s, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.CanGoBack(to) {
		return nil, fmt.Errorf("%w: cannot go back from %s to %s", ErrInvalidTransition, s.State, to)
	}

	next := s.Clone()
	next.State = to
	next.UpdatedAt = f.now()
	next.Version++

	if err := f.store.SaveIfVersion(ctx, next, s.Version); err != nil {
		return nil, err
	}
	return next, nil
}

// DeleteSession removes a session and its state binding.
func (f *Flow) DeleteSession(ctx context.Context, id string) error {
	s, err := f.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}
	if s.Request != nil && s.Request.State != "" {
		if err := f.corr.Release(ctx, s.Request.State); err != nil {
			f.log.Warn("releasing state binding on delete", zap.Error(err))
		}
	}
	return f.store.Delete(ctx, id)
}

// CheckHealth verifies the flow's storage dependencies.
func (f *Flow) CheckHealth(ctx context.Context) error {
	if err := f.store.CheckHealth(ctx); err != nil {
		return err
	}
	return f.corr.CheckHealth(ctx)
}

// localTokenStatus infers the set's status from expires_in alone. It is a
// provisional answer; introspection overwrites it in either direction.
func (f *Flow) localTokenStatus(t *provider.TokenResponse) TokenStatus {
	if t == nil || t.AccessToken == "" {
		return TokenStatusNone
	}
	if t.ExpiresIn > 0 && f.now().After(t.ExpiresAt()) {
		return TokenStatusExpired
	}
	return TokenStatusActive
}
