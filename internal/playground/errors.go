package playground

import "errors"

// Errors surfaced by the playground flow. Validation failures come back as
// *validation.Error and provider failures as *provider.FlowError; these cover
// the session lifecycle itself.
var (
	// ErrSessionNotFound indicates an unknown or expired session ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrStaleSession indicates the session changed while a request was in
	// flight. The late result is dropped, never applied.
	ErrStaleSession = errors.New("session changed while request was in flight")

	// ErrInvalidTransition indicates an operation not allowed in the
	// session's current state.
	ErrInvalidTransition = errors.New("operation not allowed in current state")

	// ErrNoTokens indicates a token operation before any successful exchange.
	ErrNoTokens = errors.New("session holds no tokens")

	// ErrNoRefreshToken indicates a refresh attempt when the provider
	// issued no refresh token.
	ErrNoRefreshToken = errors.New("session holds no refresh token")

	// ErrClientSecretRequired indicates an introspection or revocation
	// attempt without confidential-client credentials. The downstream
	// endpoints demand them even for a public client's token.
	ErrClientSecretRequired = errors.New("operation requires a client secret")

	// ErrStateMismatch indicates a callback state that does not belong to
	// this session's authorization attempt.
	ErrStateMismatch = errors.New("state does not match this session's authorization request")
)
