// Package validation provides parameter validation for OAuth2 playground flows
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// MinCorrelationLength is the minimum length for state and nonce values.
// They are correlation tokens, not secrets; the policy only guards against
// trivially guessable values.
const MinCorrelationLength = 8

var (
	correlationRegex = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	verifierRegex    = regexp.MustCompile(`^[A-Za-z0-9_-]{43,128}$`)
)

// Error represents a request parameter validation failure. It is always
// recoverable locally and must never be surfaced as a network error.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// CorrelationToken checks a caller-supplied state or nonce value.
func CorrelationToken(field, value string) error {
	if len(value) < MinCorrelationLength {
		return &Error{
			Field:   field,
			Message: fmt.Sprintf("must be at least %d characters", MinCorrelationLength),
		}
	}
	if !correlationRegex.MatchString(value) {
		return &Error{
			Field:   field,
			Message: "must contain only alphanumeric characters",
		}
	}
	return nil
}

// RedirectURI checks that a redirect URI is present and absolute. Exact
// matching against the client's registered URIs is the provider's job; the
// playground only rejects values the provider is guaranteed to refuse.
func RedirectURI(value string) error {
	if value == "" {
		return &Error{Field: "redirect_uri", Message: "must not be empty"}
	}
	u, err := url.Parse(value)
	if err != nil {
		return &Error{Field: "redirect_uri", Message: "must be a valid URI"}
	}
	if !u.IsAbs() {
		return &Error{Field: "redirect_uri", Message: "must be an absolute URI"}
	}
	return nil
}

// Scopes checks that at least one non-empty scope was requested.
func Scopes(scopes []string) error {
	for _, s := range scopes {
		if strings.TrimSpace(s) != "" {
			return nil
		}
	}
	return &Error{Field: "scope", Message: "at least one scope is required"}
}

// NormalizeScopes deduplicates scopes while preserving first-seen order and
// dropping empty entries. The result joins with single spaces into the wire
// format scope parameter.
func NormalizeScopes(scopes []string) []string {
	seen := make(map[string]struct{}, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// CodeVerifier checks a PKCE code verifier against the RFC 7636 section 4.1
// grammar.
func CodeVerifier(value string) error {
	if !verifierRegex.MatchString(value) {
		return &Error{
			Field:   "code_verifier",
			Message: "must be 43-128 URL-safe base64 characters",
		}
	}
	return nil
}
