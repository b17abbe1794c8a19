// Package pkce implements Proof Key for Code Exchange per RFC 7636
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
)

// verifierBytes is the entropy drawn for each verifier. 32 bytes encode to a
// 43 character verifier, the minimum length allowed by RFC 7636 section 4.1.
const verifierBytes = 32

// Method is the only challenge transform supported, per RFC 7636 section 4.2.
// Plain is deliberately not offered.
const Method = "S256"

// ErrCryptoUnavailable indicates the secure random source failed. There is no
// fallback: a verifier from a weak source defeats the point of PKCE.
var ErrCryptoUnavailable = errors.New("secure random source unavailable")

// VerifierRegexp matches the RFC 7636 section 4.1 code_verifier grammar.
var VerifierRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]{43,128}$`)

// Pair holds a code_verifier and its derived code_challenge. The two are
// generated together and must never be edited individually.
type Pair struct {
	Verifier  string `json:"code_verifier"`
	Challenge string `json:"code_challenge"`
}

// Generate creates a fresh verifier/challenge pair. The caller is responsible
// for retaining the verifier until the token exchange; it is never sent in
// the authorization request.
func Generate() (Pair, error) {
	buf := make([]byte, verifierBytes)
	if _, err := rand.Read(buf); err != nil {
		return Pair{}, fmt.Errorf("%w: %v", ErrCryptoUnavailable, err)
	}

	verifier := base64.RawURLEncoding.EncodeToString(buf)
	return Pair{
		Verifier:  verifier,
		Challenge: ChallengeS256(verifier),
	}, nil
}

// ChallengeS256 derives the S256 challenge for a verifier: the unpadded
// URL-safe base64 encoding of SHA-256 over the verifier's UTF-8 bytes.
func ChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// VerifyChallenge reports whether challenge is the S256 derivation of
// verifier, in constant time.
func VerifyChallenge(verifier, challenge string) bool {
	expected := ChallengeS256(verifier)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(challenge)) == 1
}
