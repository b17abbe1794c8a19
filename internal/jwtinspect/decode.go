// Package jwtinspect decodes compact JWT serializations for display.
//
// This is a client-side inspector, not a verifier: signatures are carried
// opaquely and never checked. Nothing decoded here is a trust decision;
// introspection remains the authority on whether a token is live.
package jwtinspect

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates the input is not a well-formed compact JWT.
// Decode returns it wrapped with detail; it never panics. Callers must keep
// this distinct from "valid but expired" and from "inactive per introspection".
var ErrInvalidToken = errors.New("invalid token")

// Decoded is the parsed form of a compact JWT. Header and Claims are the
// decoded JSON mappings; Signature is the raw third segment, untouched.
type Decoded struct {
	Header    map[string]any `json:"header"`
	Claims    jwt.MapClaims  `json:"payload"`
	Signature string         `json:"signature"`
}

// Decode splits a compact serialization into header, claims and signature.
// The first two segments must be base64url JSON; the third is kept verbatim.
func Decode(compact string) (*Decoded, error) {
	parts := strings.Split(compact, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrInvalidToken, len(parts))
	}
	for i, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: segment %d is empty", ErrInvalidToken, i+1)
		}
	}

	headerBytes, err := decodeSegment(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: decoding header: %v", ErrInvalidToken, err)
	}
	var header map[string]any
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("%w: parsing header: %v", ErrInvalidToken, err)
	}

	claimBytes, err := decodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: decoding payload: %v", ErrInvalidToken, err)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(claimBytes, &claims); err != nil {
		return nil, fmt.Errorf("%w: parsing payload: %v", ErrInvalidToken, err)
	}

	return &Decoded{
		Header:    header,
		Claims:    claims,
		Signature: parts[2],
	}, nil
}

// decodeSegment decodes base64url with or without padding. Tokens in the wild
// come unpadded, but pasted values sometimes keep their '=' suffix.
func decodeSegment(seg string) ([]byte, error) {
	if rem := len(seg) % 4; rem > 0 {
		seg += strings.Repeat("=", 4-rem)
	}
	return base64.URLEncoding.DecodeString(seg)
}
