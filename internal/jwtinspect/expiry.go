package jwtinspect

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiredLabel is the fixed display value for tokens past their exp claim.
const ExpiredLabel = "expired"

// IsExpired reports whether the exp claim is in the past at the given
// instant. Absent or unreadable exp means not expired: many valid tokens
// simply carry no expiry. Comparison happens in milliseconds since exp is
// whole Unix seconds.
//
// nbf is intentionally not consulted here; see TokenTimes for the raw claim.
func IsExpired(claims jwt.MapClaims, now time.Time) bool {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.UnixMilli() > exp.UnixMilli()
}

// TimeRemaining renders the remaining lifetime of a token for display:
// the fixed "expired" label once past, otherwise whole hours and minutes.
func TimeRemaining(claims jwt.MapClaims, now time.Time) string {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return ""
	}
	if now.UnixMilli() > exp.UnixMilli() {
		return ExpiredLabel
	}

	remaining := exp.Sub(now)
	hours := int(remaining.Hours())
	minutes := int(remaining.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// TokenTimes extracts the temporal claims a debugging view cares about.
// NotBefore is surfaced raw but never enforced.
type TokenTimes struct {
	IssuedAt  *time.Time `json:"iat,omitempty"`
	NotBefore *time.Time `json:"nbf,omitempty"`
	ExpiresAt *time.Time `json:"exp,omitempty"`
}

// Times collects iat/nbf/exp from a decoded payload, skipping any claim that
// is absent or malformed.
func Times(claims jwt.MapClaims) TokenTimes {
	var out TokenTimes
	if v, err := claims.GetIssuedAt(); err == nil && v != nil {
		out.IssuedAt = &v.Time
	}
	if v, err := claims.GetNotBefore(); err == nil && v != nil {
		out.NotBefore = &v.Time
	}
	if v, err := claims.GetExpirationTime(); err == nil && v != nil {
		out.ExpiresAt = &v.Time
	}
	return out
}
