package playground

import (
	"errors"
	"time"

	"github.com/auric-id/oauth2-playground/internal/jwtinspect"
)

// TokenView is the display form of one token from the session's set. Opaque
// tokens degrade gracefully: the raw value is still shown, with no decoded
// sections and no expiry inference.
type TokenView struct {
	Kind TokenKind `json:"kind"`
	Raw  string    `json:"raw"`

	Opaque  bool                `json:"opaque"`
	Decoded *jwtinspect.Decoded `json:"decoded,omitempty"`

	Expired       bool                  `json:"expired,omitempty"`
	TimeRemaining string                `json:"time_remaining,omitempty"`
	Times         jwtinspect.TokenTimes `json:"times,omitempty"`
}

// newTokenView decodes raw as a JWT when possible, falling back to an opaque
// view otherwise. Only ErrInvalidToken triggers the fallback; any other error
// would be a bug worth surfacing.
func newTokenView(kind TokenKind, raw string, now time.Time) (*TokenView, error) {
	view := &TokenView{Kind: kind, Raw: raw}

	decoded, err := jwtinspect.Decode(raw)
	if errors.Is(err, jwtinspect.ErrInvalidToken) {
		view.Opaque = true
		return view, nil
	}
	if err != nil {
		return nil, err
	}

	view.Decoded = decoded
	view.Expired = jwtinspect.IsExpired(decoded.Claims, now)
	view.TimeRemaining = jwtinspect.TimeRemaining(decoded.Claims, now)
	view.Times = jwtinspect.Times(decoded.Claims)
	return view, nil
}
