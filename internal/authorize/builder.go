// Package authorize builds OAuth2/OIDC authorization requests
package authorize

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/auric-id/oauth2-playground/internal/validation"
)

// ResponseType enumerates the response_type values the playground can request.
type ResponseType string

const (
	ResponseTypeCode        ResponseType = "code"
	ResponseTypeToken       ResponseType = "token"
	ResponseTypeIDToken     ResponseType = "id_token"
	ResponseTypeCodeIDToken ResponseType = "code id_token"
)

// ErrMissingPkceChallenge indicates PKCE was requested for a code flow but no
// challenge was supplied.
var ErrMissingPkceChallenge = errors.New("pkce requested but no code_challenge present")

// correlationBytes gives 32 hex characters for generated state and nonce
// values, comfortably above the 8 character minimum.
const correlationBytes = 16

// Request holds the parameters of one authorization attempt. It is assembled
// fresh for every generated URL and must not be mutated afterwards.
type Request struct {
	ClientID     string       `json:"client_id"`
	ResponseType ResponseType `json:"response_type"`
	RedirectURI  string       `json:"redirect_uri"`
	Scopes       []string     `json:"scopes"`
	State        string       `json:"state,omitempty"`
	Nonce        string       `json:"nonce,omitempty"`

	// UsePKCE marks that the matching token exchange will carry a
	// code_verifier; Challenge must then be set for code flows.
	UsePKCE   bool   `json:"use_pkce"`
	Challenge string `json:"code_challenge,omitempty"`
}

// Result is the built authorization URL together with the state and nonce
// actually used. When the request omitted them the builder generates both, so
// callers must read them back from here to correlate the callback.
type Result struct {
	URL   string `json:"url"`
	State string `json:"state"`
	Nonce string `json:"nonce"`
}

// BuildURL assembles the authorization endpoint URL for a tenant under the
// given issuer. Every parameter appears exactly once in the query string;
// code_challenge_method appears only alongside a challenge.
func BuildURL(issuer, tenant string, req Request) (Result, error) {
	if req.ClientID == "" {
		return Result{}, &validation.Error{Field: "client_id", Message: "must not be empty"}
	}
	if err := validation.RedirectURI(req.RedirectURI); err != nil {
		return Result{}, err
	}
	scopes := validation.NormalizeScopes(req.Scopes)
	if err := validation.Scopes(scopes); err != nil {
		return Result{}, err
	}
	if req.ResponseType == "" {
		req.ResponseType = ResponseTypeCode
	}

	wantsCode := strings.Contains(string(req.ResponseType), "code")
	if wantsCode && req.UsePKCE && req.Challenge == "" {
		return Result{}, ErrMissingPkceChallenge
	}

	state := req.State
	if state == "" {
		var err error
		if state, err = correlationToken(); err != nil {
			return Result{}, fmt.Errorf("generating state: %w", err)
		}
	} else if err := validation.CorrelationToken("state", state); err != nil {
		return Result{}, err
	}

	nonce := req.Nonce
	if nonce == "" {
		var err error
		if nonce, err = correlationToken(); err != nil {
			return Result{}, fmt.Errorf("generating nonce: %w", err)
		}
	} else if err := validation.CorrelationToken("nonce", nonce); err != nil {
		return Result{}, err
	}

	values := url.Values{}
	values.Set("client_id", req.ClientID)
	values.Set("response_type", string(req.ResponseType))
	values.Set("redirect_uri", req.RedirectURI)
	values.Set("scope", strings.Join(scopes, " "))
	values.Set("state", state)
	values.Set("nonce", nonce)
	if req.Challenge != "" {
		values.Set("code_challenge", req.Challenge)
		values.Set("code_challenge_method", "S256")
	}

	endpoint := fmt.Sprintf("%s/%s/oauth2/authorize", strings.TrimSuffix(issuer, "/"), tenant)
	return Result{
		URL:   endpoint + "?" + values.Encode(),
		State: state,
		Nonce: nonce,
	}, nil
}

// correlationToken generates a hex-encoded random string for state and nonce.
// Hex keeps the values alphanumeric for easy copy/paste from callback URLs.
func correlationToken() (string, error) {
	buf := make([]byte, correlationBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
