package authorize

// ClientType identifies the application subtype selected in the playground.
// The profile table below replaces per-subtype conditionals scattered through
// the flow: every subtype-dependent rule lives here.
type ClientType string

const (
	ClientTypeSPA     ClientType = "spa"
	ClientTypeWeb     ClientType = "web"
	ClientTypeNative  ClientType = "native"
	ClientTypeMachine ClientType = "machine"
)

// Profile carries the defaults and requirements for one client subtype.
type Profile struct {
	Type          ClientType
	GrantTypes    []string
	DefaultScopes []string

	// RequiresRedirectURI is false only for machine clients, which never
	// see a browser redirect.
	RequiresRedirectURI bool

	// RequiresPKCE marks subtypes that cannot hold a secret and must bind
	// their authorization codes with a challenge.
	RequiresPKCE bool

	// Confidential marks subtypes expected to authenticate with a client
	// secret at the token endpoint.
	Confidential bool
}

var profiles = map[ClientType]Profile{
	ClientTypeSPA: {
		Type:                ClientTypeSPA,
		GrantTypes:          []string{"authorization_code", "refresh_token"},
		DefaultScopes:       []string{"openid", "profile"},
		RequiresRedirectURI: true,
		RequiresPKCE:        true,
	},
	ClientTypeWeb: {
		Type:                ClientTypeWeb,
		GrantTypes:          []string{"authorization_code", "refresh_token"},
		DefaultScopes:       []string{"openid", "profile", "email"},
		RequiresRedirectURI: true,
		Confidential:        true,
	},
	ClientTypeNative: {
		Type:                ClientTypeNative,
		GrantTypes:          []string{"authorization_code", "refresh_token"},
		DefaultScopes:       []string{"openid", "profile", "offline_access"},
		RequiresRedirectURI: true,
		RequiresPKCE:        true,
	},
	ClientTypeMachine: {
		Type:          ClientTypeMachine,
		GrantTypes:    []string{"client_credentials"},
		DefaultScopes: []string{"api"},
		Confidential:  true,
	},
}

// ProfileFor returns the profile for a client subtype.
func ProfileFor(t ClientType) (Profile, bool) {
	p, ok := profiles[t]
	return p, ok
}

// SupportsAuthorizationCode reports whether the subtype can run the
// authorization-code flow the playground simulates.
func (p Profile) SupportsAuthorizationCode() bool {
	for _, g := range p.GrantTypes {
		if g == "authorization_code" {
			return true
		}
	}
	return false
}
