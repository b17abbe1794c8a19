package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCorrelationToken(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid_alnum", "abc12345", false},
		{"valid_long", "f3a9c8e210b4d5f6", false},
		{"too_short", "abc1234", true},
		{"empty", "", true},
		{"non_alnum", "abc-12345", true},
		{"whitespace", "abc 12345", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CorrelationToken("state", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("CorrelationToken(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil {
				var verr *Error
				if !errors.As(err, &verr) {
					t.Errorf("CorrelationToken() error type = %T, want *Error", err)
				} else if verr.Field != "state" {
					t.Errorf("CorrelationToken() field = %q, want state", verr.Field)
				}
			}
		})
	}
}

func TestRedirectURI(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"https", "https://app.example.com/cb", false},
		{"custom_scheme", "myapp://callback", false},
		{"empty", "", true},
		{"relative", "/callback", true},
		{"garbage", "http://bad uri{", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RedirectURI(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("RedirectURI(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestScopes(t *testing.T) {
	if err := Scopes([]string{"openid"}); err != nil {
		t.Errorf("Scopes() error = %v, want nil", err)
	}
	if err := Scopes(nil); err == nil {
		t.Error("Scopes(nil) expected error")
	}
	if err := Scopes([]string{"", "  "}); err == nil {
		t.Error("Scopes() expected error for blank entries")
	}
}

func TestNormalizeScopes(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"preserves_order", []string{"openid", "profile", "email"}, []string{"openid", "profile", "email"}},
		{"dedupes_first_wins", []string{"openid", "profile", "openid"}, []string{"openid", "profile"}},
		{"drops_blanks", []string{"", "openid", "  ", "profile"}, []string{"openid", "profile"}},
		{"trims", []string{" openid ", "profile"}, []string{"openid", "profile"}},
		{"empty_input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeScopes(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NormalizeScopes() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCodeVerifier(t *testing.T) {
	valid43 := strings.Repeat("a", 43)
	valid128 := strings.Repeat("B-_9", 32)

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"min_length", valid43, false},
		{"max_length", valid128, false},
		{"too_short", strings.Repeat("a", 42), true},
		{"too_long", strings.Repeat("a", 129), true},
		{"bad_chars", strings.Repeat("a", 42) + "+", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CodeVerifier(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("CodeVerifier() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
