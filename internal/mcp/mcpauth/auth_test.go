package mcpauth

import (
	"testing"
)

func TestAuthenticatorDisabledWithoutKey(t *testing.T) {
	t.Setenv("DBGATEWAY_MCP_API_KEY", "")

	a := NewAuthenticator()
	if a.Enabled() {
		t.Error("Enabled() = true with no key configured")
	}
	// Even a matching empty token is rejected when auth is unconfigured.
	if _, err := a.verify(""); err == nil {
		t.Error("verify(\"\") succeeded with no key configured")
	}
}

func TestAuthenticatorVerify(t *testing.T) {
	t.Setenv("DBGATEWAY_MCP_API_KEY", "s3cret-key")

	a := NewAuthenticator()
	if !a.Enabled() {
		t.Fatal("Enabled() = false with key configured")
	}

	info, err := a.verify("s3cret-key")
	if err != nil {
		t.Fatalf("verify(correct) error: %v", err)
	}
	if len(info.Scopes) != 1 || info.Scopes[0] != "mcp:full" {
		t.Errorf("Scopes = %v, want [mcp:full]", info.Scopes)
	}

	if _, err := a.verify("wrong"); err == nil {
		t.Error("verify(wrong) succeeded")
	}
}

func TestValidateAuthHeader(t *testing.T) {
	t.Setenv("DBGATEWAY_MCP_API_KEY", "s3cret-key")
	a := NewAuthenticator()

	tests := []struct {
		name   string
		header string
		wantOK bool
	}{
		{"valid bearer", "Bearer s3cret-key", true},
		{"wrong token", "Bearer nope", false},
		{"missing prefix", "s3cret-key", false},
		{"basic auth", "Basic czNjcmV0", false},
		{"empty token", "Bearer ", false},
		{"empty header", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.ValidateAuthHeader(tt.header)
			if ok := err == nil; ok != tt.wantOK {
				t.Errorf("ValidateAuthHeader(%q) ok = %v, want %v", tt.header, ok, tt.wantOK)
			}
		})
	}
}
