package mcpauth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/auth"
)

// Authenticator guards the HTTP transport with a single shared API key.
// The stdio transport is inherently local and skips authentication.
type Authenticator struct {
	apiKey string
}

// NewAuthenticator reads the API key from DBGATEWAY_MCP_API_KEY.
func NewAuthenticator() *Authenticator {
	return &Authenticator{
		apiKey: os.Getenv("DBGATEWAY_MCP_API_KEY"),
	}
}

// Enabled returns true if an API key is configured.
func (a *Authenticator) Enabled() bool {
	return a.apiKey != ""
}

// TokenVerifier returns a verifier function compatible with
// auth.RequireBearerToken.
func (a *Authenticator) TokenVerifier() func(ctx context.Context, token string, req *http.Request) (*auth.TokenInfo, error) {
	return func(ctx context.Context, token string, req *http.Request) (*auth.TokenInfo, error) {
		return a.verify(token)
	}
}

func (a *Authenticator) verify(token string) (*auth.TokenInfo, error) {
	if a.apiKey == "" {
		return nil, auth.ErrInvalidToken
	}

	// Constant-time comparison to prevent timing attacks.
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.apiKey)) != 1 {
		return nil, auth.ErrInvalidToken
	}

	return &auth.TokenInfo{
		Scopes: []string{"mcp:full"},
	}, nil
}

// ValidateAuthHeader extracts and verifies a Bearer token from an
// Authorization header value.
func (a *Authenticator) ValidateAuthHeader(authHeader string) (*auth.TokenInfo, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, auth.ErrInvalidToken
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return nil, auth.ErrInvalidToken
	}
	return a.verify(token)
}
