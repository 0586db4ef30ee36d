package mcp

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/localrivet/dbgateway/internal/connector"
	"github.com/localrivet/dbgateway/internal/mcp/mcpauth"
	"github.com/localrivet/dbgateway/internal/metrics"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler serves MCP over streamable HTTP with Bearer-token
// authentication. The API key comes from DBGATEWAY_MCP_API_KEY; with no
// key configured the endpoint rejects every request rather than running
// open.
type Handler struct {
	manager       *connector.Manager
	registry      *connector.Registry
	metrics       *metrics.Metrics
	logger        *slog.Logger
	authenticator *mcpauth.Authenticator
	httpHandler   http.Handler
}

// NewHandler creates the HTTP-transport MCP handler.
func NewHandler(manager *connector.Manager, registry *connector.Registry, m *metrics.Metrics, logger *slog.Logger) *Handler {
	h := &Handler{
		manager:       manager,
		registry:      registry,
		metrics:       m,
		logger:        logger,
		authenticator: mcpauth.NewAuthenticator(),
	}

	if !h.authenticator.Enabled() {
		logger.Warn("DBGATEWAY_MCP_API_KEY not set - MCP endpoint will reject all requests")
	}

	streamHandler := mcp.NewStreamableHTTPHandler(
		h.getServerForRequest,
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	h.httpHandler = h.authMiddleware(streamHandler)

	return h
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.logger.Debug("MCP request",
			"method", r.Method,
			"path", r.URL.Path,
			"session", r.Header.Get("Mcp-Session-Id"),
		)

		if !h.authenticator.Enabled() {
			http.Error(w, "MCP endpoint not configured", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			h.writeUnauthorized(w)
			return
		}

		if _, err := h.authenticator.ValidateAuthHeader(authHeader); err != nil {
			h.writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer scope="mcp:full"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// getServerForRequest creates a new MCP server per request; the server
// is cheap, the connector manager behind it is shared.
func (h *Handler) getServerForRequest(r *http.Request) *mcp.Server {
	return NewServer(h.manager, h.registry, h.metrics, h.logger)
}

// ServeHTTP handles all MCP HTTP requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.httpHandler.ServeHTTP(w, r)
}

// Enabled returns true if MCP is configured (API key is set).
func (h *Handler) Enabled() bool {
	return h.authenticator.Enabled()
}
