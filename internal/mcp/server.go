package mcp

import (
	"log/slog"

	"github.com/localrivet/dbgateway/internal/connector"
	"github.com/localrivet/dbgateway/internal/mcp/tools"
	"github.com/localrivet/dbgateway/internal/metrics"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates a new MCP server with all database tools registered.
func NewServer(manager *connector.Manager, registry *connector.Registry, m *metrics.Metrics, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dbgateway",
		Version: "1.0.0",
	}, nil)

	toolCtx := &tools.ToolContext{
		Manager:  manager,
		Registry: registry,
		Metrics:  m,
		Logger:   logger,
	}

	tools.RegisterDatabaseTools(server, toolCtx)

	return server
}
