package tools

import (
	"log/slog"

	"github.com/localrivet/dbgateway/internal/connector"
	"github.com/localrivet/dbgateway/internal/metrics"
)

// ToolContext carries the shared dependencies for all MCP tools. The
// connector manager is handed in explicitly; tools never reach for
// ambient state.
type ToolContext struct {
	Manager  *connector.Manager
	Registry *connector.Registry
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}
