package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localrivet/dbgateway/internal/config"
	"github.com/localrivet/dbgateway/internal/connector"
	gatewaymcp "github.com/localrivet/dbgateway/internal/mcp"
	"github.com/localrivet/dbgateway/internal/metrics"
	"github.com/spf13/cobra"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "0.1.0"
	cfgFile string
	envFile string
	logger  *slog.Logger
	cfg     *config.Config
)

func main() {
	// Tool responses own stdout in stdio transport; logs go to stderr.
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	rootCmd := &cobra.Command{
		Use:     "dbgateway",
		Short:   "Uniform introspection-and-query gateway over relational databases",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "dialects" {
				return nil
			}

			var err error
			cfg, err = config.Load(cfgFile, envFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load before reading DBGATEWAY_* variables")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(dialectsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to the configured database and serve MCP requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			registry := connector.NewProductionRegistry()
			manager := connector.NewManager(registry, logger)
			m := metrics.New("dbgateway")

			initScript, err := cfg.InitScript()
			if err != nil {
				return err
			}

			// Connect failures are fatal at startup: print every valid
			// sample DSN for the operator and exit, no retry loop.
			if err := manager.ConnectWithDSN(ctx, cfg.Database.DSN, initScript); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n\nvalid connection string formats:\n", err)
				printSampleDSNs(registry)
				return fmt.Errorf("startup failed")
			}
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				if err := manager.Disconnect(shutdownCtx); err != nil {
					logger.Error("disconnect failed", "error", err)
				}
			}()

			active, _ := manager.Current()
			desc := active.Descriptor()
			m.SetConnected(string(desc.ID), true)
			logger.Info("connected", "dialect", desc.ID, "backend", desc.DisplayName, "read_only", cfg.Database.ReadOnly)

			switch cfg.Server.Transport {
			case "http":
				return serveHTTP(ctx, manager, registry, m)
			default:
				return serveStdio(ctx, manager, registry, m)
			}
		},
	}
}

func serveStdio(ctx context.Context, manager *connector.Manager, registry *connector.Registry, m *metrics.Metrics) error {
	server := gatewaymcp.NewServer(manager, registry, m, logger)

	logger.Info("serving MCP over stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

func serveHTTP(ctx context.Context, manager *connector.Manager, registry *connector.Registry, m *metrics.Metrics) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", gatewaymcp.NewHandler(manager, registry, m, logger))
	mux.HandleFunc("/health", healthHandler(manager))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: mux,
	}

	go func() {
		logger.Info("MCP HTTP server starting", "port", cfg.Server.HTTPPort)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
		}
	}()

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metrics.Handler(),
	}

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	httpServer.Shutdown(shutdownCtx)
	metricsServer.Shutdown(shutdownCtx)

	return nil
}

func dialectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported dialects and their connection string formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			printSampleDSNs(connector.NewProductionRegistry())
			return nil
		},
	}
}

func printSampleDSNs(registry *connector.Registry) {
	samples := registry.SampleDSNs()
	for _, id := range registry.Available() {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", id, samples[id])
	}
}

func healthHandler(manager *connector.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !manager.Connected() {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintln(w, "status: no active connector")
			return
		}
		c, err := manager.Current()
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "status: %v\n", err)
			return
		}
		fmt.Fprintf(w, "status: healthy\ndialect: %s\n", c.Descriptor().ID)
	}
}
