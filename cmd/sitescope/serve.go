package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescope/internal/assistant"
	"github.com/nao1215/sitescope/internal/config"
	"github.com/nao1215/sitescope/internal/fetch"
	"github.com/nao1215/sitescope/internal/metrics"
	"github.com/nao1215/sitescope/internal/pipeline"
	"github.com/nao1215/sitescope/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and JSON API",
		Long: `Serve starts the HTTP surface:

  GET  /             analysis form
  POST /             analyze the submitted url and render the report
  POST /ask_ai       ask the assistant about a report
  POST /api/analyze  analyze {"url": "..."} and return the report JSON
  GET  /healthz      liveness probe
  GET  /metrics      Prometheus metrics

The assistant needs GEMINI_API_KEY in the environment or the .env file.
Without it the server still starts and /ask_ai answers 503.

Examples:
  sitescope serve
  sitescope serve --addr 0.0.0.0:8080 --rate-limit 2 --rate-burst 10`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addFetchFlags(cmd)

	cmd.Flags().String("addr", config.DefaultListenAddress, "Address to listen on")
	cmd.Flags().Float64("rate-limit", config.DefaultRateLimit,
		"Requests per second per client IP on analysis and assistant endpoints (0 = disabled)")
	cmd.Flags().Int("rate-burst", config.DefaultRateBurst, "Rate limit burst size")
	cmd.Flags().Duration("assistant-timeout", config.DefaultAssistantTimeout,
		"Timeout for each assistant request")
	cmd.Flags().Duration("shutdown-timeout", 30*time.Second, "Graceful shutdown timeout")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	shutdownTimeout, err := cmd.Flags().GetDuration("shutdown-timeout")
	if err != nil {
		return err
	}

	logger := setupLogger(cfg, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	srv, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s (Ctrl+C to stop)\n", cfg.ListenAddress)
	return srv.ListenAndServe(ctx, cfg.ListenAddress, shutdownTimeout)
}

// buildServeConfig creates a Config from cobra command flags.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := applyFetchFlags(cmd, cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if cfg.ListenAddress, err = flags.GetString("addr"); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = flags.GetFloat64("rate-limit"); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = flags.GetInt("rate-burst"); err != nil {
		return nil, err
	}
	if cfg.AssistantTimeout, err = flags.GetDuration("assistant-timeout"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newServer wires the metrics registry, fetcher, orchestrator and
// assistant into a server.
func newServer(cfg *config.Config, logger *slog.Logger) (*server.Server, error) {
	registry := metrics.New()

	fetcher, err := fetch.NewFetcherFromConfig(cfg, logger, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	orchestrator := pipeline.NewOrchestrator(fetcher,
		pipeline.WithOrchestratorLogger(logger),
		pipeline.WithConcurrency(cfg.ResourceConcurrency),
		pipeline.WithRecorder(registry),
	)

	bridge := assistant.NewClientFromConfig(cfg, logger, registry)
	if !bridge.Configured() {
		logger.Warn("GEMINI_API_KEY is not set; the assistant will answer 503")
	}

	return server.NewServer(server.Config{
		Analyzer:  orchestrator,
		Assistant: bridge,
		Metrics:   registry.Handler(),
		Logger:    logger,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	}), nil
}
