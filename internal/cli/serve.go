package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harun/tanya/internal/config"
	"github.com/harun/tanya/internal/logger"
	"github.com/harun/tanya/internal/metrics"
	"github.com/harun/tanya/pkg/agent"
	"github.com/harun/tanya/pkg/handler"
	"github.com/harun/tanya/pkg/memory"
	"github.com/harun/tanya/pkg/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the invocation server",
	Long: `Start the HTTP invocation server. Requests are accepted on
POST /invocations; health on GET /ping; Prometheus metrics on
GET /metrics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	log, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   true,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Close()
	zl := log.GetZerolog()

	zl.Info().
		Str("tenant", cfg.Tenant.ID).
		Str("environment", cfg.Tenant.Environment).
		Str("model", cfg.Model.ID).
		Msg("Starting Tanya")

	m := metrics.NewMetrics()

	registry := tools.NewRegistry(zl)
	if err := tools.RegisterBuiltins(registry, cfg, zl); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	prompts, err := agent.NewPromptStore(cfg.SystemPromptFile, zl)
	if err != nil {
		return fmt.Errorf("failed to load system prompt: %w", err)
	}
	if err := prompts.Watch(); err != nil {
		return fmt.Errorf("failed to watch system prompt: %w", err)
	}
	defer prompts.Close()

	// Memory capability is resolved once here; the probe keeps the
	// flag fresh while serving.
	var memClient *memory.Client
	if cfg.Memory.MemoryID != "" {
		memClient = memory.NewClient(cfg.Memory.Endpoint, cfg.Tenant.Region, zl)
		probe := memory.NewProbe(memClient, cfg, m, zl)
		if probe.Refresh(cmd.Context()) {
			zl.Info().Str("memory_id", cfg.Memory.MemoryID).Msg("Memory service available")
		} else {
			zl.Warn().Msg("Memory service unavailable, continuing without session memory")
		}
		if err := probe.Start(); err != nil {
			return fmt.Errorf("failed to start memory probe: %w", err)
		}
		defer probe.Stop()
	}

	factory, err := agent.NewFactory(agent.FactoryConfig{
		Config:       cfg,
		Registry:     registry,
		Prompts:      prompts,
		MemoryClient: memClient,
		Metrics:      m,
		Logger:       zl,
	})
	if err != nil {
		return fmt.Errorf("failed to create agent factory: %w", err)
	}

	h := handler.New(handler.NewAgentFactory(factory), m, zl)

	server, err := handler.NewServer(handler.ServerOptions{
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		RateLimitPerSecond: cfg.Server.RateLimitPerSecond,
	}, h, m, zl)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		zl.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		return server.Stop()
	case <-cmd.Context().Done():
		return server.Stop()
	}
}
