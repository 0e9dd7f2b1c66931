package servecmder

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/triage/cmd/triage/routes"
	"github.com/papercomputeco/triage/pkg/config"
	"github.com/papercomputeco/triage/pkg/logger"
	"github.com/papercomputeco/triage/server"
)

const serveLongDesc string = `Run the triage HTTP server.

Credentials are read from the environment:
  AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_KEY, AZURE_OPENAI_DEPLOYMENT
  AZURE_OPENAI_VERSION (optional)

Endpoints:
  GET  /health
  GET  /v1/agents
  POST /v1/agents/triage
  POST /v1/agents/sample

Examples:
  triage serve
  triage serve --listen 127.0.0.1:9000 --config triage.toml --debug`

const serveShortDesc string = "Run the triage HTTP server"

type serveCommander struct {
	configPath string
	listen     string
	debug      bool
	enableMCP  bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmder.loadConfig(cmd)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", cfg.Server.Listen)
			if err != nil {
				return fmt.Errorf("could not listen on %s: %w", cfg.Server.Listen, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return cmder.run(ctx, cfg, ln)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to a TOML config file")
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (overrides config)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&cmder.enableMCP, "mcp", false, "Serve the Model Context Protocol endpoint at /mcp")

	return cmd
}

func (c *serveCommander) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("listen") {
		cfg.Server.Listen = c.listen
	}
	if c.debug {
		cfg.Log.Debug = true
	}
	if c.enableMCP {
		cfg.Server.EnableMCP = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run serves on ln until ctx is done, then shuts down gracefully.
func (c *serveCommander) run(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	log := logger.NewLogger(cfg.Log.Debug)
	defer log.Sync()

	log.Info("triage server starting",
		zap.String("listen", ln.Addr().String()),
		zap.String("deployment", cfg.AzureOpenAI.Deployment),
		zap.Bool("mcp", cfg.Server.EnableMCP),
		zap.Bool("debug", cfg.Log.Debug),
	)

	agentRoutes, err := routes.Build(cfg, log)
	if err != nil {
		ln.Close()
		return err
	}

	srv, err := server.New(server.Config{
		ListenAddr:      ln.Addr().String(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		BodyLimit:       cfg.Server.BodyLimit,
		EnableMCP:       cfg.Server.EnableMCP,
	}, agentRoutes, log)
	if err != nil {
		ln.Close()
		return fmt.Errorf("could not create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}
