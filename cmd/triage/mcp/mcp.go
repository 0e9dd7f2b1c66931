package mcpcmder

import (
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/triage/cmd/triage/routes"
	"github.com/papercomputeco/triage/pkg/config"
	"github.com/papercomputeco/triage/pkg/logger"
	"github.com/papercomputeco/triage/server"
)

const mcpLongDesc string = `Serve the triage agents as Model Context Protocol tools over stdio.

Each agent becomes a tool taking a message and an optional conversation id.
Logs go to stderr; stdout carries the protocol.

Examples:
  triage mcp
  triage mcp --config triage.toml`

const mcpShortDesc string = "Serve the agents as MCP tools over stdio"

type mcpCommander struct {
	configPath string
	debug      bool
}

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmder.configPath)
			if err != nil {
				return err
			}

			log := logger.NewStderrLogger(cmder.debug || cfg.Log.Debug)
			defer log.Sync()

			agentRoutes, err := routes.Build(cfg, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info("serving mcp over stdio", zap.Int("tools", len(agentRoutes)))
			return server.NewMCPServer(agentRoutes, log).Run(ctx, &mcp.StdioTransport{})
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to a TOML config file")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}
