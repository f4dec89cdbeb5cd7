package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/Studio/backend/internal/api/http"
	mcpserver "github.com/GriffinCanCode/Studio/backend/internal/api/mcp"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/server"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the schema edit tools over MCP on stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// stdout carries the protocol
		logger, err := logging.New(logging.StdioConfig(cfg.Logging.Level))
		if err != nil {
			return err
		}
		defer logger.Sync()

		metrics := monitoring.NewMetricsWithRegistry(prometheus.NewRegistry())
		core, err := server.NewCore(cmd.Context(), cfg, logger, metrics)
		if err != nil {
			return err
		}
		defer func() {
			if err := core.Close(); err != nil {
				logger.Warn("Close failed", zap.Error(err))
			}
		}()

		srv := mcpserver.New(mcpserver.Deps{
			Workspace: core.Workspace,
			Sessions:  core.Sessions,
			Logger:    logger.Component("mcp"),
			Version:   api.Version,
		})
		return srv.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
