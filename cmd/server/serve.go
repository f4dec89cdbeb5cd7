package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/server"
)

var (
	servePort string
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API and session stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != "" {
			cfg.Server.Port = servePort
		}
		if serveHost != "" {
			cfg.Server.Host = serveHost
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		// Handle graceful shutdown
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, err := server.NewServer(ctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to create server", zap.Error(err))
			return err
		}

		runErr := srv.Run(ctx)
		if runErr != nil {
			logger.Error("Server error", zap.Error(runErr))
		} else {
			logger.Info("Shutting down gracefully")
		}
		if err := srv.Close(); err != nil && runErr == nil {
			runErr = err
		}
		return runErr
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Server port (overrides PORT)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Bind address (overrides HOST)")
	rootCmd.AddCommand(serveCmd)

	// serve is also what a bare invocation does
	rootCmd.RunE = serveCmd.RunE
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
}
