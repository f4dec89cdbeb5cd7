package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/logging"
)

var (
	configPath string
	devMode    bool
)

var rootCmd = &cobra.Command{
	Use:           "studio",
	Short:         "Schema-driven UI composition and execution backend",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (defaults to $"+config.FileEnv+")")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Development logging (colored console, debug level)")
}

// loadConfig applies the --config and --dev flags over the usual
// defaults < file < environment precedence
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if devMode {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
}
