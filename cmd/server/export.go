package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/schema"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/storage"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the stored schema as JSON or YAML",
	Long:  "Print the stored schema as JSON or YAML. An empty store exports the built-in default document.",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := codec.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := storage.Open(cfg.StorageConfig())
		if err != nil {
			return err
		}
		repo := storage.NewRepository(store, cfg.Storage.Compress, logging.NewNop().Logger, nil)
		defer repo.Close()

		app, err := repo.Load(cmd.Context())
		if errors.Is(err, storage.ErrNotFound) {
			app, err = schema.Default(), nil
		}
		if err != nil {
			return fmt.Errorf("load schema: %w", err)
		}
		data, err := codec.Encode(format, app)
		if err != nil {
			return err
		}

		if exportOutput == "" || exportOutput == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		return os.WriteFile(exportOutput, data, 0o644)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json or yaml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
