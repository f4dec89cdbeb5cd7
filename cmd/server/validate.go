package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/schema"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/utils"
)

var errInvalid = errors.New("schema is invalid")

var validateCmd = &cobra.Command{
	Use:   "validate [schema.json|schema.yaml]",
	Short: "Check a schema document without applying it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read schema: %w", err)
		}
		if err := utils.ValidateSize(data, utils.MaxSchemaSize); err != nil {
			return err
		}

		app, err := decodeFile(args[0], data)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		invalid := false
		if err := schema.Validate(app); err != nil {
			invalid = true
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(out, "error: %s\n", line)
			}
		}
		for i := range app.Pages {
			for _, flowID := range schema.DanglingFlows(&app.Pages[i]) {
				fmt.Fprintf(out, "warning: page %s references missing flow %q\n", app.Pages[i].ID, flowID)
			}
		}
		if invalid {
			return errInvalid
		}
		fmt.Fprintf(out, "ok: %d pages, %d library entries\n", len(app.Pages), len(app.CustomLibrary))
		return nil
	},
}

// decodeFile picks the codec from the file extension
func decodeFile(path string, data []byte) (*types.AppSchema, error) {
	format, err := codec.ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		format = codec.FormatJSON
	}
	var app types.AppSchema
	if format == codec.FormatJSON {
		err = codec.Parse(data, &app)
	} else {
		err = codec.Decode(format, data, &app)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &app, nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
