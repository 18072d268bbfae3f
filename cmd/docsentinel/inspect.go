package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/c360studio/docsentinel/document"
	"github.com/c360studio/docsentinel/signals"
)

func inspectCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Extract metadata signals without calling any model",
		Long: `Inspect validates the document and prints the deterministic
metadata signal bundle as JSON. No LLM is involved, so the output is
reproducible and free.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0], configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	return cmd
}

func runInspect(path, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	filename := filepath.Base(path)

	validator := document.NewValidator(document.WithMaxFileSize(cfg.Limits.MaxFileSize))
	if result := validator.Validate(data, filename); !result.Valid {
		return fmt.Errorf("document rejected (%s): %s", result.Code, result.Reason)
	}

	bundle := signals.Extract(data, filename)
	sizeKB := float64(len(data)) / 1024.0
	fmt.Println(bundle.Summary(filename, sizeKB, document.HashBytes(data)))

	out, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding signals: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
