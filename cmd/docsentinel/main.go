// Package main provides the docsentinel binary entry point.
// DocSentinel analyzes financial documents for authenticity and fraud risk
// using deterministic metadata signals and an LLM reasoning loop.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	// Register LLM providers via init()
	_ "github.com/c360studio/docsentinel/llm/providers"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "docsentinel"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	// Optional .env for API keys and storage credentials.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Financial document fraud analysis",
		Long: `DocSentinel assesses whether submitted financial documents (bank
statements, tax returns, pay stubs, investment statements) are authentic
or altered.

It combines:
- Deterministic metadata and image forensics signals
- An LLM reasoning loop with evidence tools
- Content-hash audit logging and retention sweeping`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(analyzeCmd())
	cmd.AddCommand(inspectCmd())
	cmd.AddCommand(sweepCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
