package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/docsentinel/retention"
	"github.com/c360studio/docsentinel/store"
)

func sweepCmd() *cobra.Command {
	var (
		configPath string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete stored objects past their retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(configPath, dryRun)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List what would be deleted without deleting")

	return cmd
}

func runSweep(configPath string, dryRun bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	objects, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}

	policy := cfg.Retention.Policy()
	now := time.Now().UTC()

	if dryRun {
		return printSweepPlan(ctx, objects, policy, now)
	}

	sink, err := buildSink(cfg)
	if err != nil {
		return fmt.Errorf("opening audit sink: %w", err)
	}
	defer sink.Close()

	sweeper := store.NewSweeper(objects, policy, sink, slog.Default())
	result, err := sweeper.Sweep(ctx, now)
	if err != nil {
		return err
	}

	fmt.Printf("deleted %d uploads, %d analyses (%d errors)\n",
		result.UploadsDeleted, result.AnalysesDeleted, result.Errors)
	return nil
}

func printSweepPlan(ctx context.Context, objects store.ObjectStore, policy retention.Policy, now time.Time) error {
	uploads, err := objects.List(ctx, store.UploadPrefix)
	if err != nil {
		return err
	}
	for _, obj := range uploads {
		if policy.UploadExpired(obj.StoredAt, now) {
			fmt.Printf("would delete %s (stored %s)\n", obj.Key, obj.StoredAt.Format(time.RFC3339))
		}
	}

	analyses, err := objects.List(ctx, store.AnalysisPrefix)
	if err != nil {
		return err
	}
	for _, obj := range analyses {
		if policy.AnalysisExpired(obj.StoredAt, now) {
			fmt.Printf("would delete %s (stored %s)\n", obj.Key, obj.StoredAt.Format(time.RFC3339))
		}
	}
	return nil
}
