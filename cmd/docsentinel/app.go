package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/c360studio/docsentinel/audit"
	"github.com/c360studio/docsentinel/config"
	"github.com/c360studio/docsentinel/model"
	"github.com/c360studio/docsentinel/store"
)

// loadConfig applies the layered loader, then an explicit --config file on
// top when given.
func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.NewLoader(slog.Default()).Load()
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		override, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg.Merge(override)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// buildRegistry loads the model registry from the configured path, falling
// back to the built-in defaults.
func buildRegistry(cfg *config.Config) (*model.Registry, error) {
	if cfg.Models.RegistryPath == "" {
		return model.NewDefaultRegistry(), nil
	}
	registry, err := model.LoadFromFile(cfg.Models.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("loading model registry: %w", err)
	}
	return registry, nil
}

// buildSink constructs the configured audit sink. The caller owns Close.
func buildSink(cfg *config.Config) (audit.Sink, error) {
	switch cfg.Audit.Sink {
	case "file":
		return audit.NewFileSink(cfg.Audit.Path)
	case "nats":
		return audit.NewNATSSink(audit.NATSSinkConfig{
			URL:     cfg.Audit.NATSURL,
			Stream:  cfg.Audit.NATSStream,
			Subject: cfg.Audit.NATSSubject,
		})
	default:
		return audit.NewMemorySink(), nil
	}
}

// buildStore connects to the configured object store. Credentials come from
// the environment.
func buildStore(ctx context.Context, cfg *config.Config) (*store.MinIOStore, error) {
	return store.NewMinIOStore(ctx, store.MinIOConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
}
