// Package config provides configuration loading and management for
// DocSentinel.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/docsentinel/document"
	"github.com/c360studio/docsentinel/retention"
)

// Config represents the complete DocSentinel configuration.
type Config struct {
	Limits    LimitsConfig    `yaml:"limits"`
	Agent     AgentConfig     `yaml:"agent"`
	Models    ModelsConfig    `yaml:"models"`
	Audit     AuditConfig     `yaml:"audit"`
	Retention RetentionConfig `yaml:"retention"`
	Storage   StorageConfig   `yaml:"storage"`
}

// LimitsConfig bounds accepted documents.
type LimitsConfig struct {
	// MaxFileSize is the largest accepted document in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`
}

// AgentConfig configures the analysis reasoning loop.
type AgentConfig struct {
	// MaxIterations bounds the reasoning loop.
	MaxIterations int `yaml:"max_iterations"`
	// Temperature controls sampling randomness (0.0-1.0).
	Temperature float64 `yaml:"temperature"`
	// Timeout is the maximum wall time for one analysis.
	Timeout time.Duration `yaml:"timeout"`
}

// ModelsConfig configures the model registry.
type ModelsConfig struct {
	// RegistryPath points to a JSON model registry file. Empty uses the
	// built-in defaults.
	RegistryPath string `yaml:"registry_path"`
}

// AuditConfig selects and configures the audit sink.
type AuditConfig struct {
	// Sink is one of "file", "nats", or "none".
	Sink string `yaml:"sink"`
	// Path is the audit log file for the file sink.
	Path string `yaml:"path"`
	// NATSURL is the server URL for the nats sink.
	NATSURL string `yaml:"nats_url"`
	// NATSStream is the JetStream stream name for the nats sink.
	NATSStream string `yaml:"nats_stream"`
	// NATSSubject is the publish subject for the nats sink.
	NATSSubject string `yaml:"nats_subject"`
}

// RetentionConfig overrides the data lifecycle policy.
type RetentionConfig struct {
	UploadTTL   time.Duration `yaml:"upload_ttl"`
	AnalysisTTL time.Duration `yaml:"analysis_ttl"`
}

// Policy converts the config to a retention policy.
func (r RetentionConfig) Policy() retention.Policy {
	return retention.Policy{UploadTTL: r.UploadTTL, AnalysisTTL: r.AnalysisTTL}
}

// StorageConfig configures the object store. Credentials come from the
// environment, never from config files.
type StorageConfig struct {
	Endpoint string `yaml:"endpoint"`
	Bucket   string `yaml:"bucket"`
	UseSSL   bool   `yaml:"use_ssl"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			MaxFileSize: document.DefaultMaxFileSize,
		},
		Agent: AgentConfig{
			MaxIterations: 5,
			Temperature:   0.2,
			Timeout:       5 * time.Minute,
		},
		Models: ModelsConfig{
			RegistryPath: "",
		},
		Audit: AuditConfig{
			Sink:        "file",
			Path:        "audit.jsonl",
			NATSURL:     "nats://localhost:4222",
			NATSStream:  "DOCSENTINEL_AUDIT",
			NATSSubject: "docsentinel.audit.events",
		},
		Retention: RetentionConfig{
			UploadTTL:   retention.DefaultUploadTTL,
			AnalysisTTL: retention.DefaultAnalysisTTL,
		},
		Storage: StorageConfig{
			Endpoint: "localhost:9000",
			Bucket:   "docsentinel",
			UseSSL:   false,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Limits.MaxFileSize <= 0 {
		return fmt.Errorf("limits.max_file_size must be positive")
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive")
	}
	if c.Agent.Temperature < 0 || c.Agent.Temperature > 1 {
		return fmt.Errorf("agent.temperature must be between 0 and 1")
	}
	switch c.Audit.Sink {
	case "file", "nats", "none":
	default:
		return fmt.Errorf("audit.sink must be one of file, nats, none; got %q", c.Audit.Sink)
	}
	if c.Audit.Sink == "file" && c.Audit.Path == "" {
		return fmt.Errorf("audit.path is required for the file sink")
	}
	if c.Audit.Sink == "nats" && c.Audit.NATSURL == "" {
		return fmt.Errorf("audit.nats_url is required for the nats sink")
	}
	if err := c.Retention.Policy().Validate(); err != nil {
		return fmt.Errorf("retention: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Limits.MaxFileSize != 0 {
		c.Limits.MaxFileSize = other.Limits.MaxFileSize
	}

	if other.Agent.MaxIterations != 0 {
		c.Agent.MaxIterations = other.Agent.MaxIterations
	}
	if other.Agent.Temperature != 0 {
		c.Agent.Temperature = other.Agent.Temperature
	}
	if other.Agent.Timeout != 0 {
		c.Agent.Timeout = other.Agent.Timeout
	}

	if other.Models.RegistryPath != "" {
		c.Models.RegistryPath = other.Models.RegistryPath
	}

	if other.Audit.Sink != "" {
		c.Audit.Sink = other.Audit.Sink
	}
	if other.Audit.Path != "" {
		c.Audit.Path = other.Audit.Path
	}
	if other.Audit.NATSURL != "" {
		c.Audit.NATSURL = other.Audit.NATSURL
	}
	if other.Audit.NATSStream != "" {
		c.Audit.NATSStream = other.Audit.NATSStream
	}
	if other.Audit.NATSSubject != "" {
		c.Audit.NATSSubject = other.Audit.NATSSubject
	}

	if other.Retention.UploadTTL != 0 {
		c.Retention.UploadTTL = other.Retention.UploadTTL
	}
	if other.Retention.AnalysisTTL != 0 {
		c.Retention.AnalysisTTL = other.Retention.AnalysisTTL
	}

	if other.Storage.Endpoint != "" {
		c.Storage.Endpoint = other.Storage.Endpoint
	}
	if other.Storage.Bucket != "" {
		c.Storage.Bucket = other.Storage.Bucket
	}
	if other.Storage.UseSSL {
		c.Storage.UseSSL = true
	}
}
