// Package config provides configuration loading and management for isatab.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/c360studio/isatab/export"
	"gopkg.in/yaml.v3"
)

// Config represents the complete isatab configuration
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Watch   WatchConfig   `yaml:"watch"`
	Metrics MetricsConfig `yaml:"metrics"`
	Publish PublishConfig `yaml:"publish"`
}

// OutputConfig configures the written investigation files
type OutputConfig struct {
	// Dir is the output directory (empty = next to each source document)
	Dir string `yaml:"dir"`
	// Encoding is the character encoding label (default: utf-8)
	Encoding string `yaml:"encoding"`
	// DateLayout is the Go time layout for date attributes (default: 2006-01-02)
	DateLayout string `yaml:"date_layout"`
}

// WatchConfig configures the watch command
type WatchConfig struct {
	// Debounce is how long to wait for more changes before re-exporting
	Debounce time.Duration `yaml:"debounce"`
	// Extensions lists the source document extensions to react to
	Extensions []string `yaml:"extensions"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	// Addr is the listen address of /metrics (empty = disabled)
	Addr string `yaml:"addr"`
}

// PublishConfig configures NATS publishing of written files
type PublishConfig struct {
	// NATSURL is the NATS server URL (empty = publishing disabled)
	NATSURL string `yaml:"nats_url"`
	// Subject is the subject the files are published on
	Subject string `yaml:"subject"`
	// HistoryBucket is the JetStream KV bucket of export records (empty = disabled)
	HistoryBucket string `yaml:"history_bucket"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:        "",
			Encoding:   export.DefaultEncoding,
			DateLayout: export.DefaultDateLayout,
		},
		Watch: WatchConfig{
			Debounce:   500 * time.Millisecond,
			Extensions: []string{".yaml", ".yml"},
		},
		Metrics: MetricsConfig{
			Addr: "", // Disabled
		},
		Publish: PublishConfig{
			NATSURL: "",
			Subject: "isatab.investigations",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Output.Encoding == "" {
		return fmt.Errorf("output.encoding is required")
	}
	if _, err := export.LookupEncoding(c.Output.Encoding); err != nil {
		return fmt.Errorf("output.encoding: %w", err)
	}
	if c.Output.DateLayout == "" {
		return fmt.Errorf("output.date_layout is required")
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive")
	}
	if c.Publish.NATSURL != "" && c.Publish.Subject == "" {
		return fmt.Errorf("publish.subject is required when publish.nats_url is set")
	}
	if c.Publish.HistoryBucket != "" && c.Publish.NATSURL == "" {
		return fmt.Errorf("publish.history_bucket requires publish.nats_url")
	}
	return nil
}

// WriterOptions returns the export options described by the output section.
func (c *Config) WriterOptions() export.Options {
	return export.Options{
		DateLayout: c.Output.DateLayout,
		Encoding:   c.Output.Encoding,
	}
}

// LoadFromFile loads configuration from a YAML file
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

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Marshal encodes the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Output
	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
	if other.Output.Encoding != "" {
		c.Output.Encoding = other.Output.Encoding
	}
	if other.Output.DateLayout != "" {
		c.Output.DateLayout = other.Output.DateLayout
	}

	// Watch
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if len(other.Watch.Extensions) > 0 {
		c.Watch.Extensions = other.Watch.Extensions
	}

	// Metrics
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}

	// Publish
	if other.Publish.NATSURL != "" {
		c.Publish.NATSURL = other.Publish.NATSURL
	}
	if other.Publish.Subject != "" {
		c.Publish.Subject = other.Publish.Subject
	}
	if other.Publish.HistoryBucket != "" {
		c.Publish.HistoryBucket = other.Publish.HistoryBucket
	}
}
