// Package config provides configuration loading and management for spdxld.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/spdxld/vocabulary/spdx"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// OutputFormats are the accepted values of output.formats.
var OutputFormats = []string{"dot", "turtle", "ntriples", "jsonld", "json", "yaml"}

// Config represents the complete spdxld configuration
type Config struct {
	Transform TransformConfig `yaml:"transform"`
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Storage   StorageConfig   `yaml:"storage"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// TransformConfig configures element expansion and compaction
type TransformConfig struct {
	// DefaultProperties is the allow-list of document properties inherited
	// by elements. An empty list disables inheritance.
	DefaultProperties []string `yaml:"default_properties"`
	// Workers bounds the per-element worker pool (1 = sequential)
	Workers int `yaml:"workers"`
}

// InputConfig configures where documents are read from
type InputConfig struct {
	// Dir is the directory scanned by check
	Dir string `yaml:"dir"`
	// Include lists doublestar globs relative to Dir
	Include []string `yaml:"include"`
	// Debounce delays watch-mode rechecks after the last file event
	Debounce time.Duration `yaml:"debounce"`
}

// OutputConfig configures batch output
type OutputConfig struct {
	// Dir receives one file per input document and format
	Dir string `yaml:"dir"`
	// Formats lists the outputs written per document (see OutputFormats)
	Formats []string `yaml:"formats"`
}

// StorageConfig configures the NATS element store and graph ingest
type StorageConfig struct {
	// URL is the NATS server URL (empty = storage disabled)
	URL string `yaml:"url"`
	// Bucket is the JetStream KV bucket holding expanded elements
	Bucket string `yaml:"bucket"`
	// Subject receives graph ingest messages (empty = no publishing)
	Subject string `yaml:"subject"`
}

// MetricsConfig configures metrics export
type MetricsConfig struct {
	// Textfile is written in Prometheus text format after a batch run
	// (empty = disabled)
	Textfile string `yaml:"textfile"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Transform: TransformConfig{
			DefaultProperties: slices.Clone(spdx.DefaultProperties),
			Workers:           1,
		},
		Input: InputConfig{
			Dir:      "data",
			Include:  []string{"**/*.json", "**/*.yaml", "**/*.yml"},
			Debounce: 500 * time.Millisecond,
		},
		Output: OutputConfig{
			Dir:     "out",
			Formats: []string{"dot"},
		},
		Storage: StorageConfig{
			URL:     "", // Disabled
			Bucket:  "SPDX_ELEMENTS",
			Subject: "graph.ingest.element",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Transform.Workers < 1 {
		return fmt.Errorf("%w: transform.workers must be at least 1", ErrInvalidConfig)
	}
	for _, name := range c.Transform.DefaultProperties {
		switch name {
		case "", spdx.PropID, spdx.PropType:
			return fmt.Errorf("%w: transform.default_properties cannot contain %q", ErrInvalidConfig, name)
		}
	}
	if c.Input.Dir == "" {
		return fmt.Errorf("%w: input.dir is required", ErrInvalidConfig)
	}
	if len(c.Input.Include) == 0 {
		return fmt.Errorf("%w: input.include is required", ErrInvalidConfig)
	}
	if c.Input.Debounce < 0 {
		return fmt.Errorf("%w: input.debounce must not be negative", ErrInvalidConfig)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("%w: output.dir is required", ErrInvalidConfig)
	}
	for _, f := range c.Output.Formats {
		if !slices.Contains(OutputFormats, f) {
			return fmt.Errorf("%w: output.formats: unknown format %q", ErrInvalidConfig, f)
		}
	}
	if c.Storage.URL != "" && c.Storage.Bucket == "" {
		return fmt.Errorf("%w: storage.bucket is required when storage.url is set", ErrInvalidConfig)
	}
	return nil
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

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values). A non-nil empty default_properties list overrides.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Transform
	if other.Transform.DefaultProperties != nil {
		c.Transform.DefaultProperties = slices.Clone(other.Transform.DefaultProperties)
	}
	if other.Transform.Workers != 0 {
		c.Transform.Workers = other.Transform.Workers
	}

	// Input
	if other.Input.Dir != "" {
		c.Input.Dir = other.Input.Dir
	}
	if len(other.Input.Include) > 0 {
		c.Input.Include = slices.Clone(other.Input.Include)
	}
	if other.Input.Debounce != 0 {
		c.Input.Debounce = other.Input.Debounce
	}

	// Output
	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
	if len(other.Output.Formats) > 0 {
		c.Output.Formats = slices.Clone(other.Output.Formats)
	}

	// Storage
	if other.Storage.URL != "" {
		c.Storage.URL = other.Storage.URL
	}
	if other.Storage.Bucket != "" {
		c.Storage.Bucket = other.Storage.Bucket
	}
	if other.Storage.Subject != "" {
		c.Storage.Subject = other.Storage.Subject
	}

	// Metrics
	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}
}
