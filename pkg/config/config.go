// Package config holds the run configuration for a reconciliation pass:
// flag values, an optional YAML file merged beneath them, and validation.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config is the complete configuration for one pass.
type Config struct {
	// Apply enables writes; the default is a dry run.
	Apply bool `yaml:"apply"`

	// Bucket restricts the pass to a single bucket.
	Bucket string `yaml:"bucket"`

	// Profile is the AWS shared-config profile to use.
	Profile string `yaml:"profile"`

	// Region overrides the AWS region from the shared config.
	Region string `yaml:"region"`

	// Exclude lists bucket names to leave untouched.
	Exclude []string `yaml:"exclude"`

	// PolicyOnly restricts the pass to the policy dimension.
	PolicyOnly bool `yaml:"policy_only"`

	// LoggingOnly restricts the pass to the logging dimension.
	LoggingOnly bool `yaml:"logging_only"`

	// ShowPolicy prints before/after policy documents for pending changes.
	ShowPolicy bool `yaml:"show_policy"`

	// ShowLogging prints before/after logging configs for pending changes.
	ShowLogging bool `yaml:"show_logging"`

	// Concurrency is the worker pool size.
	Concurrency int `yaml:"concurrency" validate:"min=1,max=16"`

	// History is the path of the SQLite run-history database; empty
	// disables recording.
	History string `yaml:"history"`
}

// Default returns the baseline configuration: dry run, sequential.
func Default() Config {
	return Config{Concurrency: 1}
}

// LoadFile reads a YAML configuration file over the defaults. Unknown keys
// are rejected so typos surface instead of silently applying defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints and flag combinations.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.PolicyOnly && c.LoggingOnly {
		return fmt.Errorf("policy-only and logging-only are mutually exclusive")
	}
	return nil
}
