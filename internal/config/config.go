// Package config resolves pipeline settings from CIFAR_* environment
// variables and command-line overrides.
package config

import (
	"errors"
	"fmt"

	"github.com/born-ml/cifar/internal/cifar"
	"github.com/born-ml/cifar/internal/fetch"
	"github.com/born-ml/cifar/internal/format"
	"github.com/born-ml/cifar/internal/parallel"
	"github.com/born-ml/cifar/internal/stats"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable, e.g. CIFAR_DATA_DIR.
const EnvPrefix = "CIFAR"

// Config captures the runtime knobs of the pipeline.
type Config struct {
	DataDir        string `envconfig:"DATA_DIR" default:"data"`
	SourceURI      string `envconfig:"SOURCE_URI" default:"https://www.cs.toronto.edu/~kriz/cifar-10-binary.tar.gz"`
	Checksum       string `envconfig:"CHECKSUM" default:"c32a1d4ab5d03f1284b67883e8d87530"`
	Layout         string `envconfig:"LAYOUT" default:"first"`
	OneHot         bool   `envconfig:"ONE_HOT" default:"false"`
	Scale          string `envconfig:"SCALE" default:"none"`
	RecordsPerFile int    `envconfig:"RECORDS_PER_FILE" default:"10000"`
	Workers        int    `envconfig:"WORKERS" default:"1"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	S3Region         string `envconfig:"S3_REGION"`
	S3Endpoint       string `envconfig:"S3_ENDPOINT"`
	S3ForcePathStyle bool   `envconfig:"S3_FORCE_PATH_STYLE"`
	S3Anonymous      bool   `envconfig:"S3_ANONYMOUS"`
	GCSAnonymous     bool   `envconfig:"GCS_ANONYMOUS"`
}

// Overrides captures CLI supplied values. Zero strings and ints and nil
// pointers leave the loaded value untouched.
type Overrides struct {
	DataDir        string
	SourceURI      string
	Checksum       *string
	Layout         string
	OneHot         *bool
	Scale          string
	RecordsPerFile *int
	Workers        int
	LogLevel       string
}

// Load reads the environment and applies defaults. The result is not
// validated; overrides may still replace invalid values.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// Resolve loads the environment, applies o on top and validates the
// merged config.
func Resolve(o Overrides) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	cfg.ApplyOverrides(o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any set override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.SourceURI != "" {
		c.SourceURI = o.SourceURI
	}
	if o.Checksum != nil {
		c.Checksum = *o.Checksum
	}
	if o.Layout != "" {
		c.Layout = o.Layout
	}
	if o.OneHot != nil {
		c.OneHot = *o.OneHot
	}
	if o.Scale != "" {
		c.Scale = o.Scale
	}
	if o.RecordsPerFile != nil {
		c.RecordsPerFile = *o.RecordsPerFile
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.DataDir == "" {
		return errors.New("data_dir must be set")
	}
	if _, err := fetch.ProtocolOf(c.SourceURI); err != nil {
		return fmt.Errorf("source_uri: %w", err)
	}
	if _, err := format.ParseLayout(c.Layout); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if _, err := stats.ParseMode(c.Scale); err != nil {
		return fmt.Errorf("scale: %w", err)
	}
	if c.RecordsPerFile < 0 {
		return fmt.Errorf("records_per_file must be >= 0 (got %d)", c.RecordsPerFile)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", c.Workers)
	}
	return nil
}

// ImageLayout returns the parsed Layout. Call Validate first.
func (c *Config) ImageLayout() format.Layout {
	l, _ := format.ParseLayout(c.Layout)
	return l
}

// ScaleMode returns the parsed scaling mode. Call Validate first.
func (c *Config) ScaleMode() stats.Mode {
	m, _ := stats.ParseMode(c.Scale)
	return m
}

// Parallel returns the worker configuration.
func (c *Config) Parallel() parallel.Config {
	return parallel.WithWorkers(c.Workers)
}

// LoadOptions returns the loader settings.
func (c *Config) LoadOptions() cifar.LoadOptions {
	return cifar.LoadOptions{RecordsPerFile: c.RecordsPerFile}
}

// ProviderOptions returns the cloud provider settings.
func (c *Config) ProviderOptions() fetch.ProviderOptions {
	return fetch.ProviderOptions{
		S3Region:         c.S3Region,
		S3Endpoint:       c.S3Endpoint,
		S3ForcePathStyle: c.S3ForcePathStyle,
		S3Anonymous:      c.S3Anonymous,
		GCSAnonymous:     c.GCSAnonymous,
	}
}
