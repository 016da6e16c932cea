// Package config loads the ptrnet YAML configuration.
//
// A config file only needs the fields it changes; everything else keeps
// the value from Default:
//
//	hidden_size: 64
//	bidirectional: false
//	exclude_visited: true
//	log_level: debug
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/ptrnet/internal/logger"
	"github.com/born-ml/ptrnet/internal/pointer"
)

// Config is the ptrnet configuration file.
type Config struct {
	InputDim       int   `yaml:"input_dim"`
	EmbeddingDim   int   `yaml:"embedding_dim"`
	HiddenSize     int   `yaml:"hidden_size"`
	NumLayers      int   `yaml:"num_layers"`
	Bidirectional  bool  `yaml:"bidirectional"`
	BatchFirst     bool  `yaml:"batch_first"`
	ExcludeVisited bool  `yaml:"exclude_visited"`
	Seed           int64 `yaml:"seed"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	m := pointer.DefaultConfig()
	return Config{
		InputDim:       m.InputDim,
		EmbeddingDim:   m.EmbeddingDim,
		HiddenSize:     m.HiddenSize,
		NumLayers:      m.NumLayers,
		Bidirectional:  m.Bidirectional,
		BatchFirst:     m.BatchFirst,
		ExcludeVisited: m.ExcludeVisited,
		Seed:           m.Seed,
		LogLevel:       "info",
		LogFormat:      string(logger.FormatText),
	}
}

// Load reads a YAML file over Default and validates the result.
// An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects non-positive dimensions and unknown log settings.
func (c Config) Validate() error {
	var errs []error
	if err := c.Model().Validate(); err != nil {
		errs = append(errs, err)
	}
	switch logger.Format(c.LogFormat) {
	case logger.FormatText, logger.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// Model returns the model hyperparameters.
func (c Config) Model() pointer.Config {
	return pointer.Config{
		InputDim:       c.InputDim,
		EmbeddingDim:   c.EmbeddingDim,
		HiddenSize:     c.HiddenSize,
		NumLayers:      c.NumLayers,
		Bidirectional:  c.Bidirectional,
		BatchFirst:     c.BatchFirst,
		ExcludeVisited: c.ExcludeVisited,
		Seed:           c.Seed,
	}
}
