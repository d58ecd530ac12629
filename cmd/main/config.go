package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/CTAG07/emotegen/pkg/export"
	"github.com/CTAG07/emotegen/pkg/species"
	"github.com/CTAG07/emotegen/pkg/templating"
	"github.com/natefinch/atomic"
)

// GeneratorConfig holds the settings of the generate pipeline.
type GeneratorConfig struct {
	LogLevel        string   `json:"log_level"`
	OutputDir       string   `json:"output_dir"`
	DatabasePath    string   `json:"database_path"`
	Workers         int      `json:"workers"`
	Extensions      []string `json:"extensions"`
	WatchDebounceMs int      `json:"watch_debounce_ms"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Generator *GeneratorConfig           `json:"generator_config"`
	Templates *templating.TemplateConfig `json:"template_config"`
	Export    *export.Config             `json:"export_config"`
}

// DefaultGeneratorConfig creates a generator configuration with default values.
func DefaultGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{
		LogLevel:        "info",
		OutputDir:       "./output",
		DatabasePath:    "./output/emotegen.db?_journal_mode=WAL&_busy_timeout=5000",
		Workers:         4,
		Extensions:      species.DefaultExtensions,
		WatchDebounceMs: 200,
	}
}

// DefaultConfig returns the full configuration with every section defaulted.
func DefaultConfig() *Config {
	return &Config{
		Generator: DefaultGeneratorConfig(),
		Templates: templating.DefaultConfig(),
		Export:    export.DefaultConfig(),
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values. Sections
// missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Generation still works with defaults.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.fillDefaults()
	return config, nil
}

// fillDefaults restores sections that were explicitly nulled in the file.
func (c *Config) fillDefaults() {
	if c.Generator == nil {
		c.Generator = DefaultGeneratorConfig()
	}
	if c.Templates == nil {
		c.Templates = templating.DefaultConfig()
	}
	if c.Export == nil {
		c.Export = export.DefaultConfig()
	}
	if c.Generator.Workers <= 0 {
		c.Generator.Workers = 1
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(level)}))
}
