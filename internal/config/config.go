// Package config loads the tool configuration from a YAML file and applies
// defaults. Every field is optional; a missing config file yields the
// defaults unchanged.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full tool configuration.
type Config struct {
	Generation  GenerationConfig  `yaml:"generation"`
	Split       SplitConfig       `yaml:"split"`
	Attachments AttachmentsConfig `yaml:"attachments"`
	History     HistoryConfig     `yaml:"history"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// GenerationConfig controls the generation pipeline and the thresholds at
// which a request is pushed to the background worker.
type GenerationConfig struct {
	RowThreshold  int `yaml:"row_threshold"`  // rows at which generation goes background (default: 500)
	ByteThreshold int `yaml:"byte_threshold"` // SQL bytes at which splitting goes background (default: 1 MiB)
}

// SplitConfig holds the default chunking limits for the split command.
type SplitConfig struct {
	Mode      string `yaml:"mode"`       // "size" or "count" (default: size)
	SizeLimit int    `yaml:"size_limit"` // bytes per chunk when mode is size (default: 100000)
	MaxCount  int    `yaml:"max_count"`  // statements per chunk when mode is count (default: 500)
}

// AttachmentsConfig points at the directory searched for attachment files
// referenced by cell values.
type AttachmentsConfig struct {
	Dir string `yaml:"dir"`
}

// HistoryConfig configures the local run-history database.
type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: ~/.quickquery/history.db
}

// LoggingConfig mirrors the logging package settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: info)
	Format string `yaml:"format"` // text or json (default: text)
}

// HistoryEnabled reports whether run history should be recorded.
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// Load reads the config file at path and applies defaults. An empty path
// or a missing file returns the defaults without error; a present but
// malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Generation.RowThreshold <= 0 {
		c.Generation.RowThreshold = 500
	}
	if c.Generation.ByteThreshold <= 0 {
		c.Generation.ByteThreshold = 1 << 20
	}
	if c.Split.Mode == "" {
		c.Split.Mode = "size"
	}
	if c.Split.SizeLimit <= 0 {
		c.Split.SizeLimit = 100_000
	}
	if c.Split.MaxCount <= 0 {
		c.Split.MaxCount = 500
	}
	if c.History.Path == "" {
		c.History.Path = defaultHistoryPath()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func (c *Config) validate() error {
	switch c.Split.Mode {
	case "size", "count":
	default:
		return fmt.Errorf("split.mode must be \"size\" or \"count\", got %q", c.Split.Mode)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	if c.Attachments.Dir != "" {
		info, err := os.Stat(c.Attachments.Dir)
		if err != nil {
			return fmt.Errorf("attachments.dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("attachments.dir %q is not a directory", c.Attachments.Dir)
		}
	}
	return nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "quickquery-history.db"
	}
	return filepath.Join(home, ".quickquery", "history.db")
}
