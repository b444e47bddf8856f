package platform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the optional configuration file.
const ConfigFileName = "biji.yaml"

// Config is the file configuration of the biji CLI.
//
//	database: ~/notes/biji.db
//	debounce: 1s
//	log_level: debug
type Config struct {
	Database  string        `yaml:"database"`
	Debounce  time.Duration `yaml:"debounce"`
	LogLevel  string        `yaml:"log_level"`
	ReadOnly  bool          `yaml:"read_only"`
	DevSafety *bool         `yaml:"dev_safety"`
}

// LoadConfig reads and validates a YAML configuration file.
// Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Debounce < 0 {
		return cfg, fmt.Errorf("invalid config %s: debounce must not be negative", path)
	}
	if _, err := cfg.Level(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Level parses LogLevel. An empty level is Info.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(c.LogLevel) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// Options converts the file configuration into functional options.
func (c Config) Options() []Option {
	var opts []Option
	if c.Debounce > 0 {
		opts = append(opts, WithDebounce(c.Debounce))
	}
	if c.ReadOnly {
		opts = append(opts, WithReadOnly(true))
	}
	if c.DevSafety != nil {
		opts = append(opts, WithDevSafety(*c.DevSafety))
	}
	return opts
}
