// Package config loads the YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir  string       `yaml:"data_dir"`
	MetaFile string       `yaml:"meta_file"`
	Log      LogConfig    `yaml:"log"`
	Cache    CacheConfig  `yaml:"cache"`
	Watch    bool         `yaml:"watch"`
	Server   ServerConfig `yaml:"server"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	SeqURL string `yaml:"seq_url,omitempty"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
}

type ServerConfig struct {
	Addr       string  `yaml:"addr"`
	RatePerSec float64 `yaml:"rate_per_sec"`
}

// Default returns the configuration used when no file is given. Keys missing
// from a file keep these values.
func Default() Config {
	return Config{
		DataDir:  ".",
		MetaFile: "db_meta.json",
		Log:      LogConfig{Level: "warn"},
		Cache:    CacheConfig{Enabled: true},
		Server: ServerConfig{
			Addr:       "localhost:7085",
			RatePerSec: 20,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes data into cfg and validates the result. Unknown keys are errors.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.MetaFile == "" {
		return errors.New("meta_file must not be empty")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Server.RatePerSec < 0 {
		return fmt.Errorf("server.rate_per_sec must not be negative, got %v", c.Server.RatePerSec)
	}
	return nil
}

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
