// Package config loads the replay tool configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/reallyoldfogie/mp-replay-go/replay"
)

// Config holds the settings shared by the CLI commands.
type Config struct {
	ReplaysDir       string        `yaml:"replays_dir"`
	CompressionLevel int           `yaml:"compression_level"`
	InfoFormat       replay.Format `yaml:"info_format"`
	StrictVersions   bool          `yaml:"strict_versions"`
	LogLevel         string        `yaml:"log_level"`
	LogFormat        string        `yaml:"log_format"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		ReplaysDir:       DefaultDir(),
		CompressionLevel: replay.DefaultCompressionLevel,
		InfoFormat:       replay.FormatJSON,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// DefaultDir returns ~/.mpreplay/replays.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".mpreplay", "replays")
	}
	return filepath.Join(home, ".mpreplay", "replays")
}

// DefaultPath returns the config file location: $MPREPLAY_CONFIG or
// ~/.mpreplay/config.yaml.
func DefaultPath() string {
	if p := os.Getenv("MPREPLAY_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".mpreplay", "config.yaml")
	}
	return filepath.Join(home, ".mpreplay", "config.yaml")
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads path. A missing file yields the defaults. MPREPLAY_DIR
// overrides the replays directory.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if cfg, err = Parse(data); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if dir := os.Getenv("MPREPLAY_DIR"); dir != "" {
		cfg.ReplaysDir = dir
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.ReplaysDir == "" {
		return errors.New("replays_dir must not be empty")
	}
	// flate: -2 (Huffman only) .. 9 (best compression).
	if c.CompressionLevel < -2 || c.CompressionLevel > 9 {
		return fmt.Errorf("compression_level %d out of range [-2, 9]", c.CompressionLevel)
	}
	if _, err := replay.ParseFormat(string(c.InfoFormat)); err != nil {
		return err
	}
	return nil
}

// ReplayOptions converts the config into replay options.
func (c Config) ReplayOptions() []replay.Option {
	f, _ := replay.ParseFormat(string(c.InfoFormat))
	return []replay.Option{replay.WithCompression(c.CompressionLevel), replay.WithFormat(f)}
}
