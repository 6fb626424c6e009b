// Package config loads service configuration from a TOML file with
// defaults applied for everything unset. A Config value is passed into
// component constructors; there is no package-level state.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration wraps time.Duration so TOML values like "90s" parse.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all service settings.
type Config struct {
	ListenAddr        string   `toml:"listen_addr"`
	DataDir           string   `toml:"data_dir"`
	ScriptsDir        string   `toml:"scripts_dir"`
	PythonPath        string   `toml:"python_path"`
	SeparationModel   string   `toml:"separation_model"`
	MelodyStride      int      `toml:"melody_stride"`
	SeparationTimeout Duration `toml:"separation_timeout"`
	ExtractionTimeout Duration `toml:"extraction_timeout"`
	LogLevel          string   `toml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		ListenAddr:        ":8080",
		DataDir:           "data",
		ScriptsDir:        "scripts",
		SeparationModel:   "htdemucs",
		MelodyStride:      5,
		SeparationTimeout: Duration(5 * time.Minute),
		ExtractionTimeout: Duration(3 * time.Minute),
		LogLevel:          "info",
	}
}

// Load reads the TOML file at path over the defaults. A missing file is
// not an error: defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr must not be empty")
	}
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.MelodyStride < 1 {
		return fmt.Errorf("melody_stride must be positive, got %d", c.MelodyStride)
	}
	if c.SeparationTimeout <= 0 || c.ExtractionTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	return nil
}

// Directory layout under DataDir.
func (c *Config) UploadsDir() string { return filepath.Join(c.DataDir, "uploads") }
func (c *Config) StemsDir() string   { return filepath.Join(c.DataDir, "stems") }
func (c *Config) WorkDir() string    { return filepath.Join(c.DataDir, "work") }
func (c *Config) DBPath() string     { return filepath.Join(c.DataDir, "chordlens.db") }

// EnsureDirs creates the data directory layout.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.UploadsDir(), c.StemsDir(), c.WorkDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
