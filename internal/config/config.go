// Package config loads engine configuration. Precedence, lowest to
// highest: compiled defaults, an optional TOML file, INKWELL_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Validation errors.
var (
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrInvalidDebounce = errors.New("invalid debounce delay")
	ErrNoModelBinary   = errors.New("model binary name is empty")
)

// Config is the root configuration.
type Config struct {
	Log       Log       `toml:"log"`
	Workspace Workspace `toml:"workspace"`
	Queue     Queue     `toml:"queue"`
	Watcher   Watcher   `toml:"watcher"`
	Settings  Settings  `toml:"settings"`
	Model     Model     `toml:"model"`
}

// Log configures the logger.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// File receives log output; empty logs to stderr.
	File string `toml:"file"`
}

// Workspace configures listings.
type Workspace struct {
	// Ignore adds doublestar globs to the built-in ignore set.
	Ignore []string `toml:"ignore"`
}

// Queue configures the ingestion queue.
type Queue struct {
	// Autostart launches the consumer at boot. The queue.start action
	// remains available (and idempotent) either way.
	Autostart bool `toml:"autostart"`
}

// Watcher configures the document watcher.
type Watcher struct {
	Enabled    bool `toml:"enabled"`
	DebounceMS int  `toml:"debounce_ms"`
}

// DebounceDelay returns the debounce window as a duration.
func (w Watcher) DebounceDelay() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// Settings configures the settings store.
type Settings struct {
	// Path overrides the default settings.json location.
	Path string `toml:"path"`
}

// Model configures the model runner.
type Model struct {
	// Provider is the default provider name.
	Provider string `toml:"provider"`
	// Default is the model used when a request names none.
	Default string `toml:"default"`
	// Binary is the CLI binary looked up on PATH.
	Binary string `toml:"binary"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Log:     Log{Level: "info"},
		Queue:   Queue{Autostart: true},
		Watcher: Watcher{Enabled: true, DebounceMS: 100},
		Model:   Model{Provider: "ollama", Binary: "ollama"},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "inkwell", "config.toml"), nil
}

// Load builds the configuration from defaults, the TOML file at path
// (the conventional location when path is empty; a missing file is not
// an error), and environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults apply.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values, returning the first violation.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	if c.Watcher.DebounceMS < 0 {
		return fmt.Errorf("%w: %d ms", ErrInvalidDebounce, c.Watcher.DebounceMS)
	}
	if c.Model.Binary == "" {
		return ErrNoModelBinary
	}
	return nil
}

// applyEnv overlays INKWELL_* variables. A set-but-empty variable
// counts as a value.
func (c *Config) applyEnv() error {
	envString("INKWELL_LOG_LEVEL", &c.Log.Level)
	envString("INKWELL_LOG_FILE", &c.Log.File)
	envString("INKWELL_SETTINGS_PATH", &c.Settings.Path)
	envString("INKWELL_MODEL_PROVIDER", &c.Model.Provider)
	envString("INKWELL_MODEL_DEFAULT", &c.Model.Default)
	envString("INKWELL_MODEL_BINARY", &c.Model.Binary)

	if err := envBool("INKWELL_QUEUE_AUTOSTART", &c.Queue.Autostart); err != nil {
		return err
	}
	if err := envBool("INKWELL_WATCHER_ENABLED", &c.Watcher.Enabled); err != nil {
		return err
	}
	return envInt("INKWELL_WATCHER_DEBOUNCE_MS", &c.Watcher.DebounceMS)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	*dst = parsed
	return nil
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	*dst = parsed
	return nil
}
