// Package config loads wiggles settings: defaults, then the TOML file, then
// WIGGLES_* environment variables. Command-line flags are applied by cmd.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/abhisek/wiggles/internal/llm"
)

// Config is the merged configuration.
type Config struct {
	DB       string         `toml:"db"`
	Catalog  string         `toml:"catalog"` // override file for the builtin games
	Log      LogConfig      `toml:"log"`
	Progress ProgressConfig `toml:"progress"`
	Serve    ServeConfig    `toml:"serve"`
	Notes    NotesConfig    `toml:"notes"`
	LLM      llm.Config     `toml:"llm"`

	// Path is the file the config was read from, empty when none existed.
	Path string `toml:"-"`
}

// LogConfig selects the log sink.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // empty means <data dir>/wiggles.log
}

// ProgressConfig selects the progress service.
type ProgressConfig struct {
	Endpoint string        `toml:"endpoint"` // empty records progress locally
	Timeout  time.Duration `toml:"timeout"`
}

// ServeConfig configures `wiggles serve`.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// NotesConfig configures parent notes.
type NotesConfig struct {
	Enabled bool          `toml:"enabled"`
	Timeout time.Duration `toml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:      LogConfig{Level: "info"},
		Progress: ProgressConfig{Timeout: 10 * time.Second},
		Serve:    ServeConfig{Addr: "127.0.0.1:8089"},
		Notes:    NotesConfig{Enabled: true, Timeout: 20 * time.Second},
		LLM:      llm.DefaultConfig(),
	}
}

// Load reads path (DefaultPath when empty) over the defaults and applies
// the environment. A missing file is not an error; unknown keys are.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	switch _, err := os.Stat(path); {
	case err == nil:
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return Config{}, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
		cfg.Path = path
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("stat config: %w", err)
	}

	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

// ApplyEnv overlays WIGGLES_* variables.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.DB, "WIGGLES_DB")
	set(&c.Catalog, "WIGGLES_CATALOG")
	set(&c.Progress.Endpoint, "WIGGLES_PROGRESS_URL")
	set(&c.Log.Level, "WIGGLES_LOG_LEVEL")
	set(&c.Log.File, "WIGGLES_LOG_FILE")
	set(&c.Serve.Addr, "WIGGLES_SERVE_ADDR")
	c.LLM.ApplyEnv()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Progress.Endpoint != "" {
		u, err := url.Parse(c.Progress.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("progress.endpoint %q is not an http(s) URL", c.Progress.Endpoint)
		}
	}
	if c.Progress.Timeout <= 0 {
		return fmt.Errorf("progress.timeout must be positive")
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("serve.addr is required")
	}
	if c.Notes.Timeout < 0 {
		return fmt.Errorf("notes.timeout must not be negative")
	}
	return c.LLM.Validate()
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}
