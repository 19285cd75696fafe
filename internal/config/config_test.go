package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"WIGGLES_DB", "WIGGLES_CATALOG", "WIGGLES_PROGRESS_URL", "WIGGLES_LOG_LEVEL",
		"WIGGLES_LOG_FILE", "WIGGLES_SERVE_ADDR", "WIGGLES_CONFIG",
		"WIGGLES_LLM_PROVIDER", "WIGGLES_LLM_MODEL", "WIGGLES_LLM_API_KEY", "WIGGLES_LLM_BASE_URL",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func write(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want, cfg)
	assert.False(t, cfg.LLM.Enabled())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	p := write(t, `
db = "/tmp/kids.db"

[log]
level = "debug"

[progress]
endpoint = "http://clinic.local:8089"
timeout = "3s"

[notes]
enabled = false

[llm]
provider = "mock"
`)
	t.Setenv("WIGGLES_SERVE_ADDR", ":9000")
	t.Setenv("WIGGLES_DB", "/tmp/override.db")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, p, cfg.Path)
	assert.Equal(t, "/tmp/override.db", cfg.DB)
	assert.Equal(t, "http://clinic.local:8089", cfg.Progress.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.Progress.Timeout)
	assert.Equal(t, ":9000", cfg.Serve.Addr)
	assert.False(t, cfg.Notes.Enabled)
	assert.Equal(t, "mock", cfg.LLM.Provider)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "colour = \"blue\"\n"},
		{"bad toml", "db = \n"},
		{"bad level", "[log]\nlevel = \"loud\"\n"},
		{"bad endpoint", "[progress]\nendpoint = \"ftp://x\"\n"},
		{"zero timeout", "[progress]\ntimeout = \"0s\"\n"},
		{"unknown provider", "[llm]\nprovider = \"llama\"\n"},
		{"provider without key", "[llm]\nprovider = \"anthropic\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(write(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	assert.Equal(t, filepath.Join("/cfg", "wiggles", "config.toml"), DefaultPath())

	t.Setenv("WIGGLES_CONFIG", "/elsewhere.toml")
	assert.Equal(t, "/elsewhere.toml", DefaultPath())
}
