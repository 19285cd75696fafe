package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderMock       = "mock"
)

// DefaultModels are used when Config.Model is empty.
var DefaultModels = map[string]string{
	ProviderAnthropic:  "claude-haiku-4-5",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderOpenRouter: "openai/gpt-4o-mini",
	ProviderGemini:     "gemini-2.0-flash",
	ProviderMock:       "mock",
}

// keyVars are the conventional API key variables, in discovery order.
var keyVars = []struct{ provider, env string }{
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER_API_KEY"},
}

// Config selects and configures one provider.
type Config struct {
	Provider string        `toml:"provider"`
	Model    string        `toml:"model"`
	APIKey   string        `toml:"api_key"`
	BaseURL  string        `toml:"base_url"`
	Timeout  time.Duration `toml:"timeout"`
	Retry    RetryConfig   `toml:"retry"`
}

// RetryConfig controls WithRetry.
type RetryConfig struct {
	MaxAttempts int           `toml:"max_attempts"`
	InitialWait time.Duration `toml:"initial_wait"`
	MaxWait     time.Duration `toml:"max_wait"`
	Multiplier  float64       `toml:"multiplier"`
}

// DefaultConfig has no provider; notes fall back to templates until one is
// configured.
func DefaultConfig() Config {
	return Config{
		Timeout: 20 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
	}
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != ""
}

// ApplyEnv overlays WIGGLES_LLM_* variables. When no provider is set
// either way, the first conventional API key found selects one.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("WIGGLES_LLM_PROVIDER"); v != "" {
		c.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("WIGGLES_LLM_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("WIGGLES_LLM_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("WIGGLES_LLM_API_KEY"); v != "" {
		c.APIKey = v
	}
	if c.Provider == "" {
		if p, key := Discover(); p != "" {
			c.Provider = p
			if c.APIKey == "" {
				c.APIKey = key
			}
		}
	}
	if c.Provider != "" && c.APIKey == "" {
		c.APIKey = os.Getenv(keyVar(c.Provider))
	}
}

// Discover returns the first provider whose conventional key variable is
// set, with that key.
func Discover() (provider, apiKey string) {
	for _, kv := range keyVars {
		if v := os.Getenv(kv.env); v != "" {
			return kv.provider, v
		}
	}
	return "", ""
}

func keyVar(provider string) string {
	for _, kv := range keyVars {
		if kv.provider == provider {
			return kv.env
		}
	}
	return ""
}

// Validate reports configuration errors. A disabled config is valid.
func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if _, ok := DefaultModels[c.Provider]; !ok {
		return fmt.Errorf("llm: unknown provider %q", c.Provider)
	}
	if c.Provider != ProviderMock && c.APIKey == "" {
		return fmt.Errorf("llm: provider %s needs an API key (set %s or WIGGLES_LLM_API_KEY)", c.Provider, keyVar(c.Provider))
	}
	if c.Timeout < 0 {
		return fmt.Errorf("llm: timeout must not be negative")
	}
	if c.Retry.MaxAttempts < 0 || (c.Retry.Multiplier != 0 && c.Retry.Multiplier < 1) {
		return fmt.Errorf("llm: invalid retry settings")
	}
	return nil
}
