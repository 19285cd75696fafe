package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns $XDG_CONFIG_HOME or ~/.config.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// DefaultPath is the config file read when --config is not given.
func DefaultPath() string {
	if v := os.Getenv("WIGGLES_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(XDGConfigHome(), "wiggles", "config.toml")
}
