// Package config loads and persists fjsync configuration: the FileJump
// server URL, the access token, and logging options. Precedence is
// defaults, then the TOML config file, then environment variables, then CLI
// flags.
package config

import (
	"os"
	"path/filepath"
)

// Environment variable overrides.
const (
	EnvServer = "FJSYNC_SERVER"
	EnvToken  = "FJSYNC_TOKEN"
)

// Config is the on-disk configuration.
type Config struct {
	// Server is the FileJump API root, e.g. "https://app.filejump.com/api/v1/".
	Server string `toml:"server"`
	// Token is the bearer token; written back by `fjsync login`.
	Token string `toml:"token"`
	// TokenName labels tokens created by login.
	TokenName string `toml:"token_name"`
	// LogLevel is debug, info, warn, or error.
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns a Config with all default values.
func DefaultConfig() *Config {
	return &Config{
		TokenName: "fjsync",
		LogLevel:  "info",
	}
}

// ApplyEnv overlays environment variable overrides onto the config.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvServer); v != "" {
		c.Server = v
	}

	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
}

// DefaultPath returns the default config file location,
// $XDG_CONFIG_HOME/fjsync/config.toml or ~/.config/fjsync/config.toml.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fjsync", "config.toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "fjsync", "config.toml")
	}

	return filepath.Join(home, ".config", "fjsync", "config.toml")
}
