// Package config resolves tfquiz settings: XDG paths, the TOML file and
// environment overrides.
package config

import (
	"os"
	"path/filepath"
)

const appName = "tfquiz"

// xdgBase returns the directory named by env, or home joined with fallback.
// Relative values are ignored as the XDG base directory rules require.
func xdgBase(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" && filepath.IsAbs(v) {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// ConfigDir is the per-user tfquiz config directory.
func ConfigDir() string {
	return filepath.Join(xdgBase("XDG_CONFIG_HOME", ".config"), appName)
}

// DataDir is the per-user tfquiz data directory.
func DataDir() string {
	return filepath.Join(xdgBase("XDG_DATA_HOME", ".local", "share"), appName)
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string { return filepath.Join(ConfigDir(), "config.toml") }

// DefaultEnvPath returns the .env file read next to the config file.
func DefaultEnvPath() string { return filepath.Join(ConfigDir(), ".env") }

// DefaultDBPath returns the default path for the history database.
func DefaultDBPath() string { return filepath.Join(DataDir(), appName+".db") }

// DefaultEventLogPath returns the default path for the JSON event log.
func DefaultEventLogPath() string { return filepath.Join(DataDir(), "events.log") }
