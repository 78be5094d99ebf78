package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Quiz    QuizConfig    `toml:"quiz"`
	Service ServiceConfig `toml:"service"`
	Speech  SpeechConfig  `toml:"speech"`
	History HistoryConfig `toml:"history"`
}

// QuizConfig maps session parameters.
type QuizConfig struct {
	Count *int    `toml:"count"`
	Type  *string `toml:"type"`
}

// ServiceConfig maps the remote service settings.
type ServiceConfig struct {
	BaseURL *string `toml:"base-url"`
	// Timeout is a Go duration string such as "30s". Empty or "0" disables it.
	Timeout *string `toml:"timeout"`
}

// SpeechConfig maps text-to-speech settings.
type SpeechConfig struct {
	Lang   *string `toml:"lang"`
	Player *string `toml:"player"`
}

// HistoryConfig maps history recording settings.
type HistoryConfig struct {
	Enabled *bool `toml:"enabled"`
}

// LoadConfig reads a TOML config from the given path. A missing file yields
// an empty config; keys the file sets that FileConfig does not know are errors.
func LoadConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	if path == "" {
		return cfg, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, nil
}
