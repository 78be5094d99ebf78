package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvBaseURL = "TFQUIZ_BASE_URL"
	EnvTimeout = "TFQUIZ_TIMEOUT"
	EnvTTSLang = "TFQUIZ_TTS_LANG"
	EnvPlayer  = "TFQUIZ_PLAYER"
	EnvCount   = "TFQUIZ_COUNT"
	EnvType    = "TFQUIZ_TYPE"
)

// LoadEnvFiles loads .env files into the process environment. Variables
// already set are kept. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to stat env file: %w", err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overlays TFQUIZ_* variables onto cfg. lookup is usually os.LookupEnv.
func ApplyEnv(cfg FileConfig, lookup func(string) (string, bool)) (FileConfig, error) {
	if v, ok := lookupTrimmed(lookup, EnvBaseURL); ok {
		cfg.Service.BaseURL = &v
	}
	if v, ok := lookupTrimmed(lookup, EnvTimeout); ok {
		cfg.Service.Timeout = &v
	}
	if v, ok := lookupTrimmed(lookup, EnvTTSLang); ok {
		cfg.Speech.Lang = &v
	}
	if v, ok := lookupTrimmed(lookup, EnvPlayer); ok {
		cfg.Speech.Player = &v
	}
	if v, ok := lookupTrimmed(lookup, EnvType); ok {
		cfg.Quiz.Type = &v
	}
	if v, ok := lookupTrimmed(lookup, EnvCount); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return FileConfig{}, fmt.Errorf("invalid %s value %q: %w", EnvCount, v, err)
		}
		cfg.Quiz.Count = &n
	}
	return cfg, nil
}

func lookupTrimmed(lookup func(string) (string, bool), key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}
