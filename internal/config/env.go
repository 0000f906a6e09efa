package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables that override file settings.
const (
	EnvLogLevel = "VTC2TAVERN_LOG_LEVEL"
	EnvLogFile  = "VTC2TAVERN_LOG_FILE"
	EnvWorkers  = "VTC2TAVERN_WORKERS"
)

// ApplyEnv overlays environment overrides onto cfg. Malformed numbers are
// ignored so the file or default value stays in effect.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Batch.Workers = n
		}
	}
}
