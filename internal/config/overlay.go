package config

import (
	"os"
	"strings"
)

// Environment variables that override file values.
const (
	EnvDataDir   = "JOBBOARD_DATA_DIR"
	EnvAddr      = "JOBBOARD_ADDR"
	EnvSourceURL = "JOBBOARD_SOURCE_URL"
	EnvDSN       = "JOBBOARD_DB_DSN"
)

// OverlayEnv applies environment overrides. Setting JOBBOARD_DB_DSN also
// switches the store to postgres.
func OverlayEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvDataDir)); v != "" {
		cfg.App.DataDir = v
	}
	if v := strings.TrimSpace(getenv(EnvAddr)); v != "" {
		cfg.App.Addr = v
	}
	if v := strings.TrimSpace(getenv(EnvSourceURL)); v != "" {
		cfg.Source.URL = v
	}
	if v := strings.TrimSpace(getenv(EnvDSN)); v != "" {
		cfg.Store.DSN = v
		cfg.Store.Driver = "postgres"
	}
}
