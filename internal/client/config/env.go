package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvAPIURL      = "PORTAL_API_URL"
	EnvDBPath      = "PORTAL_DB_PATH"
	EnvDownloadDir = "PORTAL_DOWNLOAD_DIR"
)

// parseEnv overlays cfg with PORTAL_* variables. envFile, if it exists, is
// loaded first; variables already set in the process take precedence over
// the file.
func parseEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if v, ok := os.LookupEnv(EnvAPIURL); ok && v != "" {
		cfg.APIBaseURL = v
	}
	if v, ok := os.LookupEnv(EnvDBPath); ok && v != "" {
		cfg.DatabasePath = v
	}
	if v, ok := os.LookupEnv(EnvDownloadDir); ok {
		cfg.DownloadDir = v
	}
	return nil
}
