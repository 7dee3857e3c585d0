package config

import (
	"path/filepath"

	"arsat/finanzas/internal/fileutils"
	"arsat/finanzas/internal/logging"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from the first .env file found in dirs (the
// current and parent directories by default) without overriding variables
// already set. It returns the file loaded, or "" when none exists.
func LoadEnv(dirs ...string) (string, error) {
	if len(dirs) == 0 {
		dirs = []string{".", ".."}
	}
	for _, dir := range dirs {
		envFile := filepath.Join(dir, ".env")
		if !fileutils.FileExists(envFile) {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return envFile, err
		}
		return envFile, nil
	}
	return "", nil
}

// NewLogger builds the application logger from the log settings.
func NewLogger(config *Config) logging.Logger {
	return logging.NewLogrusAdapterFromLogger(ConfigureLoggingFromConfig(config))
}
