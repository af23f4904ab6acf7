// Package cli holds the shared bootstrap steps of the finsmart binaries:
// env loading, logging, configuration, and storage setup.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"finsmart/internal/config"
	"finsmart/internal/log"
	"finsmart/internal/storage"
)

// SetupLogger initializes structured logging and installs it as the slog
// default.
func SetupLogger(component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Component = component
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the optional .env file for local development.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting the
// process on failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the archive repository, exiting the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("failed to open archive database",
			log.FieldError, err,
			"db_path", dbPath)
		os.Exit(1)
	}
	return repo
}
