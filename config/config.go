package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"optionsjournal/internal/adapters/logger" // Import the logger package for LogLevel
)

// Store backends.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	// HTTP
	ListenAddr string

	// Storage
	StoreBackend string // json or sqlite
	TradesFile   string // flat-file backend path
	DBPath       string // sqlite backend path
	UploadDir    string

	// Statistics defaults
	DefaultLossModifierPercent float64 // Loss applied when no eligible high remains

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	cfg.ListenAddr = getEnv("LISTEN_ADDR", ":3000")
	if cfg.ListenAddr == "" {
		errs = append(errs, "LISTEN_ADDR must be set")
	}

	cfg.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", StoreJSON))
	if cfg.StoreBackend != StoreJSON && cfg.StoreBackend != StoreSQLite {
		errs = append(errs, fmt.Sprintf("STORE_BACKEND must be %q or %q", StoreJSON, StoreSQLite))
	}

	cfg.TradesFile = getEnv("TRADES_FILE", "./data/trades.json")
	if cfg.TradesFile == "" {
		errs = append(errs, "TRADES_FILE must be set")
	}

	cfg.DBPath = getEnv("DB_PATH", "./data/journal.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	cfg.UploadDir = getEnv("UPLOAD_DIR", "./uploads")
	if cfg.UploadDir == "" {
		errs = append(errs, "UPLOAD_DIR must be set")
	}

	cfg.DefaultLossModifierPercent, err = getEnvAsFloatRequired("DEFAULT_LOSS_MODIFIER_PERCENT", 100.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid DEFAULT_LOSS_MODIFIER_PERCENT: %v", err))
	} else if cfg.DefaultLossModifierPercent < 0 {
		errs = append(errs, "DEFAULT_LOSS_MODIFIER_PERCENT cannot be negative")
	}

	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
