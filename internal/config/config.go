// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port             int
	DataDir          string
	LogLevel         string
	DevMode          bool
	LedgerTimezone   string // IANA name used to normalize interaction days
	GroomsServiceURL string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnvAsInt("PORT", 8090),
		DataDir:          getEnv("DATA_DIR", "./data"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		LedgerTimezone:   getEnv("LEDGER_TIMEZONE", "UTC"),
		GroomsServiceURL: getEnv("GROOMS_SERVICE_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and well-formed
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be in (0,65535], got %d", c.Port)
	}
	if _, err := time.LoadLocation(c.LedgerTimezone); err != nil {
		return fmt.Errorf("LEDGER_TIMEZONE %q is not a valid location: %w", c.LedgerTimezone, err)
	}
	return nil
}

// Location returns the parsed ledger timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.LedgerTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// StableDBPath returns the path of the stable database file
func (c *Config) StableDBPath() string {
	return filepath.Join(c.DataDir, "stable.db")
}

// LedgerDBPath returns the path of the ledger database file
func (c *Config) LedgerDBPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
