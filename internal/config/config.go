package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port       string
	CronSecret string
	Odoo       OdooConfig
	Database   DatabaseConfig
}

// OdooConfig holds the ERP connection settings. Missing values are not an
// error at load time; the gateway reports a configuration error when a call
// is actually attempted, matching the degrade-not-crash contract.
type OdooConfig struct {
	URL          string
	Database     string
	Username     string
	APIKey       string
	SyncInterval int // minutes, 0 disables the background loop
	ProductLimit int // batch cap for product sync
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:       getEnv("PORT", "3001"),
		CronSecret: os.Getenv("CRON_SECRET"),
		Odoo: OdooConfig{
			URL:          os.Getenv("ODOO_URL"),
			Database:     os.Getenv("ODOO_DB"),
			Username:     os.Getenv("ODOO_USERNAME"),
			APIKey:       os.Getenv("ODOO_API_KEY"),
			SyncInterval: getEnvInt("SYNC_INTERVAL", 0),
			ProductLimit: getEnvInt("SYNC_PRODUCT_LIMIT", 500),
		},
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "giofarma"),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
