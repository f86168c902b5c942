package config

import (
	"os"
	"strconv"
	"time"
)

// AppConfig holds runtime settings sourced from the environment.
type AppConfig struct {
	Host            string
	Port            string
	DatabasePath    string
	StoreConfigPath string
	CronSchedule    string
	MaxWorkers      int
	FetchTimeout    time.Duration
	FetchSettle     time.Duration
	FetchMode       string // "browser" or "http"
	RateLimit       float64
	AllowedOrigins  string
}

// DefaultAppConfig returns the configuration with environment overrides applied.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Host:            getEnv("HOST", "0.0.0.0"),
		Port:            getEnv("PORT", "8080"),
		DatabasePath:    getEnv("DATABASE_PATH", "product_inflation.db"),
		StoreConfigPath: getEnv("STORE_CONFIG_PATH", "store_config.txt"),
		// Every 12 hours, at 00:00 and 12:00 (seconds field included)
		CronSchedule:   getEnv("SCRAPE_SCHEDULE", "0 0 */12 * * *"),
		MaxWorkers:     getEnvInt("SCRAPE_MAX_WORKERS", 4),
		FetchTimeout:   getEnvDuration("FETCH_TIMEOUT", 90*time.Second),
		FetchSettle:    getEnvDuration("FETCH_SETTLE", 8*time.Second),
		FetchMode:      getEnv("FETCH_MODE", "browser"),
		RateLimit:      getEnvFloat("API_RATE_LIMIT", 10),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
	}
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
