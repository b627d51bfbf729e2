package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port         string
	Environment  string // "production" or "development"
	PatternsPath string // JSON catalog document
	DatabasePath string // SQLite usage analytics
	RedisURL     string // optional, cross-instance refresh relay

	// API keys allowed on admin endpoints (comma-separated env var)
	AdminAPIKeys []string

	// Catalog maintenance
	WatchPatterns      bool          // fsnotify hot reload of the patterns file
	RefreshInterval    time.Duration // 0 disables the periodic refresh job
	AnalyticsRetention time.Duration // 0 disables pruning

	AllowedOrigins string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	// Parse admin API keys (comma-separated)
	keysEnv := getEnv("ADMIN_API_KEYS", "")
	var adminKeys []string
	if keysEnv != "" {
		adminKeys = strings.Split(keysEnv, ",")
		for i := range adminKeys {
			adminKeys[i] = strings.TrimSpace(adminKeys[i])
		}
	}

	return &Config{
		Port:         getEnv("PORT", "3001"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		PatternsPath: getEnv("PATTERNS_PATH", "./data/patterns.json"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/usage.db"),
		RedisURL:     getEnv("REDIS_URL", ""),

		AdminAPIKeys: adminKeys,

		WatchPatterns:      getBoolEnv("WATCH_PATTERNS", true),
		RefreshInterval:    time.Duration(getIntEnv("REFRESH_INTERVAL_MINUTES", 0)) * time.Minute,
		AnalyticsRetention: time.Duration(getIntEnv("ANALYTICS_RETENTION_DAYS", 90)) * 24 * time.Hour,

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
