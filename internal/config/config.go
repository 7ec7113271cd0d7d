package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DataDir          string
	Story            string
	RedisURL         string
	SaveNamespace    string
	Environment      string
	LogLevel         slog.Level
	AutosaveInterval time.Duration
}

func Load() *Config {
	return &Config{
		DataDir:          getEnv("DATA_DIR", "data/stories"),
		Story:            getEnv("STORY", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		SaveNamespace:    getEnv("SAVE_NAMESPACE", "default"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         parseLogLevel(getEnv("LOG_LEVEL", "info")),
		AutosaveInterval: parseSeconds(getEnv("AUTOSAVE_INTERVAL", "60")),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseSeconds reads a whole-second duration. Zero or negative values
// disable the feature the interval drives.
func parseSeconds(s string) time.Duration {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 60 * time.Second
	}
	return time.Duration(n) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
