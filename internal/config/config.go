package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// PckToolPath is an explicit godotpcktool location, overriding discovery.
	PckToolPath string
	// DefaultLocale is the tag offered for --locale on import.
	DefaultLocale string
	// WorkerCount bounds concurrent file conversions during batch export.
	WorkerCount int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		PckToolPath:   getEnv("GODOTPCKTOOL_PATH", ""),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		WorkerCount:   getEnvInt("WORKER_COUNT", 4),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
