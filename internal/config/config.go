package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process configuration. The auth secret stays in the
// environment (DONGMUN_AUTH_SECRET) and is read by the auth package directly.
type Config struct {
	Addr         string
	DatabaseDSN  string
	TokenTTL     time.Duration
	RateBurst    int
	RatePerSec   int
	MaxBodyBytes int64
}

// Load reads configuration from the environment with sensible defaults. A
// local .env file is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:         ":" + getEnv("PORT", "8080"),
		DatabaseDSN:  os.Getenv("DONGMUN_PG_DSN"),
		TokenTTL:     getDuration("DONGMUN_TOKEN_TTL", 12*time.Hour),
		RateBurst:    getInt("DONGMUN_RATE_BURST", 20),
		RatePerSec:   getInt("DONGMUN_RATE_PER_SEC", 10),
		MaxBodyBytes: 1 << 20,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
