// Package config loads server configuration from the environment, with
// optional .env support for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// DBPath is the SQLite database file.
	DBPath string

	// JWTSecret signs session tokens. Required.
	JWTSecret string

	// JWTTTL is how long session tokens stay valid.
	JWTTTL time.Duration

	// FxAPIURL and FxAPIKey configure the exchange rate provider.
	// Empty FxAPIURL disables the rate endpoints.
	FxAPIURL string
	FxAPIKey string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first if present; real environment
// variables win.
func Load() (*Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		DBPath:   getEnv("DB_PATH", "./data/tripsplit.db"),
		FxAPIURL: os.Getenv("FX_API_URL"),
		FxAPIKey: os.Getenv("FX_API_KEY"),
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ttl := getEnv("JWT_TTL", "24h")
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL %q: %w", ttl, err)
	}
	cfg.JWTTTL = d

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
