package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port         string        `validate:"required,numeric"`
	UpstreamURL  string        `validate:"required,url"`
	RedisURL     string        `validate:"required"`
	CookieDomain string        `validate:"required"`
	Environment  string        `validate:"required,oneof=development production"`
	HTTPTimeout  time.Duration `validate:"required"`
	SessionTTL   time.Duration `validate:"required"`
	RefreshSkew  time.Duration `validate:"required"`
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine; everything can come from the real environment.
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "3000"),
		UpstreamURL:  getEnv("UPSTREAM_API_URL", "http://localhost:8080/api"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
		CookieDomain: getEnv("COOKIE_DOMAIN", "localhost"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT_SECONDS", 15*time.Second),
		SessionTTL:   getDurationEnv("SESSION_TTL_SECONDS", 24*time.Hour),
		RefreshSkew:  getDurationEnv("TOKEN_REFRESH_SKEW_SECONDS", 30*time.Second),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
