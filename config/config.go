package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port           string
	Environment    string
	AllowedOrigins []string
	JWTSecret      string

	// CredentialUpstreamURL is the upstream queried by the credential
	// proxy endpoint. Empty means the endpoint is unconfigured and
	// answers with a client error.
	CredentialUpstreamURL string
	CredentialTimeout     time.Duration

	Redis RedisConfig
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func Load() *Config {
	// Parse allowed origins (comma-separated)
	originsStr := getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	origins := strings.Split(originsStr, ",")

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		Environment:           getEnv("ENVIRONMENT", "development"),
		AllowedOrigins:        origins,
		JWTSecret:             getEnv("JWT_SECRET", "change-me-in-production"),
		CredentialUpstreamURL: getEnv("CREDENTIAL_UPSTREAM_URL", ""),
		CredentialTimeout:     getDuration("CREDENTIAL_TIMEOUT", 5*time.Second),
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
