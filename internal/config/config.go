package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Env                 string
	HTTPAddr            string
	APIBaseURL          string
	JWTSecret           string
	CorsAllowedOrigins  []string
	SessionPollInterval time.Duration
	AdminPollInterval   time.Duration
	UpstreamTimeout     time.Duration
}

func Load() Config {
	cfg := Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8090"),
		APIBaseURL:          getEnv("API_BASE_URL", "http://localhost:8000/api"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		CorsAllowedOrigins:  splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		SessionPollInterval: getEnvDuration("SESSION_POLL_INTERVAL", 1*time.Second),
		AdminPollInterval:   getEnvDuration("ADMIN_POLL_INTERVAL", 5*time.Second),
		UpstreamTimeout:     getEnvDuration("UPSTREAM_TIMEOUT", 8*time.Second),
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if cfg.SessionPollInterval <= 0 {
		cfg.SessionPollInterval = time.Second
	}
	if cfg.AdminPollInterval <= 0 {
		cfg.AdminPollInterval = 5 * time.Second
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 8 * time.Second
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
