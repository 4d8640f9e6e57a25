package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/spf13/viper"
)

// DefaultTokenTTL is the session lifetime used when TOKEN_TTL is unset.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Config holds the application configuration.
type Config struct {
	ServerPort            int
	AppEnv                string
	LogLevel              string
	DatabaseURL           string
	JWTSecret             string
	TokenTTL              time.Duration
	BcryptCost            int
	CORSOrigins           []string
	NotificationRetention time.Duration
	JanitorSchedule       string
}

// Load builds the configuration from environment variables and validates it.
// A missing JWT_SECRET is a configuration error; there is no built-in secret.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TOKEN_TTL", DefaultTokenTTL.String())
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("NOTIFICATION_RETENTION", "720h")
	v.SetDefault("JANITOR_SCHEDULE", "@every 10m")

	port, err := strconv.Atoi(strings.TrimSpace(v.GetString("PORT")))
	if err != nil || port <= 0 {
		return nil, apperr.Config(fmt.Sprintf("invalid PORT %q", v.GetString("PORT")), err)
	}

	ttl, err := time.ParseDuration(v.GetString("TOKEN_TTL"))
	if err != nil || ttl <= 0 {
		return nil, apperr.Config(fmt.Sprintf("invalid TOKEN_TTL %q", v.GetString("TOKEN_TTL")), err)
	}

	retention, err := time.ParseDuration(v.GetString("NOTIFICATION_RETENTION"))
	if err != nil || retention <= 0 {
		return nil, apperr.Config(fmt.Sprintf("invalid NOTIFICATION_RETENTION %q", v.GetString("NOTIFICATION_RETENTION")), err)
	}

	cfg := &Config{
		ServerPort:            port,
		AppEnv:                strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		LogLevel:              strings.TrimSpace(v.GetString("LOG_LEVEL")),
		DatabaseURL:           strings.TrimSpace(v.GetString("DATABASE_URL")),
		JWTSecret:             strings.TrimSpace(v.GetString("JWT_SECRET")),
		TokenTTL:              ttl,
		BcryptCost:            v.GetInt("BCRYPT_COST"),
		CORSOrigins:           parseCSV(v.GetString("CORS_ALLOWED_ORIGINS")),
		NotificationRetention: retention,
		JanitorSchedule:       strings.TrimSpace(v.GetString("JANITOR_SCHEDULE")),
	}

	if cfg.DatabaseURL == "" {
		return nil, apperr.Config("DATABASE_URL is required", nil)
	}
	if cfg.JWTSecret == "" {
		return nil, apperr.Config("JWT_SECRET is required", nil)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production hardening (secure cookies, JSON logs).
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// HTTPAddress returns the listen address for the HTTP server.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func parseCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
