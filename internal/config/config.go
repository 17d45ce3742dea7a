package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string
	StorageDriver string
	DatabaseURL   string
	JWTSecret     string
	JWTIssuer     string
	JWTTTL        time.Duration
	CORSOrigins   []string

	EmailDomain               string
	ResetForcesPasswordChange bool
	ResetRateLimit            string
	LoginRateLimit            string
	RedisURL                  string

	LogLevel string
	LogDev   bool

	Bootstrap BootstrapAdmin
}

// BootstrapAdmin describes the first admin seeded at startup. Empty Email disables it.
type BootstrapAdmin struct {
	Email    string
	Phone    string
	Password string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), "8080"),
		StorageDriver: strings.ToLower(fallback(os.Getenv("STORAGE_DRIVER"), DriverPostgres)),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:     fallback(os.Getenv("JWT_ISSUER"), "society-backend"),
		CORSOrigins:   parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),

		EmailDomain:               fallback(os.Getenv("SOCIETY_EMAIL_DOMAIN"), "society.local"),
		ResetForcesPasswordChange: parseBool(os.Getenv("RESET_FORCES_PASSWORD_CHANGE")),
		ResetRateLimit:            fallback(os.Getenv("RESET_RATE_LIMIT"), "5-M"),
		LoginRateLimit:            fallback(os.Getenv("LOGIN_RATE_LIMIT"), "20-M"),
		RedisURL:                  strings.TrimSpace(os.Getenv("REDIS_URL")),

		LogLevel: fallback(os.Getenv("LOG_LEVEL"), "info"),
		LogDev:   parseBool(os.Getenv("LOG_DEV")),

		Bootstrap: BootstrapAdmin{
			Email:    strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL")),
			Phone:    strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_PHONE")),
			Password: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		},
	}

	minutes := fallback(os.Getenv("JWT_TTL_MINUTES"), "60")
	if ttlMinutes, err := strconv.Atoi(minutes); err == nil && ttlMinutes > 0 {
		cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 60 * time.Minute
	}

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.Bootstrap.Email != "" && cfg.Bootstrap.Phone == "" && cfg.Bootstrap.Password == "" {
		return Config{}, errors.New("BOOTSTRAP_ADMIN_PHONE or BOOTSTRAP_ADMIN_PASSWORD is required with BOOTSTRAP_ADMIN_EMAIL")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
