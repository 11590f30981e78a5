package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port            string
	DatabaseURL     string
	MongoDatabase   string
	JWTSecret       string
	JWTIssuer       string
	CORSOrigins     []string
	RedisAddr       string
	ProfileCacheTTL time.Duration
	LogLevel        string
	APIBasePath     string
	BcryptCost      int
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MongoDatabase: fallback(os.Getenv("MONGO_DATABASE"), "mposter"),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:     fallback(os.Getenv("JWT_ISSUER"), "mposter-backend"),
		CORSOrigins:   parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		LogLevel:      fallback(os.Getenv("LOG_LEVEL"), "INFO"),
		APIBasePath:   normalizeBasePath(os.Getenv("API_BASE_PATH")),
	}

	cfg.ProfileCacheTTL = time.Duration(positiveInt(os.Getenv("PROFILE_CACHE_TTL_SECONDS"), 300)) * time.Second
	cfg.BcryptCost = positiveInt(os.Getenv("BCRYPT_COST"), 10)

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// CacheEnabled reports whether a Redis address was configured.
func (c Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// normalizeBasePath turns "api/", "/api" and "/api/" into "/api". Empty and
// "/" mean routes are mounted at the root.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
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
