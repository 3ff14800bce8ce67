package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/opentasklabs/taskauth/pkg/jwtx"
)

type Config struct {
	Secret    string // Required: HMAC signing secret for JWTs
	Algorithm string // Optional: JWT signing algorithm (HS256, HS384, HS512) (default: HS256)

	AccessTTL         time.Duration // Optional: access token lifetime (default: 30m)
	RefreshTTL        time.Duration // Optional: refresh token lifetime (default: 720h)
	MaxActiveSessions int           // Optional: per-user active session cap (default: 5, min: 1)
	AuthMethod        string        // Optional: token transport strategy (header, cookie) (default: header)
	SecureCookies     bool          // Optional: set Secure on token cookies (default: true)

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./taskauth.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// ErrMissingSecret is returned by Validate when no signing secret is set.
var ErrMissingSecret = errors.New("TASKAUTH_SECRET must be set")

func LoadConfig() Config {
	cfg := Config{
		Secret:    os.Getenv("TASKAUTH_SECRET"),
		Algorithm: getEnvOrDefault("TASKAUTH_ALGORITHM", "HS256"),

		AccessTTL:         getEnvDurationOrDefault("TASKAUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:        getEnvDurationOrDefault("TASKAUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		MaxActiveSessions: getEnvIntOrDefault("TASKAUTH_MAX_ACTIVE_SESSIONS", 5),
		AuthMethod:        getEnvOrDefault("TASKAUTH_AUTH_METHOD", "header"),
		SecureCookies:     getEnvBoolOrDefault("TASKAUTH_SECURE_COOKIES", true),

		DatabaseFile:         getEnvOrDefault("TASKAUTH_DATABASE_FILE", "taskauth.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.MaxActiveSessions < 1 {
		cfg.MaxActiveSessions = 1
	}
	if cfg.AuthMethod != "cookie" {
		cfg.AuthMethod = "header"
	}

	return cfg
}

// Validate checks the required settings.
func (c Config) Validate() error {
	if c.Secret == "" {
		return ErrMissingSecret
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
