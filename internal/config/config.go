// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Secrets are process-wide and read once at
// startup; the token codec and refresh hasher receive them at
// construction rather than reading globals.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret      string // secret used to sign access tokens (HS256)
	RefreshHashKey string // server-side key for the refresh-token HMAC digest
	AccessTTLSec   int    // access token time-to-live in seconds
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	RabbitURL   string // AMQP endpoint for auth events (optional)
	AuditLogDir string // directory for the audit log written by the event consumer
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		RefreshHashKey: must("REFRESH_HASH_KEY"),
		AccessTTLSec:   intOr("ACCESS_TOKEN_TTL_SEC", 900),
		RefreshTTLDays: intOr("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:     intOr("BCRYPT_COST", 12),
		RabbitURL:      os.Getenv("RABBITMQ_URL"), // empty disables events
		AuditLogDir:    strOr("AUDIT_LOG_DIR", "logs"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// strOr returns the variable's value, falling back to def when unset.
func strOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intOr converts the variable to an integer, falling back to def when
// unset. A set but non-numeric value is fatal.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
