// internal/config/config.go
//
// Environment-driven configuration. main loads .env first (godotenv), then
// calls Load; every value has a development default.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the resolved runtime configuration.
type Config struct {
	Port           string
	LogLevel       string
	LogFormat      string // "console" for human-readable output, JSON otherwise
	DBPath         string
	JWTSecret      string
	JWTExpires     time.Duration
	CookieName     string
	AnonCookieName string
	ClientOrigin   string
	Production     bool
	CatalogFile    string
	DailySalt      string
	CrashTick      time.Duration
	SessionTTL     time.Duration
	RequestTimeout time.Duration
}

const devSecret = "dev_secret_change_me"

// Load reads the environment.
func Load() Config {
	return Config{
		Port:           getEnv("PORT", "5175"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "json")),
		DBPath:         getEnv("DB_PATH", "./data/app.db"),
		JWTSecret:      getEnv("JWT_SECRET", devSecret),
		JWTExpires:     time.Duration(envInt("JWT_EXPIRES_DAYS", 14)) * 24 * time.Hour,
		CookieName:     getEnv("COOKIE_NAME", "crwordle_token"),
		AnonCookieName: getEnv("ANON_COOKIE_NAME", "crwordle_anon"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:     os.Getenv("NODE_ENV") == "production",
		CatalogFile:    os.Getenv("CATALOG_FILE"),
		DailySalt:      getEnv("DAILY_SALT", "local_dev_salt"),
		CrashTick:      time.Duration(envInt("CRASH_TICK_MS", 50)) * time.Millisecond,
		SessionTTL:     time.Duration(envInt("SESSION_TTL_MIN", 120)) * time.Minute,
		RequestTimeout: time.Duration(envInt("REQUEST_TIMEOUT_S", 10)) * time.Second,
	}
}

// InsecureSecret reports whether the JWT secret is the development default.
func (c Config) InsecureSecret() bool { return c.JWTSecret == devSecret }

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt parses k as a positive int, falling back to def.
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
