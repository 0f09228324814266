// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/admin.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/imishab/track-me/internal/prayer"
)

// --------------------------------------------------------------------------
// Table names — single source of truth, matches schema.sql
// --------------------------------------------------------------------------

const (
	UsersTable             = "users"
	CategoriesTable        = "categories"
	HabitsTable            = "habits"
	CompletionsTable       = "habit_completions"
	PushSubscriptionsTable = "push_subscriptions"
	PrayerSentTable        = "prayer_notification_sent"
	SummarySentTable       = "daily_summary_sent"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Notifications
	PushAlertAPIKey string
	CronSecret      string // empty means the cron endpoint accepts all callers
	PrayerTimezone  string
	AppBaseURL      string // deep-link target for notifications

	// Sessions
	JWTSecret string
	TokenTTL  time.Duration

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("SUPABASE_DB_URL", envOr("DATABASE_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("SUPABASE_DB_URL or DATABASE_URL must be set")
	}

	jwtSecret := envOr("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		PushAlertAPIKey: envOr("PUSHALERT_API_KEY", ""),
		CronSecret:      envOr("CRON_SECRET", ""),
		PrayerTimezone:  envOr("PRAYER_TIMEZONE", prayer.DefaultTimezone),
		AppBaseURL:      envOr("APP_BASE_URL", "https://track-me-two-sage.vercel.app"),

		JWTSecret: jwtSecret,
		TokenTTL:  time.Duration(envInt("TOKEN_TTL_HOURS", 24*30)) * time.Hour,

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Location resolves the configured prayer timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.PrayerTimezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.PrayerTimezone, err)
	}
	return loc, nil
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
