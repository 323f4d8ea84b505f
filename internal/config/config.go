// Package config provides centralized configuration loaded from environment
// variables. Shared by the serve daemon and the operator subcommands.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Notification driver names accepted by NOTIFY_DRIVER.
const (
	NotifyDesktop = "desktop"
	NotifyLog     = "log"
	NotifyOff     = "off"
)

// Storage keys — single source of truth for every persisted blob.
const (
	KeyDailyTasks        = "dailyTasks"
	KeySentNotifications = "sentNotifications"
	KeyLastNotifyDate    = "lastNotificationDate"
	KeyRegime            = "regime"
	KeyStudyTimetable    = "studyTimetable"
	KeyWeeklySchedule    = "weeklySchedule"
	KeySelectedDate      = "selectedDate"
	KeyLocation          = "location"
)

// Config is populated from environment variables.
type Config struct {
	// State store: Postgres when DATABASE_URL is set, local file otherwise.
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	StateFile      string

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

	// Reminder engine
	NotifyDriver string
	TickInterval time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		StateFile:      envOr("STATE_FILE", "routined.json"),

		APIHost:     envOr("API_HOST", "127.0.0.1"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8400)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		NotifyDriver: envOr("NOTIFY_DRIVER", NotifyDesktop),
		TickInterval: time.Duration(envInt("TICK_INTERVAL_SECONDS", 60)) * time.Second,
	}

	switch cfg.NotifyDriver {
	case NotifyDesktop, NotifyLog, NotifyOff:
	default:
		return nil, fmt.Errorf("NOTIFY_DRIVER must be one of desktop, log, off (got %q)", cfg.NotifyDriver)
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("TICK_INTERVAL_SECONDS must be positive")
	}

	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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
