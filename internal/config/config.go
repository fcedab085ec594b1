package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Profile string
		HTTP
		Global
		Database
		Auth
		Tasks
		Audit
		Log
		ReadOnly
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver   string // "sqlite" or "mysql"
		Path     string // sqlite file path
		DSN      string // mysql data source name
		LogLevel string // gorm logger level: silent, error, warn, info
	}
	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		TokenExpiry     time.Duration
		BcryptCost      int
		SecureCookies   bool   // Set to false for local dev without HTTPS
		SessionDBPath   string // sqlite file for sessions when the main database is mysql
		// Login rate limiting
		MaxLoginAttempts int
		RateLimitWindow  time.Duration
		LockoutDuration  time.Duration
	}
	Tasks struct {
		Enabled         bool
		DBPath          string
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Audit struct {
		RetentionDays   int
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
		ArchiveDir      string // Where raw import payloads are kept; empty disables
	}
	Log struct {
		Level string // "debug" selects the development logger
	}
	ReadOnly struct {
		Enabled bool // Reject every write request
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("profile", "")
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("database_driver", DriverSQLite)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_log_level", "warn")

	// Auth defaults
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_token_expiry", "24h")     // JWT lifetime
	v.SetDefault("auth_bcrypt_cost", 12)         // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)    // HTTPS-only cookies
	v.SetDefault("auth_session_db_path", "./sessions.db")
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_db_path", "") // derived from DATABASE_PATH when empty
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")
	v.SetDefault("audit_archive_dir", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("read_only_mode", false)

	return &Config{
		Profile: v.GetString("PROFILE"),
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:   normalizeDriver(v.GetString("DATABASE_DRIVER")),
			Path:     v.GetString("DATABASE_PATH"),
			DSN:      v.GetString("DATABASE_DSN"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		Auth: Auth{
			SessionSecret:   v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			TokenExpiry:     v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
			SessionDBPath:   v.GetString("AUTH_SESSION_DB_PATH"),

			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			DBPath:          v.GetString("TASKS_DB_PATH"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Audit: Audit{
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
			ArchiveDir:      v.GetString("AUDIT_ARCHIVE_DIR"),
		},
		Log: Log{
			Level: v.GetString("LOG_LEVEL"),
		},
		ReadOnly: ReadOnly{
			Enabled: v.GetBool("READ_ONLY_MODE"),
		},
	}
}

// IsDev reports whether the dev profile (sample data) is active.
func (c *Config) IsDev() bool {
	return c.Profile == ProfileDev
}

// DriverName returns the normalized driver, so hand-built configs compare
// the same way as ones read from the environment.
func (d Database) DriverName() string {
	return normalizeDriver(d.Driver)
}

// normalizeDriver lower-cases the driver name; an empty one means sqlite.
func normalizeDriver(driver string) string {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		return DriverSQLite
	}
	return driver
}
