package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the process reads from the environment.
type Config struct {
	Port string

	DBType     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	JWTSecret string

	// PublicBaseURL is the frontend origin encoded into QR artifacts and
	// deep links in reminder emails.
	PublicBaseURL string

	// ReminderHour is the local wall-clock hour (0-23) of the daily sweep.
	ReminderHour    int
	DispatchTimeout time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string
	EmailFromName string

	AdminUserID   string
	AdminPassword string
}

// Load reads the configuration from the environment with fallbacks.
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "9090"),

		DBType:     getEnv("DB_TYPE", "sqlite"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", ""),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "equiptrack"),
		SQLitePath: getEnv("SQLITE_PATH", "equiptrack.db"),

		JWTSecret: getEnv("JWT_SECRET", "equiptrack-dev-secret-change-in-production"),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),

		ReminderHour:    getIntEnv("REMINDER_HOUR", 9),
		DispatchTimeout: time.Duration(getIntEnv("DISPATCH_TIMEOUT_SECONDS", 30)) * time.Second,

		SMTPHost:      getEnv("EMAIL_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnv("EMAIL_PORT", "587"),
		SMTPUsername:  getEnv("EMAIL_USERNAME", ""),
		SMTPPassword:  getEnv("EMAIL_PASSWORD", ""),
		EmailFrom:     getEnv("EMAIL_FROM", getEnv("EMAIL_USERNAME", "")),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "Equipment Tracker"),

		AdminUserID:   getEnv("ADMIN_USER_ID", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
