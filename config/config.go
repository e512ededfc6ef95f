package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBUrl       string
	ServiceName string
	Environment string
	FrontendURL string
	// Identity layer (tokens are issued elsewhere, we only verify them)
	JWTSecret string
	JWKSUrl   string
	// Redis Configuration (rate limiting + notification queue)
	RedisURL      string
	RedisPassword string
	// Availability projection
	AvailabilityWindowDays    int
	AvailabilityMaxWindowDays int
	// Rate Limiting Configuration
	BookingRateLimit       int
	RateLimitWindowSeconds int
	GlobalRateLimit        int
	// Notification worker
	NotificationQueue string
	WorkerConcurrency int
	// Audit Configuration
	AuditLogToDB bool // Whether to persist interview transitions to interview_events
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; production injects real environment variables
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		ServiceName: getEnv("SERVICE_NAME", "interview-scheduler"),
		Environment: environment(),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		// Strip trailing slash so the JWKS path never gets doubled
		JWKSUrl:       strings.TrimRight(getEnv("JWKS_URL", ""), "/"),
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Projection window
		AvailabilityWindowDays:    getEnvInt("AVAILABILITY_WINDOW_DAYS", 90),
		AvailabilityMaxWindowDays: getEnvInt("AVAILABILITY_MAX_WINDOW_DAYS", 180),
		// Rate Limiting Configuration (with sensible defaults)
		BookingRateLimit:       getEnvInt("BOOKING_RATE_LIMIT", 20),          // booking attempts per window per user
		RateLimitWindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),   // 1 minute window
		GlobalRateLimit:        getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 300), // requests per window per IP
		// Notification worker
		NotificationQueue: getEnv("NOTIFICATION_QUEUE", "notifications"),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 10),
		AuditLogToDB:      getEnvBool("AUDIT_LOG_TO_DB", true),
	}

	if cfg.AvailabilityWindowDays <= 0 {
		cfg.AvailabilityWindowDays = 90
	}
	if cfg.AvailabilityMaxWindowDays < cfg.AvailabilityWindowDays {
		cfg.AvailabilityMaxWindowDays = cfg.AvailabilityWindowDays
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" && cfg.JWKSUrl == "" {
		log.Println("WARNING: neither JWT_SECRET nor JWKS_URL is configured. Every request will be rejected.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback and notifications will only be logged.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func environment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
