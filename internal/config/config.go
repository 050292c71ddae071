package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Storage
	StoreDriver        string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBSSLMode          string
	SQLitePath         string
	FirestoreProjectID string
	SeedDemoPosts      bool

	// Redis (optional webhook dedup cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT (issued by the identity provider)
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Admin
	AdminEmails string
	AdminToken  string

	// Payments
	StripeSecretKey     string
	StripeWebhookSecret string
	PublicBaseURL       string

	// Ledger
	SpendCreditOnPost bool

	// Per-IP throttle on post creation
	PostRatePerMinute int
	PostRateBurst     int

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string
	LogLevel    string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	return &Config{
		StoreDriver:        getEnv("STORE_DRIVER", "postgres"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBName:             getEnv("DB_NAME", "rantbox"),
		DBSSLMode:          getEnv("DB_SSLMODE", "disable"),
		SQLitePath:         getEnv("SQLITE_PATH", "rantbox.db"),
		FirestoreProjectID: getEnv("FIRESTORE_PROJECT_ID", ""),
		SeedDemoPosts:      parseBool(getEnv("SEED_DEMO_POSTS", "false")),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0")),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "168h")),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		PublicBaseURL:       getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),

		SpendCreditOnPost: parseBool(getEnv("SPEND_CREDIT_ON_POST", "false")),

		PostRatePerMinute: parseInt(getEnv("POST_RATE_PER_MINUTE", "6")),
		PostRateBurst:     parseInt(getEnv("POST_RATE_BURST", "3")),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 168 * time.Hour
	}
	return d
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
