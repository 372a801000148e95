package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// Postgres
	DatabaseDSN string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Sessions
	JwtSecret         string
	JwtTTL            time.Duration
	SessionCookieName string

	// Server
	ApiPort    string
	AppBaseURL string

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	ImageBaseS3URL     string
	ImageMaxDimension  int
	ImageMaxSizeMB     int64

	// Rate limiting for signup-type endpoints
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// Maintenance
	ExpireSweepSpec string // cron spec for the availability sweep
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.DatabaseDSN, err = getRequiredEnv("DATABASE_DSN")
	if err != nil {
		return nil, err
	}
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, _ = strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.JwtTTL, err = time.ParseDuration(getEnv("JWT_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.SessionCookieName = getEnv("SESSION_COOKIE_NAME", "subletly_session")

	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.AppBaseURL = getEnv("APP_BASE_URL", "http://localhost:3000")

	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpPort, _ = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@subletly.example")

	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "us-east-1")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.ImageBaseS3URL = getEnv("IMAGE_BASE_S3_URL", "")
	cfg.ImageMaxDimension, _ = strconv.Atoi(getEnv("IMAGE_MAX_DIMENSION", "1600"))
	maxMB, _ := strconv.Atoi(getEnv("IMAGE_MAX_SIZE_MB", "10"))
	cfg.ImageMaxSizeMB = int64(maxMB)

	cfg.AuthRateLimit, _ = strconv.Atoi(getEnv("AUTH_RATE_LIMIT", "10"))
	if cfg.AuthRateLimit <= 0 {
		cfg.AuthRateLimit = 10
	}
	cfg.AuthRateWindow, err = time.ParseDuration(getEnv("AUTH_RATE_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_WINDOW: %w", err)
	}
	// The limiter buckets time by whole seconds of the window.
	if cfg.AuthRateWindow < time.Second {
		cfg.AuthRateWindow = time.Second
	}

	cfg.ExpireSweepSpec = getEnv("EXPIRE_SWEEP_CRON", "30 3 * * *")

	return cfg, nil
}
