package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	SERVICE_NAME                string
	SERVICE_VERSION             string
	ENVIRONMENT                 string
	OTEL_EXPORTER_OTLP_ENDPOINT string
	OTEL_RESOURCE_ATTRIBUTES    string
	LOG_LEVEL                   string
	METRIC_INTERVAL             time.Duration
	RUNTIME_METRICS             bool
	REQUESTS_METRIC             bool
	DEVELOPMENT_MODE            bool
	SERVER_PORT                 string

	MYSQL_HOST     string
	MYSQL_PORT     string
	MYSQL_USER     string
	MYSQL_PASSWORD string
	MYSQL_DBNAME   string

	REDIS_ADDRESS  string
	REDIS_PASSWORD string

	CLOUDINARY_CLOUD      string
	CLOUDINARY_API_KEY    string
	CLOUDINARY_API_SECRET string

	// Storage backends and directories.
	UPLOAD_BACKEND string // "disk" or "cloudinary"
	UPLOAD_DIR     string
	SANCTION_DIR   string
	CUSTOMERS_FILE string

	// Session store backing ("memory" or "redis") and optional expiry.
	SESSION_BACKEND string
	SESSION_TTL     time.Duration

	// Underwriting rules.
	RATE_WITHIN_LIMIT      string
	RATE_ABOVE_LIMIT       string
	CREDIT_SCORE_THRESHOLD int
	LIMIT_MULTIPLIER       int64
	DEFAULT_MONTHLY_SALARY int64
	EMI_PRECISION          int32

	SHUTDOWN_TIMEOUT time.Duration
}

func LoadConfig() (*Config, error) {
	// Helper function to get environment variable with default value
	Env := func(key, defaultValue string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		return defaultValue
	}

	// Helper function to parse Duration from environment variable
	Duration := func(key string, defaultValue time.Duration) time.Duration {
		if value := os.Getenv(key); value != "" {
			if duration, err := time.ParseDuration(value); err == nil {
				return duration
			}
		}
		return defaultValue
	}

	// Helper function to parse boolean from environment variable
	Bool := func(key string, defaultValue bool) bool {
		if value := os.Getenv(key); value != "" {
			if boolValue, err := strconv.ParseBool(value); err == nil {
				return boolValue
			}
		}
		return defaultValue
	}

	// Helper function to parse integer from environment variable
	Int := func(key string, defaultValue int64) int64 {
		if value := os.Getenv(key); value != "" {
			if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
				return intValue
			}
		}
		return defaultValue
	}

	config := &Config{
		SERVICE_NAME:                Env("SERVICE_NAME", "loanflow"),
		SERVICE_VERSION:             Env("SERVICE_VERSION", "1.0.0"),
		ENVIRONMENT:                 Env("ENVIRONMENT", "production"),
		OTEL_EXPORTER_OTLP_ENDPOINT: Env("OTEL_EXPORTER_OTLP_ENDPOINT", "0.0.0.0:4317"),
		OTEL_RESOURCE_ATTRIBUTES:    Env("OTEL_RESOURCE_ATTRIBUTES", "service.name=loanflow,service.namespace=loanflow-group,deployment.environment=production"),
		LOG_LEVEL:                   Env("LOG_LEVEL", "info"),
		METRIC_INTERVAL:             Duration("METRIC_INTERVAL", 15*time.Second),
		RUNTIME_METRICS:             Bool("RUNTIME_METRICS", true),
		REQUESTS_METRIC:             Bool("REQUESTS_METRIC", true),
		DEVELOPMENT_MODE:            Bool("DEVELOPMENT_MODE", false),
		SERVER_PORT:                 Env("SERVER_PORT", "3001"),

		MYSQL_HOST:     Env("MYSQL_HOST", "127.0.0.1"),
		MYSQL_PORT:     Env("MYSQL_PORT", "3306"),
		MYSQL_USER:     Env("MYSQL_USER", "root"),
		MYSQL_PASSWORD: Env("MYSQL_PASSWORD", ""),
		MYSQL_DBNAME:   Env("MYSQL_DBNAME", "loan_system"),

		REDIS_ADDRESS:  Env("REDIS_ADDRESS", "localhost:6379"),
		REDIS_PASSWORD: Env("REDIS_PASSWORD", ""),

		CLOUDINARY_CLOUD:      Env("CLOUDINARY_CLOUD", ""),
		CLOUDINARY_API_KEY:    Env("CLOUDINARY_API_KEY", ""),
		CLOUDINARY_API_SECRET: Env("CLOUDINARY_API_SECRET", ""),

		UPLOAD_BACKEND: Env("UPLOAD_BACKEND", "disk"),
		UPLOAD_DIR:     Env("UPLOAD_DIR", "uploads"),
		SANCTION_DIR:   Env("SANCTION_DIR", "sanctions"),
		CUSTOMERS_FILE: Env("CUSTOMERS_FILE", "data/customers.json"),

		SESSION_BACKEND: Env("SESSION_BACKEND", "memory"),
		SESSION_TTL:     Duration("SESSION_TTL", 0),

		RATE_WITHIN_LIMIT:      Env("RATE_WITHIN_LIMIT", "13.5"),
		RATE_ABOVE_LIMIT:       Env("RATE_ABOVE_LIMIT", "14.5"),
		CREDIT_SCORE_THRESHOLD: int(Int("CREDIT_SCORE_THRESHOLD", 700)),
		LIMIT_MULTIPLIER:       Int("LIMIT_MULTIPLIER", 2),
		DEFAULT_MONTHLY_SALARY: Int("DEFAULT_MONTHLY_SALARY", 65000),
		EMI_PRECISION:          int32(Int("EMI_PRECISION", 28)),

		SHUTDOWN_TIMEOUT: Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	return config, nil
}
