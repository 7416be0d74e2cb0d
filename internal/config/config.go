package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "ClaimsPortal"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultAWSRegion      = "eu-west-2"
	defaultTokenTTL       = time.Hour
	defaultPresignTTL     = time.Hour
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultAdminEmail     = "admin@healthcare.com"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	AWSRegion   string
	AWSEndpoint string
	DynamoTable string
	S3Bucket    string
	SQSQueueURL string

	// JWTSecret overrides the Secrets Manager lookup when set; otherwise the
	// secret named JWTSecretName is fetched at runtime.
	JWTSecret     string
	JWTSecretName string
	TokenTTL      time.Duration
	PresignTTL    time.Duration

	DatabaseURL string
	RedisURL    string

	AdminEmail    string
	AdminPassword string

	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		AWSRegion:      getEnv("AWS_REGION", defaultAWSRegion),
		AWSEndpoint:    os.Getenv("AWS_ENDPOINT_URL"),
		DynamoTable:    os.Getenv("DDB_TABLE"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		SQSQueueURL:    os.Getenv("SQS_QUEUE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTSecretName:  getEnv("JWT_SECRET_NAME", "jwt_secret"),
		TokenTTL:       defaultTokenTTL,
		PresignTTL:     defaultPresignTTL,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		AdminEmail:     getEnv("ADMIN_EMAIL", defaultAdminEmail),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		ShutdownPeriod: defaultShutdownDelay,
		IdempotencyTTL: defaultIdempotencyTTL,
	}

	var err error
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL_SECONDS", "TOKEN_TTL", cfg.TokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.PresignTTL, err = durationEnv("PRESIGN_TTL_SECONDS", "PRESIGN_TTL", cfg.PresignTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT_SECONDS", "SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL_SECONDS", "IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}

	if !cfg.IsDev() {
		if cfg.DynamoTable == "" && cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DDB_TABLE or DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.JWTSecret == "" && cfg.JWTSecretName == "" {
			return Config{}, fmt.Errorf("JWT_SECRET or JWT_SECRET_NAME must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// durationEnv resolves a duration from either a seconds variable or a
// Go-duration variable, preferring the former.
func durationEnv(secondsVar, durationVar string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsVar, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationVar, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
