package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from the environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Minio     MinioConfig
	Klaviyo   KlaviyoConfig
	Sync      SyncConfig
	Identity  IdentityConfig
	Secrets   SecretsConfig
	OpenAIKey string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds the Postgres connection string.
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MinioConfig holds object storage settings for branding assets.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// KlaviyoConfig holds external marketing API settings shared by all clients.
type KlaviyoConfig struct {
	BaseURL            string
	Revision           string
	TimeoutSeconds     int
	MaxRetries         int
	RetryDelaySecs     int
	ConversionMetricID string
}

// SyncConfig holds sync orchestration settings.
type SyncConfig struct {
	APIKey          string // bearer key guarding the sync routes
	Workers         int    // sync-all worker pool size
	IntervalMinutes int    // scheduled sync-all cadence, 0 disables
}

// IdentityConfig holds identity-provider settings for dashboard auth
// and account administration.
type IdentityConfig struct {
	JWKSURL        string
	AdminURL       string
	ServiceRoleKey string
}

// SecretsConfig holds the credential encryption key.
type SecretsConfig struct {
	EncryptionKey string // 64 hex chars, 32 bytes
}

// Load reads configuration from the environment. Outside production it
// first loads env.local if present.
func Load() (*Config, error) {
	if os.Getenv("GO_ENV") != "production" {
		_ = godotenv.Load("env.local")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("PORT", 8080),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			Addr:     envString("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		Minio: MinioConfig{
			Endpoint:  envString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: envString("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: envString("MINIO_SECRET_KEY", "minioadmin"),
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
			Bucket:    envString("MINIO_BUCKET", "pulsedash-branding"),
		},
		Klaviyo: KlaviyoConfig{
			BaseURL:            envString("KLAVIYO_BASE_URL", "https://a.klaviyo.com/api"),
			Revision:           envString("KLAVIYO_REVISION", "2024-10-15"),
			TimeoutSeconds:     envInt("KLAVIYO_TIMEOUT_SECONDS", 30),
			MaxRetries:         envInt("KLAVIYO_MAX_RETRIES", 3),
			RetryDelaySecs:     envInt("KLAVIYO_RETRY_DELAY_SECONDS", 5),
			ConversionMetricID: os.Getenv("KLAVIYO_CONVERSION_METRIC_ID"),
		},
		Sync: SyncConfig{
			APIKey:          os.Getenv("SYNC_API_KEY"),
			Workers:         envInt("SYNC_WORKERS", 4),
			IntervalMinutes: envInt("SYNC_INTERVAL_MINUTES", 360),
		},
		Identity: IdentityConfig{
			JWKSURL:        os.Getenv("IDENTITY_JWKS_URL"),
			AdminURL:       os.Getenv("IDENTITY_ADMIN_URL"),
			ServiceRoleKey: os.Getenv("IDENTITY_SERVICE_ROLE_KEY"),
		},
		Secrets: SecretsConfig{
			EncryptionKey: os.Getenv("CREDENTIAL_ENCRYPTION_KEY"),
		},
		OpenAIKey: os.Getenv("OPENAI_API_KEY"),
	}

	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}
	if cfg.Sync.APIKey == "" {
		return nil, errors.New("SYNC_API_KEY environment variable is required")
	}
	if cfg.Secrets.EncryptionKey == "" {
		return nil, errors.New("CREDENTIAL_ENCRYPTION_KEY environment variable is required")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
