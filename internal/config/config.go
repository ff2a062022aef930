// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from an optional
// YAML file and environment variables. It provides a centralized Config struct
// used across the application.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Insecure defaults that must be overridden in production.
const (
	defaultPassword      = "changeme"
	defaultSessionSecret = "changeme"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host     string `yaml:"host" env:"APP_HOST" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"APP_PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"APP_ENV" env-default:"development"` // "development", "production", "testing"
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// Document store backend: "memory", "postgres", "sqlite", "mongo".
	DocstoreDriver string `yaml:"docstore_driver" env:"DOCSTORE_DRIVER" env-default:"postgres"`

	// PostgreSQL connection
	DBHost     string `yaml:"db_host" env:"POSTGRES_HOST" env-default:"localhost"`
	DBPort     string `yaml:"db_port" env:"POSTGRES_PORT" env-default:"5432"`
	DBUser     string `yaml:"db_user" env:"POSTGRES_USER" env-default:"scholarsite"`
	DBPassword string `yaml:"db_password" env:"POSTGRES_PASSWORD" env-default:"changeme"`
	DBName     string `yaml:"db_name" env:"POSTGRES_DB" env-default:"scholarsite"`

	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"scholarsite.db"`

	MongoURI string `yaml:"mongo_uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017/scholarsite"`

	// Valkey (Redis-compatible cache)
	ValkeyHost     string `yaml:"valkey_host" env:"VALKEY_HOST" env-default:"localhost"`
	ValkeyPort     string `yaml:"valkey_port" env:"VALKEY_PORT" env-default:"6379"`
	ValkeyPassword string `yaml:"valkey_password" env:"VALKEY_PASSWORD"`

	SessionSecret string `yaml:"session_secret" env:"SESSION_SECRET" env-default:"changeme"`

	// Reverse proxies (CIDRs or addresses) whose X-Forwarded-For is trusted
	// when rate limiting. Empty means clients are keyed by remote address.
	TrustedProxies []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES" env-separator:","`

	// Blob storage backend: "s3", "minio" or "none".
	BlobDriver  string `yaml:"blob_driver" env:"BLOB_DRIVER" env-default:"none"`
	S3Endpoint  string `yaml:"s3_endpoint" env:"S3_ENDPOINT"`
	S3Region    string `yaml:"s3_region" env:"S3_REGION" env-default:"us-east-1"`
	S3AccessKey string `yaml:"s3_access_key" env:"S3_ACCESS_KEY"`
	S3SecretKey string `yaml:"s3_secret_key" env:"S3_SECRET_KEY"`
	S3Bucket    string `yaml:"s3_bucket" env:"S3_BUCKET" env-default:"scholarsite"`
	S3PublicURL string `yaml:"s3_public_url" env:"S3_PUBLIC_URL"`
	S3UseSSL    bool   `yaml:"s3_use_ssl" env:"S3_USE_SSL" env-default:"true"`

	// Upload retry policy
	UploadMaxAttempts int           `yaml:"upload_max_attempts" env:"UPLOAD_MAX_ATTEMPTS" env-default:"3"`
	UploadBackoff     time.Duration `yaml:"upload_backoff" env:"UPLOAD_BACKOFF" env-default:"1s"`
	UploadMaxBytes    int64         `yaml:"upload_max_bytes" env:"UPLOAD_MAX_BYTES" env-default:"10485760"`
	ImageMaxDimension int           `yaml:"image_max_dimension" env:"IMAGE_MAX_DIMENSION" env-default:"2400"`
}

// Load reads configuration from the YAML file named by CONFIG_PATH (if set)
// and then from environment variables, applying development defaults.
// Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DocstoreDriver {
	case "memory", "postgres", "sqlite", "mongo":
	default:
		return fmt.Errorf("unknown DOCSTORE_DRIVER %q", c.DocstoreDriver)
	}

	switch c.BlobDriver {
	case "none", "s3", "minio":
	default:
		return fmt.Errorf("unknown BLOB_DRIVER %q", c.BlobDriver)
	}

	if c.UploadMaxAttempts < 1 {
		return fmt.Errorf("UPLOAD_MAX_ATTEMPTS must be at least 1")
	}

	if c.Env == "production" {
		if c.DocstoreDriver == "postgres" && c.DBPassword == defaultPassword {
			return fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if c.SessionSecret == defaultSessionSecret {
			return fmt.Errorf("SESSION_SECRET must be set in production")
		}
		if c.DocstoreDriver == "memory" {
			return fmt.Errorf("DOCSTORE_DRIVER=memory is not allowed in production")
		}
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
