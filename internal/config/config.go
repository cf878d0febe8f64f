// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port string

	// Token store (redis): opaque access tokens live under "access:<token>".
	RedisHost     string
	RedisPort     int
	RedisPassword string

	// Object storage (S3-compatible: MinIO locally, any S3 provider in production)
	MinioEndpoint  string
	MinioPort      int
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool

	// One bucket per application id: "<prefix>-app-<appId>".
	BucketPrefix      string
	AutoCreateBuckets bool

	// MaxUploadSize caps the JSON request body, not the uploaded file —
	// file bytes go directly to storage via the presigned URL.
	MaxUploadSize int64

	AllowedMimeTypes   []string
	UploadURLExpiresIn int

	// RateLimitUploadURLMax is the per-IP issuance quota per minute.
	RateLimitUploadURLMax int
}

// Load reads configuration from a .env file (if present) and environment
// variables. It fails when a required variable is missing or blank.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "3000"),
		RedisHost:     strings.TrimSpace(os.Getenv("REDIS_HOST")),
		RedisPort:     getEnvInt("REDIS_PORT", 6379),
		RedisPassword: strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),

		MinioEndpoint:  strings.TrimSpace(os.Getenv("MINIO_ENDPOINT")),
		MinioPort:      getEnvInt("MINIO_PORT", 9000),
		MinioAccessKey: strings.TrimSpace(os.Getenv("MINIO_ACCESS_KEY")),
		MinioSecretKey: strings.TrimSpace(os.Getenv("MINIO_SECRET_KEY")),
		MinioUseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",

		BucketPrefix:      getEnv("MINIO_BUCKET_PREFIX", "files"),
		AutoCreateBuckets: getEnv("AUTO_CREATE_BUCKETS", "false") == "true",

		MaxUploadSize: getEnvInt64("MAX_UPLOAD_SIZE", 10*1024*1024),

		AllowedMimeTypes:   getEnvList("ALLOWED_MIME_TYPES", defaultMimeTypes()),
		UploadURLExpiresIn: getEnvInt("UPLOAD_URL_EXPIRES_IN", 120),

		RateLimitUploadURLMax: getEnvInt("RATE_LIMIT_UPLOAD_URL_MAX", 30),
	}

	required := map[string]string{
		"REDIS_HOST":       cfg.RedisHost,
		"MINIO_ENDPOINT":   cfg.MinioEndpoint,
		"MINIO_ACCESS_KEY": cfg.MinioAccessKey,
		"MINIO_SECRET_KEY": cfg.MinioSecretKey,
	}
	for key, val := range required {
		if val == "" {
			return nil, fmt.Errorf("missing required env: %s", key)
		}
	}

	return cfg, nil
}

// RedisAddr returns the host:port address of the token store.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// MinioAddr returns the host:port address of the storage endpoint.
func (c *Config) MinioAddr() string {
	return fmt.Sprintf("%s:%d", c.MinioEndpoint, c.MinioPort)
}

func defaultMimeTypes() []string {
	return []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
		"application/pdf",
		"text/plain",
		"application/json",
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func getEnvInt64(key string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(key)), 10, 64)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func getEnvList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
