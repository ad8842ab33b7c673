package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL string

	JWTSecret string
	JWTTTL    time.Duration

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	// StorageDriver selects the image store: "cloudinary" or "minio".
	StorageDriver  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool
	MinioPublicURL string

	AdminEmails []string

	RateLimitGlobal     time.Duration
	RateLimitDiscussion time.Duration
	RateLimitAnswer     time.Duration
	RateLimitReply      time.Duration
	RateLimitFeedback   time.Duration
	RateLimitDocument   time.Duration

	// RealtimeTransport is "local", "redis" or "kafka". Empty picks redis
	// when REDIS_URL is set and local otherwise.
	RealtimeTransport string
	RealtimeQueueSize int
	KafkaBrokers      []string
	KafkaTopic        string

	ViewSyncSchedule string
}

func Load() (*Config, error) {
	// a missing .env is fine, production passes real env vars
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASS"),
		DBName:     getEnv("DB_NAME", "alienvault"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "alienvault"),

		StorageDriver:  getEnv("STORAGE_DRIVER", "cloudinary"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "alienvault"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),

		AdminEmails: splitList(strings.ToLower(os.Getenv("ADMIN_EMAILS"))),

		RealtimeTransport: os.Getenv("REALTIME_TRANSPORT"),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "alienvault.realtime"),

		ViewSyncSchedule: getEnv("VIEW_SYNC_SCHEDULE", "@every 1m"),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	ttlMinutes, err := strconv.Atoi(getEnv("JWT_TTL_MINUTES", "10080"))
	if err != nil || ttlMinutes <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL_MINUTES")
	}
	cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"RATE_LIMIT_GLOBAL", "2s", &cfg.RateLimitGlobal},
		{"RATE_LIMIT_DISCUSSION", "1m", &cfg.RateLimitDiscussion},
		{"RATE_LIMIT_ANSWER", "10s", &cfg.RateLimitAnswer},
		{"RATE_LIMIT_REPLY", "5s", &cfg.RateLimitReply},
		{"RATE_LIMIT_FEEDBACK", "30s", &cfg.RateLimitFeedback},
		{"RATE_LIMIT_DOCUMENT", "1m", &cfg.RateLimitDocument},
	}
	for _, d := range durations {
		*d.dst, err = parseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}

	cfg.RealtimeQueueSize, err = strconv.Atoi(getEnv("REALTIME_QUEUE_SIZE", "1024"))
	if err != nil || cfg.RealtimeQueueSize <= 0 {
		return nil, fmt.Errorf("invalid REALTIME_QUEUE_SIZE")
	}

	if cfg.RealtimeTransport == "" {
		cfg.RealtimeTransport = "local"
		if cfg.RedisURL != "" {
			cfg.RealtimeTransport = "redis"
		}
	}
	switch cfg.RealtimeTransport {
	case "local", "redis":
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("KAFKA_BROKERS is required for the kafka realtime transport")
		}
	default:
		return nil, fmt.Errorf("invalid REALTIME_TRANSPORT %q", cfg.RealtimeTransport)
	}

	switch cfg.StorageDriver {
	case "cloudinary":
	case "minio":
		if cfg.MinioEndpoint == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT is required for the minio storage driver")
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// IsAdminEmail reports whether email belongs to the configured admin list.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
