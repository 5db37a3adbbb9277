package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxFileSizeBytes is the per-file upload ceiling (48 MiB).
	DefaultMaxFileSizeBytes = 48 << 20
	// DefaultMaxStorageBytes is the team-wide storage ceiling (1 GiB).
	DefaultMaxStorageBytes = 1 << 30
	// DefaultMaxMonthlyTokens is the monthly AI token ceiling.
	DefaultMaxMonthlyTokens = 20000
	// DefaultUploadWorkers bounds concurrent blob uploads per commit.
	DefaultUploadWorkers = 8
)

// Config holds application configuration.
type Config struct {
	Port             string
	CORSAllowOrigin  []string
	ObjectStoreType  string
	LocalStoreDir    string
	SpoolDir         string
	AWSRegion        string
	S3Bucket         string
	S3Prefix         string
	SSEKMSKeyID      string
	AIServiceURL     string
	AIServiceTimeout time.Duration
	MaxFileSizeBytes int64
	MaxStorageBytes  int64
	MaxMonthlyTokens int
	UploadWorkers    int
	DatabaseURL      string
	Env              string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:             getEnv("PORT", "8080"),
		CORSAllowOrigin:  splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType:  normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:    getEnv("LOCAL_STORE_DIR", "./data"),
		SpoolDir:         getEnv("SPOOL_DIR", "./data/spool"),
		AWSRegion:        getEnv("AWS_REGION", ""),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3Prefix:         getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:      getEnv("SSE_KMS_KEY_ID", ""),
		AIServiceURL:     getEnv("AI_SERVICE_URL", ""),
		AIServiceTimeout: getEnvDuration("AI_SERVICE_TIMEOUT", 120*time.Second),
		MaxFileSizeBytes: getEnvInt64("MAX_FILE_SIZE_BYTES", DefaultMaxFileSizeBytes),
		MaxStorageBytes:  getEnvInt64("MAX_STORAGE_BYTES", DefaultMaxStorageBytes),
		MaxMonthlyTokens: getEnvInt("MAX_MONTHLY_TOKENS", DefaultMaxMonthlyTokens),
		UploadWorkers:    getEnvInt("UPLOAD_WORKERS", DefaultUploadWorkers),
		DatabaseURL:      dbURL,
		Env:              env,
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("config: ignoring invalid %s=%q", key, raw)
		return def
	}
	return v
}

func getEnvInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		log.Printf("config: ignoring invalid %s=%q", key, raw)
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("config: ignoring invalid %s=%q", key, raw)
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
