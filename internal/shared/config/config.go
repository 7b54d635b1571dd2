package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration for both the ingestion backend
// and the gateway.
type Config struct {
	Env             string
	CORSAllowOrigin []string

	// Ingestion backend.
	BackendPort     string
	ObjectStoreType string
	LocalStoreDir   string
	IndexDir        string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	OCRServiceURL   string
	OCRTimeout      time.Duration
	OCRPoolSize     int
	MaxUploadBytes  int64

	// Gateway.
	GatewayPort     string
	BackendURL      string
	APIKeys         []string
	RateLimitWindow time.Duration
	RateLimitMax    int
	ProxyTimeout    time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		BackendPort:     getEnv("BACKEND_PORT", "3000"),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		IndexDir:        getEnv("INDEX_DIR", "./data/index"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		OCRServiceURL:   getEnv("OCR_SERVICE_URL", "http://localhost:5000"),
		OCRTimeout:      getDuration("OCR_TIMEOUT", 120*time.Second),
		OCRPoolSize:     getInt("OCR_POOL_SIZE", 0),
		MaxUploadBytes:  int64(getInt("MAX_UPLOAD_MB", 50)) << 20,

		GatewayPort:     getEnv("GATEWAY_PORT", "4000"),
		BackendURL:      strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:3000"), "/"),
		APIKeys:         splitAndTrim(getEnv("API_KEYS", "")),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitMax:    getInt("RATE_LIMIT_MAX", 60),
		ProxyTimeout:    getDuration("PROXY_TIMEOUT", 130*time.Second),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
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
	case "local":
		return "local"
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
