package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment
// variables. It is constructed once at process start and passed read-only
// into the components that need it; leaf components never read configuration
// on their own.
type Config struct {
	AppEnv          string
	Port            string
	ResolverBaseURL string

	// DownloadEnabled switches the whole retrieval feature on or off.
	DownloadEnabled bool
	// DownloadPath is the root of the on-disk artifact cache.
	DownloadPath string
	// DownloadFilePrefix is prepended to storage filenames when the caller
	// asks for prefixed names.
	DownloadFilePrefix string
	// MaxBatchURLs caps how many links one batch run accepts.
	MaxBatchURLs int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		ResolverBaseURL:    os.Getenv("RESOLVER_BASE_URL"),
		DownloadEnabled:    getEnvBool("DOWNLOAD_ENABLED", true),
		DownloadPath:       getEnv("DOWNLOAD_PATH", "./downloads"),
		DownloadFilePrefix: getEnv("DOWNLOAD_FILE_PREFIX", "mediagrab_"),
		MaxBatchURLs:       getEnvInt("MAX_BATCH_URLS", 20),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.ResolverBaseURL == "" {
		return nil, fmt.Errorf("RESOLVER_BASE_URL is required")
	}
	if cfg.MaxBatchURLs <= 0 {
		return nil, fmt.Errorf("MAX_BATCH_URLS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
