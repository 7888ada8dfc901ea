// Package config 는 환경 변수 기반의 애플리케이션 설정을 제공한다.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 는 애플리케이션 전체 설정을 보관한다.
// 기동 시 환경 변수에서 1회 읽어 이뮤터블로 취급한다.
type Config struct {
	// Database
	DatabaseURL string

	// Object storage (GridFS)
	MongoURL string
	MongoDB  string

	// Admin
	AdminToken  string
	AdminUserID string

	// Server
	ServerPort  string
	MetricsPort string
	BaseURL     string

	// CORS
	CORSAllowedOrigin string

	// Upload
	UploadMaxSize int64

	// Cache
	CacheTTL time.Duration

	// Rate Limit (req/min)
	RateLimitGeneral int
	RateLimitUpload  int

	// RSS import
	ImportFeedURLs      []string
	ImportCategorySlug  string
	ImportInterval      time.Duration
	ImportTimeout       time.Duration
	ImportMaxSize       int64
	ImportMaxConcurrent int

	// File reconcile
	ReconcileInterval time.Duration
	ReconcileMinAge   time.Duration
}

// Load 는 환경 변수에서 Config 를 읽는다.
// 작업 디렉터리에 .env 파일이 있으면 먼저 적재한다(기존 환경 변수는 덮어쓰지 않음).
// 필수 환경 변수가 미설정이면 에러를 반환한다.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.MongoURL = os.Getenv("MONGO_URL")
	if cfg.MongoURL == "" {
		missing = append(missing, "MONGO_URL")
	}

	cfg.AdminToken = os.Getenv("ADMIN_TOKEN")
	if cfg.AdminToken == "" {
		missing = append(missing, "ADMIN_TOKEN")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.MongoDB = getEnvString("MONGO_DB", "chongmu")
	cfg.AdminUserID = getEnvString("ADMIN_USER_ID", "admin")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.MetricsPort = getEnvString("METRICS_PORT", "9090")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.UploadMaxSize = getEnvInt64("UPLOAD_MAX_SIZE", 10*1024*1024)
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", 5*time.Minute)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitUpload = getEnvInt("RATE_LIMIT_UPLOAD", 10)
	cfg.ImportFeedURLs = splitCommaList(os.Getenv("IMPORT_FEED_URLS"))
	cfg.ImportCategorySlug = getEnvString("IMPORT_CATEGORY_SLUG", "news")
	cfg.ImportInterval = getEnvDuration("IMPORT_INTERVAL", 30*time.Minute)
	cfg.ImportTimeout = getEnvDuration("IMPORT_TIMEOUT", 10*time.Second)
	cfg.ImportMaxSize = getEnvInt64("IMPORT_MAX_SIZE", 5*1024*1024)
	cfg.ImportMaxConcurrent = getEnvInt("IMPORT_MAX_CONCURRENT", 4)
	cfg.ReconcileInterval = getEnvDuration("RECONCILE_INTERVAL", 24*time.Hour)
	cfg.ReconcileMinAge = getEnvDuration("RECONCILE_MIN_AGE", time.Hour)

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// splitCommaList 는 콤마 구분 목록을 공백 제거 후 슬라이스로 변환한다.
// 빈 입력은 nil 을 반환한다.
func splitCommaList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
