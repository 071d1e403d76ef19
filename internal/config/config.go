// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	// 実行環境にタイムゾーンDBが無くてもDISPLAY_TIMEZONEを解決できるようにする
	_ "time/tzdata"
)

// 投稿ストアのバックエンド種別。
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// MaxTimelineLimit はTIMELINE_LIMITの上限。タイムラインは最大1000件の固定ウィンドウ。
const MaxTimelineLimit = 1000

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Storage
	StorageBackend string
	DatabaseURL    string
	RedisURL       string
	RedisKeyPrefix string

	// Session
	SessionSecret             string
	SessionMaxAge             int
	RevocationCleanupInterval time.Duration

	// Timeline
	TimelineLimit   int
	DisplayLocation *time.Location

	// Logging
	LogLevel string

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// SessionTTL はセッションの有効期間を返す。
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionMaxAge) * time.Second
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	cfg.StorageBackend = strings.ToLower(getEnvString("STORAGE_BACKEND", StorageMemory))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisURL = os.Getenv("REDIS_URL")

	switch cfg.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StorageRedis:
		if cfg.RedisURL == "" {
			missing = append(missing, "REDIS_URL")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q (memory, postgres, redis)", cfg.StorageBackend)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.RedisKeyPrefix = getEnvString("REDIS_KEY_PREFIX", "hitokoto")
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 604800)
	cfg.RevocationCleanupInterval = getEnvDuration("REVOCATION_CLEANUP_INTERVAL", time.Hour)
	cfg.TimelineLimit = getEnvInt("TIMELINE_LIMIT", MaxTimelineLimit)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "")

	if cfg.SessionMaxAge <= 0 {
		return nil, fmt.Errorf("SESSION_MAX_AGE must be positive, got %d", cfg.SessionMaxAge)
	}
	if cfg.TimelineLimit <= 0 || cfg.TimelineLimit > MaxTimelineLimit {
		return nil, fmt.Errorf("TIMELINE_LIMIT must be between 1 and %d, got %d", MaxTimelineLimit, cfg.TimelineLimit)
	}
	if cfg.RevocationCleanupInterval <= 0 {
		return nil, fmt.Errorf("REVOCATION_CLEANUP_INTERVAL must be positive, got %s", cfg.RevocationCleanupInterval)
	}

	tz := getEnvString("DISPLAY_TIMEZONE", "Asia/Tokyo")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", tz, err)
	}
	cfg.DisplayLocation = loc

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
