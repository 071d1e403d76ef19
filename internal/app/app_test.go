package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// clearEnv はテスト実行環境の設定が混入しないよう関連する環境変数を空にする。
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SESSION_SECRET", "STORAGE_BACKEND", "DATABASE_URL", "REDIS_URL",
		"SESSION_MAX_AGE", "TIMELINE_LIMIT", "DISPLAY_TIMEZONE", "LOG_LEVEL",
		"SERVER_PORT", "BASE_URL", "COOKIE_DOMAIN", "CORS_ALLOWED_ORIGIN",
		"REVOCATION_CLEANUP_INTERVAL",
	} {
		t.Setenv(key, "")
	}
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func setTestEnv(t *testing.T) {
	t.Helper()
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "test-session-secret-32bytes-long!")
	t.Setenv("SERVER_PORT", "0")
}

func TestInit_WithValidConfig_Succeeds(t *testing.T) {
	setTestEnv(t)

	var buf bytes.Buffer
	cfg, err := Init(&buf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	if cfg.SessionSecret != "test-session-secret-32bytes-long!" {
		t.Errorf("SessionSecret = %q", cfg.SessionSecret)
	}

	// Verify that slog global logger is configured for JSON output
	slog.Default().Info("init test")
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log output, got error: %v\nraw: %s", err, buf.String())
	}
	if entry["msg"] != "init test" {
		t.Errorf("msg = %q, want %q", entry["msg"], "init test")
	}
}

func TestInit_AppliesLogLevel(t *testing.T) {
	setTestEnv(t)
	t.Setenv("LOG_LEVEL", "error")

	var buf bytes.Buffer
	if _, err := Init(&buf); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	slog.Default().Info("should be filtered")
	if strings.Contains(buf.String(), "should be filtered") {
		t.Error("info log should be filtered at error level")
	}
}

func TestInit_InvalidLogLevel_ReturnsError(t *testing.T) {
	setTestEnv(t)
	t.Setenv("LOG_LEVEL", "chatty")

	var buf bytes.Buffer
	if _, err := Init(&buf); err == nil {
		t.Fatal("expected error for invalid LOG_LEVEL, got nil")
	}
}

func TestInit_WithMissingConfig_ReturnsError(t *testing.T) {
	clearEnv(t)

	var buf bytes.Buffer
	cfg, err := Init(&buf)
	if err == nil {
		t.Fatal("expected error for missing required env vars, got nil")
	}
	if cfg != nil {
		t.Error("expected nil config on error")
	}
}

func TestMaskDatabaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://hitokoto:secret@db:5432/hitokoto?sslmode=disable", "postgres://hitokoto:xxxxx@db:5432/hitokoto?sslmode=disable"},
		{"redis://:secret@cache:6379/0", "redis://:xxxxx@cache:6379/0"},
		{"redis://cache:6379/0", "redis://cache:6379/0"},
		{"not a url", "***"},
	}

	for _, tt := range tests {
		if got := maskDatabaseURL(tt.in); got != tt.want {
			t.Errorf("maskDatabaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
