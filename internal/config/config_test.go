package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATA_DIR", "")
	t.Setenv("STORY", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SAVE_NAMESPACE", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("AUTOSAVE_INTERVAL", "")

	cfg := Load()
	if cfg.DataDir != "data/stories" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "data/stories")
	}
	if cfg.SaveNamespace != "default" {
		t.Errorf("SaveNamespace = %q, want %q", cfg.SaveNamespace, "default")
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "development")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.AutosaveInterval != 60*time.Second {
		t.Errorf("AutosaveInterval = %v, want 60s", cfg.AutosaveInterval)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/stories")
	t.Setenv("STORY", "the_lighthouse_keeper.json")
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("SAVE_NAMESPACE", "beta")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AUTOSAVE_INTERVAL", "15")

	cfg := Load()
	if cfg.DataDir != "/srv/stories" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Story != "the_lighthouse_keeper.json" {
		t.Errorf("Story = %q", cfg.Story)
	}
	if cfg.RedisURL != "localhost:6379" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.SaveNamespace != "beta" {
		t.Errorf("SaveNamespace = %q", cfg.SaveNamespace)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.AutosaveInterval != 15*time.Second {
		t.Errorf("AutosaveInterval = %v, want 15s", cfg.AutosaveInterval)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"ERROR":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseSeconds(t *testing.T) {
	if got := parseSeconds("30"); got != 30*time.Second {
		t.Errorf("parseSeconds(30) = %v", got)
	}
	if got := parseSeconds("0"); got != 0 {
		t.Errorf("parseSeconds(0) = %v, want 0", got)
	}
	if got := parseSeconds("-5"); got != -5*time.Second {
		t.Errorf("parseSeconds(-5) = %v", got)
	}
	if got := parseSeconds("nope"); got != 60*time.Second {
		t.Errorf("parseSeconds(nope) = %v, want fallback 60s", got)
	}
}
