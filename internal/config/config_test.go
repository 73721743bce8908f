//go:build !integration

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"crypto-actus-bot/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TELEGRAM_TOKEN", "CRYPTOCOMPARE_API_KEY", "WEBHOOK_URL", "PORT", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadConfig_FromYAML(t *testing.T) {
	clearEnv(t)
	p := writeConfig(t, `
bot:
  token: "123:abc"
  workers: 2
  lang: en
webhook:
  url: "https://bot.example.com/"
  port: 9000
news:
  api_key: "k"
  timeout: 7s
  limit: 3
log:
  level: debug
  format: console
`)

	cfg, err := LoadConfig(p, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bot.Token != "123:abc" || cfg.Bot.Workers != 2 || cfg.Bot.Lang != "en" {
		t.Errorf("unexpected bot config: %+v", cfg.Bot)
	}
	if cfg.Webhook.URL != "https://bot.example.com" {
		t.Errorf("trailing slash should be trimmed, got %q", cfg.Webhook.URL)
	}
	if cfg.Webhook.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Webhook.Port)
	}
	if cfg.News.Timeout != 7*time.Second || cfg.News.Limit != 3 {
		t.Errorf("unexpected news config: %+v", cfg.News)
	}
	if cfg.News.Endpoint != DefaultNewsEndpoint || cfg.News.Lang != "FR" {
		t.Errorf("news defaults not applied: %+v", cfg.News)
	}
	if !cfg.Runtime.Dev {
		t.Error("expected dev mode")
	}
	if !cfg.WebhookMode() {
		t.Error("expected webhook mode when webhook.url is set")
	}
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("CRYPTOCOMPARE_API_KEY", "env-key")
	t.Setenv("PORT", "10000")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bot.Token != "env-token" || cfg.News.APIKey != "env-key" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Webhook.Port != 10000 {
		t.Errorf("expected PORT override, got %d", cfg.Webhook.Port)
	}
	if cfg.News.Timeout != DefaultNewsTimeout || cfg.News.Limit != DefaultNewsLimit {
		t.Errorf("defaults not applied: %+v", cfg.News)
	}
	if cfg.Bot.Workers != 4 || cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("defaults not applied: %+v %+v", cfg.Bot, cfg.Log)
	}
	if cfg.WebhookMode() {
		t.Error("expected polling mode without a webhook url")
	}
}

func TestLoadConfig_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEBHOOK_URL", "https://env.example.com")
	p := writeConfig(t, "bot:\n  token: yaml\n  mode: polling\nnews:\n  api_key: yaml\nwebhook:\n  url: https://yaml.example.com\n")

	cfg, err := LoadConfig(p, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Webhook.URL != "https://env.example.com" {
		t.Errorf("expected env webhook url, got %q", cfg.Webhook.URL)
	}
	if cfg.WebhookMode() {
		t.Error("explicit polling mode must win over a configured webhook url")
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		clearEnv(t)
		p := writeConfig(t, "news:\n  api_key: k\n")
		if _, err := LoadConfig(p, false); !errors.Is(err, domain.ErrMissingToken) {
			t.Fatalf("expected ErrMissingToken, got %v", err)
		}
	})

	t.Run("missing api key", func(t *testing.T) {
		clearEnv(t)
		p := writeConfig(t, "bot:\n  token: t\n")
		if _, err := LoadConfig(p, false); !errors.Is(err, domain.ErrMissingNewsAPIKey) {
			t.Fatalf("expected ErrMissingNewsAPIKey, got %v", err)
		}
	})

	t.Run("bad port", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "eighty")
		p := writeConfig(t, "bot:\n  token: t\nnews:\n  api_key: k\n")
		if _, err := LoadConfig(p, false); err == nil {
			t.Fatal("expected error for a non-numeric PORT")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		clearEnv(t)
		p := writeConfig(t, "bot: [unclosed\n")
		if _, err := LoadConfig(p, false); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestNormalizeTimeout(t *testing.T) {
	tests := []struct {
		in, want time.Duration
	}{
		{0, DefaultNewsTimeout},
		{-time.Second, DefaultNewsTimeout},
		{100 * time.Millisecond, MinNewsTimeout},
		{2 * time.Second, MinNewsTimeout},
		{5 * time.Second, 5 * time.Second},
		{10 * time.Second, 10 * time.Second},
		{8 * time.Second, 8 * time.Second},
		{time.Minute, MaxNewsTimeout},
	}
	for _, tt := range tests {
		if got := normalizeTimeout(tt.in); got != tt.want {
			t.Errorf("normalizeTimeout(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
