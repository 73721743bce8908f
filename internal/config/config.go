// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"crypto-actus-bot/internal/domain"
)

const (
	DefaultNewsEndpoint = "https://min-api.cryptocompare.com/data/v2/news/"
	DefaultNewsTimeout  = 5 * time.Second
	MinNewsTimeout      = 5 * time.Second
	MaxNewsTimeout      = 10 * time.Second
	DefaultNewsLimit    = 5
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token       string `yaml:"token"`
	Mode        string `yaml:"mode"`    // polling | webhook; empty picks webhook when webhook.url is set
	Workers     int    `yaml:"workers"` // polling workers
	Lang        string `yaml:"lang"`
	APIEndpoint string `yaml:"api_endpoint"` // optional, tgbotapi format "https://host/bot%s/%s"
	Debug       bool   `yaml:"debug"`
}

type WebhookConfig struct {
	URL  string `yaml:"url"` // public base URL; the bot token is appended as the path
	Port int    `yaml:"port"`
}

type NewsConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Lang     string        `yaml:"lang"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
	Limit    int           `yaml:"limit"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Webhook WebhookConfig `yaml:"webhook"`
	News    NewsConfig    `yaml:"news"`
	Log     LogConfig     `yaml:"log"`

	Runtime RuntimeConfig `yaml:"-"`
}

// WebhookMode reports whether updates arrive through the webhook route instead of polling.
func (c *Config) WebhookMode() bool {
	switch strings.ToLower(strings.TrimSpace(c.Bot.Mode)) {
	case "polling":
		return false
	case "webhook":
		return true
	default:
		return c.Webhook.URL != ""
	}
}

// LoadConfig reads an optional .env file, the YAML file at path (a missing file is fine, the
// bot can run from the environment alone), then applies environment overrides.
func LoadConfig(path string, dev bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("CRYPTOCOMPARE_API_KEY"); v != "" {
		cfg.News.APIKey = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PORT %q: %w", v, err)
		}
		cfg.Webhook.Port = port
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 4
	}
	if cfg.Bot.Lang == "" {
		cfg.Bot.Lang = "fr"
	}
	cfg.Webhook.URL = strings.TrimRight(strings.TrimSpace(cfg.Webhook.URL), "/")
	if cfg.Webhook.Port <= 0 {
		cfg.Webhook.Port = 8080
	}
	if cfg.News.Endpoint == "" {
		cfg.News.Endpoint = DefaultNewsEndpoint
	}
	if cfg.News.Lang == "" {
		cfg.News.Lang = "FR"
	}
	cfg.News.Timeout = normalizeTimeout(cfg.News.Timeout)
	if cfg.News.Limit <= 0 {
		cfg.News.Limit = DefaultNewsLimit
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Validate checks the settings without which the bot cannot start.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Bot.Token) == "" {
		return domain.ErrMissingToken
	}
	if strings.TrimSpace(c.News.APIKey) == "" {
		return domain.ErrMissingNewsAPIKey
	}
	return nil
}

func normalizeTimeout(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultNewsTimeout
	case d < MinNewsTimeout:
		return MinNewsTimeout
	case d > MaxNewsTimeout:
		return MaxNewsTimeout
	}
	return d
}
