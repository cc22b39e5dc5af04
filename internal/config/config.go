package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the service needs at startup. Values come from
// an optional YAML file plus environment overrides; env wins.
type Config struct {
	// Feed gateway (RapidAPI crypto news).
	FeedURL     string `mapstructure:"feed_url"`
	FeedAPIKey  string `mapstructure:"feed_api_key"`
	FeedAPIHost string `mapstructure:"feed_api_host"`
	ProxyURL    string `mapstructure:"proxy_url"`

	// Delivery channel.
	TelegramToken string `mapstructure:"telegram_token"`

	// Storage.
	DBPath string `mapstructure:"db_path"`

	// Optional event sink config file (YAML/JSON). Empty disables sinks.
	SinksConfigPath string `mapstructure:"sinks_config_path"`

	// Schedule, standard five-field cron specs.
	MorningCron string `mapstructure:"morning_cron"`
	EveningCron string `mapstructure:"evening_cron"`

	// Batching.
	MaxMessageLen int `mapstructure:"max_message_len"`
	SeparatorLen  int `mapstructure:"separator_len"`

	// Delivery fan-out cap across subscribers.
	DeliveryFanout int `mapstructure:"delivery_fanout"`

	// Thumbnail enrichment worker count; 0 disables enrichment.
	EnrichWorkers int `mapstructure:"enrich_workers"`

	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
}

// Load reads configuration from the given file path (optional) and the
// environment. Environment keys are upper-cased with underscores, e.g.
// feed_api_key -> FEED_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("feed_url", "https://cryptocurrency-news2.p.rapidapi.com/v1/cryptodaily")
	v.SetDefault("feed_api_host", "cryptocurrency-news2.p.rapidapi.com")
	// Empty defaults keep env-only keys visible to Unmarshal.
	v.SetDefault("feed_api_key", "")
	v.SetDefault("telegram_token", "")
	v.SetDefault("proxy_url", "")
	v.SetDefault("sinks_config_path", "")
	v.SetDefault("db_path", "newsdigest.db")
	v.SetDefault("morning_cron", "30 5 * * *")
	v.SetDefault("evening_cron", "30 17 * * *")
	v.SetDefault("max_message_len", 4096)
	v.SetDefault("separator_len", 26)
	v.SetDefault("delivery_fanout", 16)
	v.SetDefault("enrich_workers", 4)
	v.SetDefault("request_timeout", 15*time.Second)
	v.SetDefault("log_level", "info")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.sanitize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sanitize trims string fields and normalizes obvious slack.
func (c *Config) sanitize() {
	c.FeedURL = strings.TrimSpace(c.FeedURL)
	c.FeedAPIKey = strings.TrimSpace(c.FeedAPIKey)
	c.FeedAPIHost = strings.TrimSpace(c.FeedAPIHost)
	c.ProxyURL = strings.TrimSpace(c.ProxyURL)
	c.TelegramToken = strings.TrimSpace(c.TelegramToken)
	c.DBPath = strings.TrimSpace(c.DBPath)
	c.SinksConfigPath = strings.TrimSpace(c.SinksConfigPath)
	c.MorningCron = strings.TrimSpace(c.MorningCron)
	c.EveningCron = strings.TrimSpace(c.EveningCron)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// Validate checks that required fields are present and limits are sane.
func (c *Config) Validate() error {
	if c.FeedURL == "" {
		return errors.New("feed_url is required")
	}
	if c.FeedAPIKey == "" {
		return errors.New("feed_api_key is required")
	}
	if c.TelegramToken == "" {
		return errors.New("telegram_token is required")
	}
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	if c.MaxMessageLen <= 0 {
		return errors.New("max_message_len must be positive")
	}
	if c.SeparatorLen < 2 {
		return errors.New("separator_len must be at least 2")
	}
	if c.DeliveryFanout <= 0 {
		return errors.New("delivery_fanout must be positive")
	}
	if c.EnrichWorkers < 0 {
		return errors.New("enrich_workers cannot be negative")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	return nil
}
