package config

import (
	"fmt"
	"time"
)

// TelegramConfig represents the configuration for the Telegram Bot API
type TelegramConfig struct {
	BotToken       string
	PollTimeout    int
	RequestTimeout time.Duration
	Workers        int
	APIRate        float64
	APIBurst       int
}

// SpamConfig represents the configuration of the repeat tracker
type SpamConfig struct {
	Window    time.Duration
	Threshold int
	Shards    int
}

// StoreConfig represents the configuration of the badword store
type StoreConfig struct {
	Type          string
	Timeout       time.Duration
	SQLitePath    string
	MySQLDSN      string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// MetricsConfig represents the configuration of the metrics endpoint
type MetricsConfig struct {
	Enabled       bool
	ListenAddress string
}

// GetTelegram returns the Telegram configuration
func (c *Config) GetTelegram() (TelegramConfig, error) {
	timeout, err := c.GetDuration("telegram.request_timeout")
	if err != nil {
		return TelegramConfig{}, fmt.Errorf("invalid telegram.request_timeout: %w", err)
	}
	return TelegramConfig{
		BotToken:       c.GetString("telegram.bot_token"),
		PollTimeout:    c.GetInt("telegram.poll_timeout"),
		RequestTimeout: timeout,
		Workers:        c.GetInt("telegram.workers"),
		APIRate:        c.GetFloat64("telegram.api_rate"),
		APIBurst:       c.GetInt("telegram.api_burst"),
	}, nil
}

// GetSpam returns the repeat tracker configuration
func (c *Config) GetSpam() (SpamConfig, error) {
	if err := c.validateSpam(); err != nil {
		return SpamConfig{}, err
	}
	return SpamConfig{
		Window:    time.Duration(c.GetInt("spam.window_seconds")) * time.Second,
		Threshold: c.GetInt("spam.repeat_threshold"),
		Shards:    c.GetInt("spam.shards"),
	}, nil
}

// GetPrivilegedUserIDs returns the statically privileged user ids
func (c *Config) GetPrivilegedUserIDs() ([]int64, error) {
	return c.GetInt64List("privileged.user_ids")
}

// GetStore returns the badword store configuration
func (c *Config) GetStore() (StoreConfig, error) {
	timeout, err := c.GetDuration("store.timeout")
	if err != nil {
		return StoreConfig{}, fmt.Errorf("invalid store.timeout: %w", err)
	}
	return StoreConfig{
		Type:          c.GetString("store.type"),
		Timeout:       timeout,
		SQLitePath:    c.GetString("store.sqlite_path"),
		MySQLDSN:      c.GetString("store.mysql_dsn"),
		PostgresDSN:   c.GetString("store.postgres_dsn"),
		RedisAddr:     c.GetString("store.redis_addr"),
		RedisPassword: c.GetString("store.redis_password"),
		RedisDB:       c.GetInt("store.redis_db"),
		RedisPrefix:   c.GetString("store.redis_prefix"),
	}, nil
}

// GetMetrics returns the metrics configuration
func (c *Config) GetMetrics() MetricsConfig {
	return MetricsConfig{
		Enabled:       c.GetBool("metrics.enabled"),
		ListenAddress: c.GetString("metrics.listen_address"),
	}
}
