// Package config loads service configuration from environment variables
// (CAPTURE_ prefix) with an optional config.yaml overlay.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App     AppConfig
	Log     LogConfig
	Redis   RedisConfig
	Tables  TablesConfig
	Queue   QueueConfig
	Capture CaptureConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name       string
	Env        string // local, dev, prod
	ListenAddr string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// RedisConfig holds Redis connection settings. An empty Addr selects the
// in-memory cache, for single-instance and local runs.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TablesConfig names the DynamoDB tables.
type TablesConfig struct {
	Records string
	Orders  string
	Carts   string
}

// QueueConfig holds the order-confirmed queue settings. An empty URL makes
// the HTTP hook process confirmations inline instead of enqueueing them.
type QueueConfig struct {
	URL string
}

// CaptureConfig holds the capture workflow knobs.
type CaptureConfig struct {
	LookupTTL     time.Duration // dedup window for both lookup caches
	MappingTTL    time.Duration // phone->record mapping lifetime
	NonceSecret   string
	NonceLifetime time.Duration
}

// Load reads configuration from the environment and an optional config file.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("app.name", "checkout-capture")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.listen_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("tables.records", "partial-checkouts")
	v.SetDefault("tables.orders", "orders")
	v.SetDefault("tables.carts", "carts")
	v.SetDefault("queue.url", "")
	v.SetDefault("capture.lookup_ttl", time.Hour)
	v.SetDefault("capture.mapping_ttl", 24*time.Hour)
	v.SetDefault("capture.nonce_secret", "")
	v.SetDefault("capture.nonce_lifetime", 24*time.Hour)

	v.SetEnvPrefix("CAPTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:       v.GetString("app.name"),
			Env:        v.GetString("app.env"),
			ListenAddr: v.GetString("app.listen_addr"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Tables: TablesConfig{
			Records: v.GetString("tables.records"),
			Orders:  v.GetString("tables.orders"),
			Carts:   v.GetString("tables.carts"),
		},
		Queue: QueueConfig{
			URL: v.GetString("queue.url"),
		},
		Capture: CaptureConfig{
			LookupTTL:     v.GetDuration("capture.lookup_ttl"),
			MappingTTL:    v.GetDuration("capture.mapping_ttl"),
			NonceSecret:   v.GetString("capture.nonce_secret"),
			NonceLifetime: v.GetDuration("capture.nonce_lifetime"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Capture.NonceSecret == "" && c.App.Env != "local" {
		return fmt.Errorf("capture.nonce_secret is required outside local env")
	}
	if c.Capture.LookupTTL <= 0 {
		return fmt.Errorf("capture.lookup_ttl must be positive")
	}
	if c.Capture.MappingTTL <= 0 {
		return fmt.Errorf("capture.mapping_ttl must be positive")
	}
	return nil
}
