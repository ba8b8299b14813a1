package core

import (
	"fmt"
	"strings"
	"time"
)

type ServerConfig struct {
	Addr string `koanf:"addr" mapstructure:"addr"`
}

type WebhookConfig struct {
	SignatureKey      string `koanf:"signature_key" mapstructure:"signature_key"`
	SignatureHeader   string `koanf:"signature_header" mapstructure:"signature_header"`
	CorrelationWindow int    `koanf:"correlation_window_seconds" mapstructure:"correlation_window_seconds"`
	DispatchTimeout   int    `koanf:"dispatch_timeout_seconds" mapstructure:"dispatch_timeout_seconds"`
}

type ProviderConfig struct {
	BaseURL     string   `koanf:"base_url" mapstructure:"base_url"`
	APIKey      string   `koanf:"api_key" mapstructure:"api_key"`
	MainDoorIDs []string `koanf:"main_door_ids" mapstructure:"main_door_ids"`
}

type TwilioConfig struct {
	AccountSID string `koanf:"account_sid" mapstructure:"account_sid"`
	AuthToken  string `koanf:"auth_token" mapstructure:"auth_token"`
	FromNumber string `koanf:"from_number" mapstructure:"from_number"`
	BaseURL    string `koanf:"base_url" mapstructure:"base_url"`
}

type StorageConfig struct {
	Driver string `koanf:"driver" mapstructure:"driver"`
	DSN    string `koanf:"dsn" mapstructure:"dsn"`
	Debug  bool   `koanf:"debug" mapstructure:"debug"`
}

type RetentionConfig struct {
	MaxAgeDays    int `koanf:"max_age_days" mapstructure:"max_age_days"`
	SweepInterval int `koanf:"sweep_interval_minutes" mapstructure:"sweep_interval_minutes"`
}

type Config struct {
	ServiceName string          `koanf:"service_name" mapstructure:"service_name"`
	Server      ServerConfig    `koanf:"server" mapstructure:"server"`
	Webhook     WebhookConfig   `koanf:"webhook" mapstructure:"webhook"`
	Provider    ProviderConfig  `koanf:"provider" mapstructure:"provider"`
	Twilio      TwilioConfig    `koanf:"twilio" mapstructure:"twilio"`
	Storage     StorageConfig   `koanf:"storage" mapstructure:"storage"`
	Retention   RetentionConfig `koanf:"retention" mapstructure:"retention"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "access-notifier",
		Server: ServerConfig{
			Addr: ":3000",
		},
		Webhook: WebhookConfig{
			SignatureHeader:   "X-Signature",
			CorrelationWindow: 5,
			DispatchTimeout:   30,
		},
		Provider: ProviderConfig{
			BaseURL: "https://api.kisi.com",
		},
		Twilio: TwilioConfig{
			BaseURL: "https://api.twilio.com",
		},
		Storage: StorageConfig{
			Driver: "sqlite3",
			DSN:    "file:notifier.db?_foreign_keys=on",
		},
		Retention: RetentionConfig{
			MaxAgeDays:    90,
			SweepInterval: 60,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("core: server.addr is required")
	}
	if c.Webhook.CorrelationWindow < 0 {
		return fmt.Errorf("core: webhook.correlation_window_seconds must be >= 0")
	}
	if c.Retention.MaxAgeDays < 0 {
		return fmt.Errorf("core: retention.max_age_days must be >= 0")
	}
	return nil
}

// CorrelationWindow returns the configured unlock/open correlation window,
// falling back to the 5 second default.
func (c Config) CorrelationWindow() time.Duration {
	if c.Webhook.CorrelationWindow <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Webhook.CorrelationWindow) * time.Second
}

// DispatchTimeout bounds detached alert-dispatch tasks.
func (c Config) DispatchTimeout() time.Duration {
	if c.Webhook.DispatchTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Webhook.DispatchTimeout) * time.Second
}

// RetentionMaxAge converts the configured pruning horizon; zero disables
// pruning.
func (c Config) RetentionMaxAge() time.Duration {
	if c.Retention.MaxAgeDays <= 0 {
		return 0
	}
	return time.Duration(c.Retention.MaxAgeDays) * 24 * time.Hour
}

func (c Config) RetentionSweepInterval() time.Duration {
	if c.Retention.SweepInterval <= 0 {
		return time.Hour
	}
	return time.Duration(c.Retention.SweepInterval) * time.Minute
}
