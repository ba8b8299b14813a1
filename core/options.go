package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
)

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

func NewStaticRawConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	server := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Server.Addr) != "" {
		server["addr"] = cfg.Server.Addr
	}
	if len(server) > 0 {
		layer["server"] = server
	}

	webhook := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Webhook.SignatureKey) != "" {
		webhook["signature_key"] = cfg.Webhook.SignatureKey
	}
	if includeZero || strings.TrimSpace(cfg.Webhook.SignatureHeader) != "" {
		webhook["signature_header"] = cfg.Webhook.SignatureHeader
	}
	if includeZero || cfg.Webhook.CorrelationWindow != 0 {
		webhook["correlation_window_seconds"] = cfg.Webhook.CorrelationWindow
	}
	if includeZero || cfg.Webhook.DispatchTimeout != 0 {
		webhook["dispatch_timeout_seconds"] = cfg.Webhook.DispatchTimeout
	}
	if len(webhook) > 0 {
		layer["webhook"] = webhook
	}

	provider := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Provider.BaseURL) != "" {
		provider["base_url"] = cfg.Provider.BaseURL
	}
	if includeZero || strings.TrimSpace(cfg.Provider.APIKey) != "" {
		provider["api_key"] = cfg.Provider.APIKey
	}
	if includeZero || len(cfg.Provider.MainDoorIDs) > 0 {
		provider["main_door_ids"] = append([]string(nil), cfg.Provider.MainDoorIDs...)
	}
	if len(provider) > 0 {
		layer["provider"] = provider
	}

	twilio := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Twilio.AccountSID) != "" {
		twilio["account_sid"] = cfg.Twilio.AccountSID
	}
	if includeZero || strings.TrimSpace(cfg.Twilio.AuthToken) != "" {
		twilio["auth_token"] = cfg.Twilio.AuthToken
	}
	if includeZero || strings.TrimSpace(cfg.Twilio.FromNumber) != "" {
		twilio["from_number"] = cfg.Twilio.FromNumber
	}
	if includeZero || strings.TrimSpace(cfg.Twilio.BaseURL) != "" {
		twilio["base_url"] = cfg.Twilio.BaseURL
	}
	if len(twilio) > 0 {
		layer["twilio"] = twilio
	}

	storage := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Storage.Driver) != "" {
		storage["driver"] = cfg.Storage.Driver
	}
	if includeZero || strings.TrimSpace(cfg.Storage.DSN) != "" {
		storage["dsn"] = cfg.Storage.DSN
	}
	if includeZero || cfg.Storage.Debug {
		storage["debug"] = cfg.Storage.Debug
	}
	if len(storage) > 0 {
		layer["storage"] = storage
	}

	retention := map[string]any{}
	if includeZero || cfg.Retention.MaxAgeDays != 0 {
		retention["max_age_days"] = cfg.Retention.MaxAgeDays
	}
	if includeZero || cfg.Retention.SweepInterval != 0 {
		retention["sweep_interval_minutes"] = cfg.Retention.SweepInterval
	}
	if len(retention) > 0 {
		layer["retention"] = retention
	}

	return layer
}
