// Package config loads watchdog settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// ErrMissingRequired is returned when a required setting is absent.
var ErrMissingRequired = errors.New("missing required configuration")

// Config holds all configuration values for the watchdog.
type Config struct {
	// Terminal operations database (read-only)
	DatabaseURL string

	// Notification endpoint receiving alert payloads
	WebhookURL string

	PollInterval time.Duration
	DedupWindow  time.Duration

	// Shared dedup store; empty means process-local deduplication
	RedisURL string

	VesselCapacityKL          float64
	FallbackDischargeRateTPH  float64
	DischargeThresholdTPH     float64
	AvgInboundTruckRateTPH    float64
	InboundTruckCount         int
	ThroughputPerActiveBayTPH float64

	WebhookTimeout   time.Duration
	WebhookRateLimit float64

	// Port for /healthz, /readyz and /metrics
	HTTPPort int

	// OTLP gRPC collector; empty disables tracing
	OTELEndpoint string

	LogLevel string
}

// setting describes one configuration key.
type setting struct {
	key string
	env string
	def any
}

var settings = []setting{
	{"database_url", "TERMINAL_DB_URL", ""},
	{"webhook_url", "CHATBOT_WEBHOOK_URL", ""},
	{"poll_seconds", "WATCHDOG_POLL_SECONDS", 60},
	{"dedup_minutes", "WATCHDOG_ALERT_DEDUP_MINUTES", 30},
	{"redis_url", "WATCHDOG_REDIS_URL", ""},
	{"vessel_capacity_kl", "HORTON_SPHERE_CAPACITY_KL", 10000.0},
	{"fallback_discharge_rate_tph", "FALLBACK_TRUCK_DISCHARGE_RATE_TPH", 6.0},
	{"discharge_threshold_tph", "TRUCK_DISCHARGE_RATE_THRESHOLD_TPH", 12.0},
	{"avg_inbound_truck_rate_tph", "AVG_INBOUND_TRUCK_RATE_TPH", 1.25},
	{"inbound_truck_count", "INBOUND_TRUCK_COUNT", 10},
	{"throughput_per_active_bay_tph", "THROUGHPUT_PER_ACTIVE_BAY_TPH", 6.0},
	{"webhook_timeout", "WEBHOOK_TIMEOUT", "8s"},
	{"webhook_rate_limit", "WEBHOOK_RATE_LIMIT", 5.0},
	{"http_port", "PORT", 6162},
	{"otel_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT", ""},
	{"log_level", "LOG_LEVEL", "info"},
}

// Load reads configuration. Precedence: environment, then the YAML file at
// path (if non-empty), then defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	for _, s := range settings {
		v.SetDefault(s.key, s.def)
		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", s.env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var errs []error
	intVal := func(key string) int {
		n, err := cast.ToIntE(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return n
	}
	floatVal := func(key string) float64 {
		f, err := cast.ToFloat64E(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return f
	}

	cfg := &Config{
		DatabaseURL:               strings.TrimSpace(v.GetString("database_url")),
		WebhookURL:                strings.TrimSpace(v.GetString("webhook_url")),
		PollInterval:              time.Duration(intVal("poll_seconds")) * time.Second,
		DedupWindow:               time.Duration(intVal("dedup_minutes")) * time.Minute,
		RedisURL:                  strings.TrimSpace(v.GetString("redis_url")),
		VesselCapacityKL:          floatVal("vessel_capacity_kl"),
		FallbackDischargeRateTPH:  floatVal("fallback_discharge_rate_tph"),
		DischargeThresholdTPH:     floatVal("discharge_threshold_tph"),
		AvgInboundTruckRateTPH:    floatVal("avg_inbound_truck_rate_tph"),
		InboundTruckCount:         intVal("inbound_truck_count"),
		ThroughputPerActiveBayTPH: floatVal("throughput_per_active_bay_tph"),
		WebhookRateLimit:          floatVal("webhook_rate_limit"),
		HTTPPort:                  intVal("http_port"),
		OTELEndpoint:              strings.TrimSpace(v.GetString("otel_endpoint")),
		LogLevel:                  strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
	}

	timeout, err := cast.ToDurationE(v.Get("webhook_timeout"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid webhook_timeout: %w", err))
	}
	cfg.WebhookTimeout = timeout

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: database_url (env: TERMINAL_DB_URL)", ErrMissingRequired)
	}
	if c.WebhookURL == "" {
		return fmt.Errorf("%w: webhook_url (env: CHATBOT_WEBHOOK_URL)", ErrMissingRequired)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_seconds must be positive, got %v", c.PollInterval)
	}
	if c.DedupWindow <= 0 {
		return fmt.Errorf("dedup_minutes must be positive, got %v", c.DedupWindow)
	}
	if c.WebhookTimeout <= 0 {
		return fmt.Errorf("webhook_timeout must be positive, got %v", c.WebhookTimeout)
	}
	if c.InboundTruckCount < 0 {
		return fmt.Errorf("inbound_truck_count must not be negative, got %d", c.InboundTruckCount)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}
