// Package config loads dayplan's configuration from an optional YAML file
// overridden by environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "DAYPLAN_"

// Config keeps runtime settings for the service.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Timer    TimerConfig
	Notify   NotifyConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimit       float64       `koanf:"rate_limit"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// LogConfig selects logger verbosity and encoding.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TimerConfig holds the pomodoro cycle lengths in seconds.
type TimerConfig struct {
	WorkSeconds       int `koanf:"work_seconds"`
	ShortBreakSeconds int `koanf:"short_break_seconds"`
	LongBreakSeconds  int `koanf:"long_break_seconds"`
	LongBreakEvery    int `koanf:"long_break_every"`
}

// NotifyConfig holds the outbound notification settings. An empty token
// disables the Telegram channel.
type NotifyConfig struct {
	TelegramToken       string `koanf:"telegram_token"`
	DailySummaryTime    string `koanf:"daily_summary_time"`
	ReportIntervalHours int    `koanf:"report_interval_hours"`
}

// ReportInterval returns the interval between progress reports, or zero
// when interval reports are disabled.
func (n NotifyConfig) ReportInterval() time.Duration {
	if n.ReportIntervalHours <= 0 {
		return 0
	}
	return time.Duration(n.ReportIntervalHours) * time.Hour
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Load reads the YAML file at path, if any, then overrides with DAYPLAN_*
// environment variables and fills the remaining fields with defaults.
//
// Environment variables map onto config keys by section and field:
//
//	DAYPLAN_SERVER_PORT          -> server.port
//	DAYPLAN_DATABASE_PATH        -> database.path
//	DAYPLAN_TIMER_WORK_SECONDS   -> timer.work_seconds
//	DAYPLAN_NOTIFY_TELEGRAM_TOKEN -> notify.telegram_token
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// envToKey maps DAYPLAN_SECTION_FIELD_NAME to section.field_name: the first
// underscore after the prefix separates the section, the rest stay part of
// the field name.
func envToKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = 20
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "dayplan.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Timer.WorkSeconds == 0 {
		cfg.Timer.WorkSeconds = 1500
	}
	if cfg.Timer.ShortBreakSeconds == 0 {
		cfg.Timer.ShortBreakSeconds = 300
	}
	if cfg.Timer.LongBreakSeconds == 0 {
		cfg.Timer.LongBreakSeconds = 900
	}
	if cfg.Timer.LongBreakEvery == 0 {
		cfg.Timer.LongBreakEvery = 4
	}
	if cfg.Notify.DailySummaryTime == "" {
		cfg.Notify.DailySummaryTime = "08:00"
	}
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q is not json or console", c.Log.Format)
	}
	if c.Timer.WorkSeconds <= 0 || c.Timer.ShortBreakSeconds <= 0 || c.Timer.LongBreakSeconds <= 0 {
		return fmt.Errorf("timer durations must be positive")
	}
	if c.Timer.LongBreakEvery <= 0 {
		return fmt.Errorf("timer.long_break_every must be positive")
	}
	if _, err := time.Parse("15:04", c.Notify.DailySummaryTime); err != nil {
		return fmt.Errorf("notify.daily_summary_time %q is not HH:MM", c.Notify.DailySummaryTime)
	}
	return nil
}
