package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Backend string `mapstructure:"backend"` // "slog" or "zap"
	Format  string `mapstructure:"format"`  // "json" or "text"
}

// StoreConfig selects the event/insight store implementation.
type StoreConfig struct {
	Driver     string `mapstructure:"driver"` // "supabase" or "sqlite"
	SQLitePath string `mapstructure:"sqlite_path"`
}

// SupabaseConfig holds Supabase-specific configuration
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// EngineConfig tunes the circadian rule engine.
type EngineConfig struct {
	// Timezone is the location in which hour-of-day rule math is evaluated.
	// Event timestamps stay absolute instants; only rule evaluation converts.
	Timezone string `mapstructure:"timezone"`
	// SleepWindow is the rolling look-back size for sleep onset statistics.
	SleepWindow int `mapstructure:"sleep_window"`
	// FastReminderHours is the deferred delivery offset for long_fast insights.
	FastReminderHours int `mapstructure:"fast_reminder_hours"`
}

// FastReminder returns the long_fast scheduling offset as a duration.
func (e EngineConfig) FastReminder() time.Duration {
	return time.Duration(e.FastReminderHours) * time.Hour
}

// Location resolves the configured rule timezone.
func (e EngineConfig) Location() (*time.Location, error) {
	if e.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(e.Timezone)
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.backend", "slog")
	v.SetDefault("log.format", "json")
	v.SetDefault("store.driver", "supabase")
	v.SetDefault("store.sqlite_path", "circadia.db")
	v.SetDefault("engine.timezone", "UTC")
	v.SetDefault("engine.sleep_window", 7)
	v.SetDefault("engine.fast_reminder_hours", 16)

	v.SetEnvPrefix("CIRCADIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also bind to non-prefixed environment variables used by the hosting platform
	v.BindEnv("server.port", "PORT")
	v.BindEnv("supabase.url", "SUPABASE_URL")
	v.BindEnv("supabase.service_key", "SUPABASE_SERVICE_KEY")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// It's okay if config file doesn't exist
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that all required configuration values are present
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "supabase":
		if c.Supabase.URL == "" {
			return fmt.Errorf("SUPABASE_URL is required")
		}
		if c.Supabase.ServiceKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Engine.SleepWindow <= 0 {
		return fmt.Errorf("engine.sleep_window must be positive")
	}
	if c.Engine.FastReminderHours <= 0 {
		return fmt.Errorf("engine.fast_reminder_hours must be positive")
	}
	if _, err := c.Engine.Location(); err != nil {
		return fmt.Errorf("invalid engine.timezone: %w", err)
	}

	return nil
}
