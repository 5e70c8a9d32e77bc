package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	School    SchoolConfig    `mapstructure:"school"`
	Settings  SettingsConfig  `mapstructure:"settings"`
	Source    SourceConfig    `mapstructure:"source"`
	OneSignal OneSignalConfig `mapstructure:"onesignal"`
	Facebook  FacebookConfig  `mapstructure:"facebook"`
	Briefing  BriefingConfig  `mapstructure:"briefing"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// DatabaseConfig configures the preference store. Driver is "sqlite" or
// "postgres"; DSN is the sqlite file path or the postgres connection string.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig configures the data-source cache.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// AuthConfig holds the webhook shared secret and the JWT signing secret for
// the user-settings portal.
type AuthConfig struct {
	WebhookToken string `mapstructure:"webhook_token"`
	JWTSecret    string `mapstructure:"jwt_secret"`
}

// SchoolConfig names the school the bot serves.
type SchoolConfig struct {
	Name string `mapstructure:"name"`
}

// SettingsConfig configures the self-service settings portal.
type SettingsConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	AllowOrigin string `mapstructure:"allow_origin"`
}

// SourceConfig configures the upstream parser API the bot reads meal,
// timetable, calendar and weather data from.
type SourceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OneSignalConfig holds the push notification credentials.
type OneSignalConfig struct {
	AppID  string `mapstructure:"app_id"`
	APIKey string `mapstructure:"api_key"`
}

// FacebookConfig holds the page publishing credentials.
type FacebookConfig struct {
	PageID          string `mapstructure:"page_id"`
	PageAccessToken string `mapstructure:"page_access_token"`
}

// BriefingConfig bounds the daily-briefing fan-out.
type BriefingConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from the given YAML file, with HDMEAL_* environment
// variables taking precedence over file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("HDMEAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/hdmeal.db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Hour)
	v.SetDefault("school.name", "흥덕고")
	v.SetDefault("source.timeout", 5*time.Second)
	v.SetDefault("briefing.timeout", 10*time.Second)
	v.SetDefault("settings.allow_origin", "*")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are present.
func Validate(cfg *Config) error {
	if cfg.Auth.WebhookToken == "" {
		return fmt.Errorf("auth.webhook_token is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if cfg.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}
	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", cfg.Database.Driver)
	}
	return nil
}
