package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config is the immutable application configuration, loaded once at startup
// and injected into the services. Nothing in the hot path reads viper (or
// any other ambient state) after this struct is built.
type Config struct {
	Server struct {
		Port    int    `mapstructure:"port"`
		BaseURL string `mapstructure:"base_url"` // prefix for generated short URLs
	} `mapstructure:"server"`

	Database struct {
		Name string `mapstructure:"name"` // SQLite database file
	} `mapstructure:"database"`

	// Links controls the accounting defaults applied at creation time.
	Links struct {
		DefaultVisitLimit int64 `mapstructure:"default_visit_limit"`
		FreePlanMaxActive int64 `mapstructure:"free_plan_max_active"`
	} `mapstructure:"links"`

	// Analytics configures the async visit pipeline.
	Analytics struct {
		BufferSize  int `mapstructure:"buffer_size"`
		WorkerCount int `mapstructure:"worker_count"`
	} `mapstructure:"analytics"`

	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"`
	} `mapstructure:"monitor"`

	// Redis is optional; rate limiting is skipped when Addr is empty.
	Redis struct {
		Addr              string `mapstructure:"addr"`
		RateLimit         int    `mapstructure:"rate_limit"`
		RateWindowSeconds int    `mapstructure:"rate_window_seconds"`
	} `mapstructure:"redis"`

	Auth struct {
		JWTSecret       string `mapstructure:"jwt_secret"`
		TokenTTLMinutes int    `mapstructure:"token_ttl_minutes"`
	} `mapstructure:"auth"`
}

// MaxActiveLinksForPlan returns the active-link ceiling for a plan, or -1
// for unlimited.
func (c *Config) MaxActiveLinksForPlan(plan string) int64 {
	if plan == "free" {
		return c.Links.FreePlanMaxActive
	}
	return -1
}

// LoadConfig reads configs/config.yaml, applies environment overrides
// (SERVER_PORT, DATABASE_NAME, ...) and falls back to defaults. A missing
// config file is not an error.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("database.name", "shortener.db")
	viper.SetDefault("links.default_visit_limit", 1000)
	viper.SetDefault("links.free_plan_max_active", 3)
	viper.SetDefault("analytics.buffer_size", 1000)
	viper.SetDefault("analytics.worker_count", 5)
	viper.SetDefault("monitor.interval_minutes", 5)
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.rate_limit", 60)
	viper.SetDefault("redis.rate_window_seconds", 60)
	viper.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	viper.SetDefault("auth.token_ttl_minutes", 30)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using default values")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Links.DefaultVisitLimit <= 0 {
		return nil, fmt.Errorf("links.default_visit_limit must be positive, got %d", cfg.Links.DefaultVisitLimit)
	}

	log.Printf("Configuration loaded: Port=%d, DB=%s, DefaultVisitLimit=%d, Workers=%d",
		cfg.Server.Port, cfg.Database.Name, cfg.Links.DefaultVisitLimit, cfg.Analytics.WorkerCount)

	return &cfg, nil
}
