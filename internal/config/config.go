package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr string `mapstructure:"SERVER_ADDR"`
	Env  string `mapstructure:"ENV"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"DATABASE_URL"`
	MaxConns int32  `mapstructure:"DATABASE_MAX_CONNS"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"REDIS_ADDR"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SweepConfig struct {
	Interval string `mapstructure:"SWEEP_INTERVAL"`
	Schedule string `mapstructure:"SWEEP_SCHEDULE"`
	Enabled  bool   `mapstructure:"SWEEP_ENABLED"`
}

type SMTPConfig struct {
	Host string `mapstructure:"SMTP_HOST"`
	Port string `mapstructure:"SMTP_PORT"`
	User string `mapstructure:"SMTP_USER"`
	Pass string `mapstructure:"SMTP_PASSWORD"`
	From string `mapstructure:"SMTP_FROM"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	viper.SetDefault("SERVER_ADDR", "0.0.0.0:8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_MAX_CONNS", 10)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SWEEP_INTERVAL", "24h")
	viper.SetDefault("SWEEP_SCHEDULE", "0 2 * * *")
	viper.SetDefault("SWEEP_ENABLED", true)
	viper.SetDefault("SMTP_PORT", "587")
	viper.SetDefault("SMTP_FROM", "noreply@estate-hub.local")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	viper.AutomaticEnv()

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("DATABASE_MAX_CONNS must be greater than 0")
	}
	if _, err := time.ParseDuration(c.Sweep.Interval); err != nil {
		return fmt.Errorf("SWEEP_INTERVAL must be a valid duration: %w", err)
	}
	return nil
}

// IsDevelopment returns true if running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// SweepInterval returns the reconciliation sweep interval as a duration.
func (c *Config) SweepInterval() time.Duration {
	d, _ := time.ParseDuration(c.Sweep.Interval)
	return d
}
