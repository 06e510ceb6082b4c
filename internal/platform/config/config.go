package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Webhooks  WebhooksConfig  `mapstructure:"webhooks"`
	Walkers   WalkersConfig   `mapstructure:"walkers"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type WebhooksConfig struct {
	Enabled           bool            `mapstructure:"enabled"`
	WorkerCount       int             `mapstructure:"worker_count"`
	MaxAttempts       int             `mapstructure:"max_attempts"`
	InitialDelay      time.Duration   `mapstructure:"initial_delay"`
	BackoffMultiplier float64         `mapstructure:"backoff_multiplier"`
	MaxDelay          time.Duration   `mapstructure:"max_delay"`
	RequestTimeout    time.Duration   `mapstructure:"request_timeout"`
	Static            []StaticWebhook `mapstructure:"static"`
}

// StaticWebhook is a config-defined subscription seeded at startup. Static
// entries are immutable through the management API.
type StaticWebhook struct {
	Walker    string `mapstructure:"walker"`
	Direction string `mapstructure:"direction"`
	URL       string `mapstructure:"url"`
	Secret    string `mapstructure:"secret"`
}

type WalkersConfig struct {
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

type RateLimitConfig struct {
	InboundPerMinute int `mapstructure:"inbound_per_minute"`
	InboundBurst     int `mapstructure:"inbound_burst"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("webhooks.enabled", true)
	viper.SetDefault("webhooks.worker_count", 4)
	viper.SetDefault("webhooks.max_attempts", 3)
	viper.SetDefault("webhooks.initial_delay", "60s")
	viper.SetDefault("webhooks.backoff_multiplier", 2.0)
	viper.SetDefault("webhooks.max_delay", "1h")
	viper.SetDefault("webhooks.request_timeout", "10s")
	viper.SetDefault("walkers.max_concurrent", 16)
	viper.SetDefault("rate_limit.inbound_per_minute", 600)
	viper.SetDefault("rate_limit.inbound_burst", 60)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
