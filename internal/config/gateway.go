package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// GatewayConfig is read from the environment. The gateway has no config file.
type GatewayConfig struct {
	Addr            string        `envconfig:"GATEWAY_ADDR" default:":8080"`
	ServerURL       string        `envconfig:"SHAREIT_SERVER_URL" default:"http://localhost:9090"`
	RequestTimeout  time.Duration `envconfig:"GATEWAY_REQUEST_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"GATEWAY_SHUTDOWN_TIMEOUT" default:"10s"`
	MetricsPort     int           `envconfig:"GATEWAY_METRICS_PORT" default:"0"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	RateLimit  int           `envconfig:"GATEWAY_RATE_LIMIT" default:"100"`
	RateWindow time.Duration `envconfig:"GATEWAY_RATE_WINDOW" default:"1m"`

	Redis RedisConfig
}

type RedisConfig struct {
	Address  string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	PoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"10"`
}

// LoadGateway processes the environment into a GatewayConfig.
func LoadGateway() (*GatewayConfig, error) {
	var cfg GatewayConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read gateway env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("gateway config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *GatewayConfig) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("SHAREIT_SERVER_URL is required")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("GATEWAY_RATE_LIMIT must not be negative")
	}
	if c.RateLimit > 0 && c.RateWindow <= 0 {
		return fmt.Errorf("GATEWAY_RATE_WINDOW must be positive when rate limiting is on")
	}
	return nil
}

// Logging adapts the gateway settings to the shared logger constructor.
func (c *GatewayConfig) Logging() LoggingConfig {
	return LoggingConfig{Level: c.LogLevel, Format: c.LogFormat, Output: "stdout"}
}
