package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN,required=true"`
	RabbitMQURL string `env:"RABBITMQ_URL,required=true"`
	RedisURL    string `env:"REDIS_URL,required=true"`
	JWTSecret   string `env:"JWT_SECRET,required=true"`

	APIPort  int    `env:"API_PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	DeliveryScanIntervalSec int `env:"DELIVERY_SCAN_INTERVAL_SEC,default=30"`
	DeliveryBatchSize       int `env:"DELIVERY_BATCH_SIZE,default=100"`
	ExpiryScanIntervalSec   int `env:"EXPIRY_SCAN_INTERVAL_SEC,default=300"`
	ExpiryWarnWindowHours   int `env:"EXPIRY_WARN_WINDOW_HOURS,default=24"`
	OutboxScanIntervalSec   int `env:"OUTBOX_SCAN_INTERVAL_SEC,default=10"`
	OutboxBatchSize         int `env:"OUTBOX_BATCH_SIZE,default=100"`

	QuoteRateLimitPerMin int `env:"QUOTE_RATE_LIMIT_PER_MIN,default=30"`

	// Optional push mirror for the messaging gateway. Empty disables it.
	GatewayWebhookURL string `env:"GATEWAY_WEBHOOK_URL"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) DeliveryScanInterval() time.Duration {
	return time.Duration(c.DeliveryScanIntervalSec) * time.Second
}

func (c *Config) ExpiryScanInterval() time.Duration {
	return time.Duration(c.ExpiryScanIntervalSec) * time.Second
}

func (c *Config) ExpiryWarnWindow() time.Duration {
	return time.Duration(c.ExpiryWarnWindowHours) * time.Hour
}

func (c *Config) OutboxScanInterval() time.Duration {
	return time.Duration(c.OutboxScanIntervalSec) * time.Second
}
