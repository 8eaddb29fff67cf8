package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr  string `env:"HTTP_ADDR" envDefault:":8080"`
	DBDSN string `env:"DB_DSN,required"`

	Redis    RedisConfig
	Razorpay RazorpayConfig
	Queue    QueueConfig
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type RazorpayConfig struct {
	KeyID         string `env:"RAZORPAY_KEY_ID,required"`
	KeySecret     string `env:"RAZORPAY_KEY_SECRET,required"`
	WebhookSecret string `env:"RAZORPAY_WEBHOOK_SECRET,required"`
	BaseURL       string `env:"RAZORPAY_BASE_URL" envDefault:"https://api.razorpay.com/v1"`

	// CapAllocation caps the allocated amount at the invoice's
	// outstanding balance when a link was overpaid.
	CapAllocation bool `env:"RAZORPAY_CAP_ALLOCATION" envDefault:"true"`
}

type QueueConfig struct {
	Workers    int `env:"QUEUE_WORKERS" envDefault:"3"`
	MaxRetries int `env:"QUEUE_MAX_RETRIES" envDefault:"3"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
