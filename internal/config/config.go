package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Portal"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"portal"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Gateway struct {
		BaseURL       string `envconfig:"GATEWAY_BASE_URL" default:"https://api.razorpay.com"`
		KeyID         string `envconfig:"GATEWAY_KEY_ID"`
		KeySecret     string `envconfig:"GATEWAY_KEY_SECRET"`
		WebhookSecret string `envconfig:"GATEWAY_WEBHOOK_SECRET"`
	}

	Session struct {
		Secret string        `envconfig:"SESSION_SECRET"`
		TTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	}

	Notify struct {
		WebhookURL string        `envconfig:"NOTIFY_WEBHOOK_URL"`
		Timeout    time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"10s"`
	}

	Storage struct {
		Dir string `envconfig:"STORAGE_DIR" default:"./data/files"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
