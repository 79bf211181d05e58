package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the chat service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"chat-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"CHAT_API_PORT" envDefault:"8290"`
	LogLevel        string        `env:"CHAT_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"CHAT_LOG_FORMAT" envDefault:"console"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database
	DBPostgresqlDSN string        `env:"DB_POSTGRESQL_DSN"`
	DBMaxIdleConns  int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns  int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime  time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// AI Provider
	ModelCredentialFile string        `env:"MODEL_CREDENTIAL_FILE" envDefault:"config/model_credentials.yml"`
	ProviderBaseURL     string        `env:"CHAT_PROVIDER_BASE_URL" envDefault:"https://api.dify.ai/v1"`
	ProviderTimeout     time.Duration `env:"CHAT_PROVIDER_TIMEOUT" envDefault:"60s"`

	// Streaming Reveal
	RevealCharInterval time.Duration `env:"REVEAL_CHAR_INTERVAL" envDefault:"15ms"`
	RevealMinLength    int           `env:"REVEAL_MIN_LENGTH" envDefault:"5"`

	// Demo Mode
	DemoModeForced    bool          `env:"DEMO_MODE_FORCED" envDefault:"false"` // route every request through the demo path
	DemoOwnerID       string        `env:"DEMO_OWNER_ID" envDefault:"demo-user"`
	DemoDataDir       string        `env:"DEMO_DATA_DIR" envDefault:"./chat-demo-data"`
	DemoResponseDelay time.Duration `env:"DEMO_RESPONSE_DELAY" envDefault:"1500ms"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.DBPostgresqlDSN = strings.TrimSpace(cfg.DBPostgresqlDSN)
	cfg.ProviderBaseURL = strings.TrimSpace(cfg.ProviderBaseURL)
	if !cfg.DemoModeForced && cfg.DBPostgresqlDSN == "" {
		return nil, fmt.Errorf("DB_POSTGRESQL_DSN is required unless DEMO_MODE_FORCED is true")
	}
	if cfg.RevealCharInterval <= 0 {
		cfg.RevealCharInterval = 15 * time.Millisecond
	}
	if cfg.RevealMinLength <= 0 {
		cfg.RevealMinLength = 5
	}
	if strings.TrimSpace(cfg.DemoOwnerID) == "" {
		return nil, fmt.Errorf("DEMO_OWNER_ID must not be empty")
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsProduction returns true when running with the production environment profile.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
