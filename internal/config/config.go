package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces all environment overrides, e.g. COOKALONG_HTTP_PORT.
const envPrefix = "cookalong"

// Config is the system-wide settings coordinator.
type Config struct {
	HTTP      HTTPConfig
	Database  DatabaseConfig
	WebSocket WebSocketConfig
	Auth      AuthConfig
	Room      RoomConfig
	Log       LogConfig
}

type HTTPConfig struct {
	Host         string        `default:"0.0.0.0"`
	Port         int           `default:"3000"`
	ReadTimeout  time.Duration `default:"30s"`
	WriteTimeout time.Duration `default:"30s"`
}

type DatabaseConfig struct {
	Path string `default:"./cookalong.db"`
}

type WebSocketConfig struct {
	PingInterval time.Duration `default:"30s"`
	ReadTimeout  time.Duration `default:"60s"`
	WriteBuffer  int           `default:"100" split_words:"true"`
}

type AuthConfig struct {
	Secret          string        `envconfig:"JWT_SECRET" default:"your-secret-key"`
	TokenTTL        time.Duration `default:"1h" envconfig:"TOKEN_TTL"`
	SpecialTokenTTL time.Duration `default:"8760h" envconfig:"SPECIAL_TOKEN_TTL"`
}

type RoomConfig struct {
	// DefaultMaxClients is the student seat count used when a host joins
	// without specifying one.
	DefaultMaxClients int `default:"5" split_words:"true"`
}

type LogConfig struct {
	Level string `default:"info"`
}

// Load builds the configuration from defaults overlaid with COOKALONG_*
// environment variables, then validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations that would fail at runtime.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP port must be between 1 and 65535")
	}

	if c.HTTP.ReadTimeout <= 0 {
		return fmt.Errorf("HTTP read timeout must be positive")
	}

	if c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP write timeout must be positive")
	}

	if c.HTTP.Host == "" {
		return fmt.Errorf("HTTP host cannot be empty")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if c.WebSocket.PingInterval <= 0 {
		return fmt.Errorf("websocket ping interval must be positive")
	}

	if c.WebSocket.ReadTimeout <= 0 {
		return fmt.Errorf("websocket read timeout must be positive")
	}

	if c.WebSocket.WriteBuffer <= 0 {
		return fmt.Errorf("websocket write buffer must be positive")
	}

	if c.Auth.Secret == "" {
		return fmt.Errorf("JWT secret cannot be empty")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	if c.Room.DefaultMaxClients <= 0 {
		return fmt.Errorf("default max clients must be positive")
	}

	return nil
}
