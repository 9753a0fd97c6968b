package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	GRPC     GRPCConfig
	Feed     FeedConfig
	Controls ControlsConfig
	Logging  LoggingConfig
}

type GRPCConfig struct {
	Enabled bool
	Port    int
}

type ServerConfig struct {
	Host            string
	Port            int
	RateLimit       int // inbound requests per second, global
	ShutdownTimeout time.Duration
}

type FeedConfig struct {
	URL       string
	Timeout   time.Duration
	RateLimit float64 // outbound requests per second to the feed
}

type ControlsConfig struct {
	DefaultMinMagnitude float64
	DefaultLimit        int
	MaxLimit            int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			RateLimit:       getEnvInt("HTTP_RATE_LIMIT", 5),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		GRPC: GRPCConfig{
			Enabled: getEnvBool("GRPC_ENABLED", true),
			Port:    getEnvInt("GRPC_PORT", 50051),
		},
		Feed: FeedConfig{
			URL:       getEnv("FEED_URL", "https://earthquake.usgs.gov/fdsnws/event/1/query"),
			Timeout:   getEnvDuration("FEED_TIMEOUT", 10*time.Second),
			RateLimit: getEnvFloat("FEED_RATE_LIMIT", 2),
		},
		Controls: ControlsConfig{
			DefaultMinMagnitude: getEnvFloat("DEFAULT_MIN_MAGNITUDE", 2.5),
			DefaultLimit:        getEnvInt("DEFAULT_EVENT_LIMIT", 100),
			MaxLimit:            getEnvInt("MAX_EVENT_LIMIT", 500),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GRPC.Enabled && (c.GRPC.Port < 1 || c.GRPC.Port > 65535) {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPC.Port)
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("HTTP_RATE_LIMIT must be at least 1")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Feed.URL == "" {
		return fmt.Errorf("FEED_URL is required")
	}
	if c.Feed.Timeout <= 0 || c.Feed.Timeout > time.Minute {
		return fmt.Errorf("FEED_TIMEOUT must be between 0 and 1m, got %s", c.Feed.Timeout)
	}
	if c.Feed.RateLimit <= 0 {
		return fmt.Errorf("FEED_RATE_LIMIT must be positive")
	}

	if c.Controls.MaxLimit < 1 || c.Controls.MaxLimit > 20000 {
		return fmt.Errorf("MAX_EVENT_LIMIT must be between 1 and 20000, got %d", c.Controls.MaxLimit)
	}
	if c.Controls.DefaultLimit < 1 || c.Controls.DefaultLimit > c.Controls.MaxLimit {
		return fmt.Errorf("DEFAULT_EVENT_LIMIT must be between 1 and %d, got %d", c.Controls.MaxLimit, c.Controls.DefaultLimit)
	}
	if c.Controls.DefaultMinMagnitude < 0 || c.Controls.DefaultMinMagnitude > 10 {
		return fmt.Errorf("DEFAULT_MIN_MAGNITUDE must be between 0 and 10, got %g", c.Controls.DefaultMinMagnitude)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
