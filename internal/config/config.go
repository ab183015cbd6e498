// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	AppEnv         string
	AllowedOrigins []string
	MaxBodySize    int64

	StoreDriver   string // "memory", "sqlite", or "redis"
	DBPath        string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration // 0 = keep sessions forever

	AcceptancePolicy string // "attempts" or "keywords"

	Vision VisionConfig

	BridgeCmd string // path of the bridge worker binary for relay mode
}

// VisionConfig controls the external vision-model client.
type VisionConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		MaxBodySize:    int64(getEnvInt("MAX_BODY_SIZE", 16<<20)),

		StoreDriver:   getEnv("STORE_DRIVER", "memory"),
		DBPath:        getEnv("DB_PATH", "./data/shotcoach.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionTTL:    getEnvDuration("SESSION_TTL", 0),

		AcceptancePolicy: getEnv("ACCEPTANCE_POLICY", "attempts"),

		Vision: VisionConfig{
			BaseURL:     getEnv("VISION_BASE_URL", "https://api.openai.com"),
			APIKey:      getEnv("VISION_API_KEY", ""),
			Model:       getEnv("VISION_MODEL", "gpt-4o-mini"),
			Timeout:     getEnvDuration("VISION_TIMEOUT", 30*time.Second),
			MaxTokens:   getEnvInt("VISION_MAX_TOKENS", 200),
			Temperature: getEnvFloat("VISION_TEMPERATURE", 0.4),
		},

		BridgeCmd: getEnv("BRIDGE_CMD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.StoreDriver {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("STORE_DRIVER must be memory, sqlite, or redis, got %q", c.StoreDriver)
	}
	if c.StoreDriver == "sqlite" && c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty with the sqlite driver")
	}
	if c.StoreDriver == "redis" && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR cannot be empty with the redis driver")
	}
	switch c.AcceptancePolicy {
	case "attempts", "keywords":
	default:
		return fmt.Errorf("ACCEPTANCE_POLICY must be attempts or keywords, got %q", c.AcceptancePolicy)
	}
	if c.Vision.Model == "" {
		return fmt.Errorf("VISION_MODEL cannot be empty")
	}
	if c.Vision.Timeout <= 0 {
		return fmt.Errorf("VISION_TIMEOUT must be > 0")
	}
	if c.MaxBodySize <= 0 {
		return fmt.Errorf("MAX_BODY_SIZE must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv != "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
