package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.StoreDriver != "memory" {
		t.Errorf("expected default store driver memory, got %q", cfg.StoreDriver)
	}
	if cfg.AcceptancePolicy != "attempts" {
		t.Errorf("expected default acceptance policy attempts, got %q", cfg.AcceptancePolicy)
	}
	if cfg.Vision.Timeout != 30*time.Second {
		t.Errorf("expected default vision timeout 30s, got %v", cfg.Vision.Timeout)
	}
	if cfg.SessionTTL != 0 {
		t.Errorf("expected sessions kept forever by default, got ttl %v", cfg.SessionTTL)
	}
	if cfg.MaxBodySize != 16<<20 {
		t.Errorf("expected default max body size 16MiB, got %d", cfg.MaxBodySize)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("ACCEPTANCE_POLICY", "keywords")
	t.Setenv("VISION_TIMEOUT", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.StoreDriver != "redis" || cfg.RedisAddr != "redis:6379" {
		t.Errorf("redis settings not applied: %+v", cfg)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Errorf("expected ttl 45m, got %v", cfg.SessionTTL)
	}
	if cfg.AcceptancePolicy != "keywords" {
		t.Errorf("expected keywords policy, got %q", cfg.AcceptancePolicy)
	}
	if cfg.Vision.Timeout != 10*time.Second {
		t.Errorf("expected vision timeout 10s, got %v", cfg.Vision.Timeout)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:             "8080",
			StoreDriver:      "memory",
			AcceptancePolicy: "attempts",
			MaxBodySize:      16 << 20,
			Vision: VisionConfig{
				Model:   "gpt-4o-mini",
				Timeout: 30 * time.Second,
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"unknown store driver", func(c *Config) { c.StoreDriver = "postgres" }},
		{"sqlite without path", func(c *Config) { c.StoreDriver = "sqlite"; c.DBPath = "" }},
		{"redis without addr", func(c *Config) { c.StoreDriver = "redis"; c.RedisAddr = "" }},
		{"unknown acceptance policy", func(c *Config) { c.AcceptancePolicy = "both" }},
		{"empty vision model", func(c *Config) { c.Vision.Model = "" }},
		{"zero vision timeout", func(c *Config) { c.Vision.Timeout = 0 }},
		{"zero max body size", func(c *Config) { c.MaxBodySize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("baseline config must validate: %v", err)
	}
}

func TestGetEnvHelpersFallBack(t *testing.T) {
	t.Setenv("SHOTCOACH_TEST_INT", "not-a-number")
	t.Setenv("SHOTCOACH_TEST_DUR", "soon")

	if got := getEnvInt("SHOTCOACH_TEST_INT", 42); got != 42 {
		t.Errorf("expected fallback 42, got %d", got)
	}
	if got := getEnvDuration("SHOTCOACH_TEST_DUR", time.Minute); got != time.Minute {
		t.Errorf("expected fallback 1m, got %v", got)
	}
}
