package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("AI_MAX_RETRIES", "")
	t.Setenv("AI_INITIAL_DELAY_MS", "250")
	t.Setenv("AI_PROVIDER", "OpenAI")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "development" || cfg.JWTSecret != devJWTSecret {
		t.Fatalf("env=%q secret=%q", cfg.Env, cfg.JWTSecret)
	}
	if cfg.AIMaxRetries != 3 || cfg.AIInitialDelay != 250*time.Millisecond || cfg.AIProvider != "openai" {
		t.Fatalf("ai settings = %d %v %q", cfg.AIMaxRetries, cfg.AIInitialDelay, cfg.AIProvider)
	}
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without JWT_SECRET in production")
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("AI_MAX_RETRIES", "three")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for AI_MAX_RETRIES=three")
	}
}

func TestLoadBoundsRetryAttempts(t *testing.T) {
	t.Setenv("APP_ENV", "")
	for _, v := range []string{"0", "11", "1000"} {
		t.Setenv("AI_MAX_RETRIES", v)
		if _, err := Load(); err == nil {
			t.Fatalf("AI_MAX_RETRIES=%s accepted", v)
		}
	}
	t.Setenv("AI_MAX_RETRIES", "10")
	if cfg, err := Load(); err != nil || cfg.AIMaxRetries != 10 {
		t.Fatalf("AI_MAX_RETRIES=10: %v %d", err, cfg.AIMaxRetries)
	}
}
