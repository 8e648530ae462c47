package config

import (
	"strings"
	"testing"
	"time"
)

func setSyncEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FINSIGHT_API_URL", "http://localhost:8080")
	t.Setenv("PIPELINE_API_KEY", "pipeline-key")
	t.Setenv("BANK_API_URL", "https://sandbox.bank.test")
	t.Setenv("BANK_CLIENT_ID", "client")
	t.Setenv("BANK_SECRET", "secret")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("ANALYTICS_INCLUDE_PENDING", "")
		t.Setenv("ANALYTICS_MAX_PARALLEL", "")
		t.Setenv("JWT_EXPIRES_IN", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != "8080" {
			t.Errorf("expected default port 8080, got %s", cfg.Port)
		}
		if !cfg.IncludePending {
			t.Error("expected pending transactions to be included by default")
		}
		if cfg.MaxParallel != 4 {
			t.Errorf("expected MaxParallel 4, got %d", cfg.MaxParallel)
		}
		if cfg.JWTExpirationDur != 24*time.Hour {
			t.Errorf("expected 24h JWT expiry, got %v", cfg.JWTExpirationDur)
		}
	})

	t.Run("analytics overrides", func(t *testing.T) {
		t.Setenv("ANALYTICS_INCLUDE_PENDING", "false")
		t.Setenv("ANALYTICS_MAX_PARALLEL", "9")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.IncludePending {
			t.Error("expected IncludePending false")
		}
		if cfg.MaxParallel != 9 {
			t.Errorf("expected MaxParallel 9, got %d", cfg.MaxParallel)
		}
	})

	t.Run("invalid JWT expiry falls back", func(t *testing.T) {
		t.Setenv("JWT_EXPIRES_IN", "forever")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.JWTExpirationDur != 24*time.Hour {
			t.Errorf("expected fallback to 24h, got %v", cfg.JWTExpirationDur)
		}
	})

	t.Run("rejects bad parallelism", func(t *testing.T) {
		t.Setenv("ANALYTICS_MAX_PARALLEL", "0")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for zero parallelism")
		}
	})
}

func TestConfigURLs(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	if got := cfg.DSN(); got != "host=db port=5432 user=u password=p dbname=n sslmode=disable" {
		t.Errorf("unexpected DSN: %s", got)
	}
	if got := cfg.MigrationURL(); got != "postgres://u:p@db:5432/n?sslmode=disable" {
		t.Errorf("unexpected migration URL: %s", got)
	}
}

func TestLoadSync(t *testing.T) {
	t.Run("success with defaults", func(t *testing.T) {
		setSyncEnv(t)
		t.Setenv("SYNC_LOOKBACK_DAYS", "")
		t.Setenv("REQUEST_TIMEOUT", "")
		t.Setenv("SYNC_PARALLELISM", "")

		cfg, err := LoadSync()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.LookbackDays != 90 {
			t.Errorf("expected 90 lookback days, got %d", cfg.LookbackDays)
		}
		if cfg.RequestTimeout != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", cfg.RequestTimeout)
		}
		if cfg.Parallelism != 4 {
			t.Errorf("expected parallelism 4, got %d", cfg.Parallelism)
		}
	})

	for _, key := range []string{"FINSIGHT_API_URL", "PIPELINE_API_KEY", "BANK_API_URL", "BANK_CLIENT_ID", "BANK_SECRET"} {
		t.Run("missing "+key, func(t *testing.T) {
			setSyncEnv(t)
			t.Setenv(key, "")

			_, err := LoadSync()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), key) {
				t.Errorf("error %q should name %s", err.Error(), key)
			}
		})
	}

	t.Run("invalid timeout", func(t *testing.T) {
		setSyncEnv(t)
		t.Setenv("REQUEST_TIMEOUT", "-5s")
		if _, err := LoadSync(); err == nil {
			t.Fatal("expected error for negative timeout")
		}
	})

	t.Run("invalid lookback", func(t *testing.T) {
		setSyncEnv(t)
		t.Setenv("SYNC_LOOKBACK_DAYS", "many")
		if _, err := LoadSync(); err == nil {
			t.Fatal("expected error for non-numeric lookback")
		}
	})
}
