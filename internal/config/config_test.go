package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.ListenAddr != ":8080" {
		t.Fatalf("listen addr default = %q", cfg.App.ListenAddr)
	}
	if cfg.Capture.LookupTTL != time.Hour {
		t.Fatalf("lookup ttl default = %v", cfg.Capture.LookupTTL)
	}
	if cfg.Capture.MappingTTL != 24*time.Hour {
		t.Fatalf("mapping ttl default = %v", cfg.Capture.MappingTTL)
	}
	if cfg.Tables.Records != "partial-checkouts" {
		t.Fatalf("records table default = %q", cfg.Tables.Records)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	os.Setenv("CAPTURE_APP_LISTEN_ADDR", ":9999")
	os.Setenv("CAPTURE_CAPTURE_LOOKUP_TTL", "30m")
	defer os.Unsetenv("CAPTURE_APP_LISTEN_ADDR")
	defer os.Unsetenv("CAPTURE_CAPTURE_LOOKUP_TTL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.ListenAddr != ":9999" {
		t.Fatalf("env override ignored, got %q", cfg.App.ListenAddr)
	}
	if cfg.Capture.LookupTTL != 30*time.Minute {
		t.Fatalf("duration env override ignored, got %v", cfg.Capture.LookupTTL)
	}
}

func TestLoad_RequiresSecretOutsideLocal(t *testing.T) {
	os.Setenv("CAPTURE_APP_ENV", "prod")
	defer os.Unsetenv("CAPTURE_APP_ENV")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing nonce secret in prod")
	}
}
