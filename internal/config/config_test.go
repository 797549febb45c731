package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTIssuer != "bazaar-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "bazaar-auth")
	}
	if cfg.JWTAccessTTL != "240h" {
		t.Errorf("JWTAccessTTL = %q, want %q", cfg.JWTAccessTTL, "240h")
	}
	if cfg.JWTRefreshTTL != "720h" {
		t.Errorf("JWTRefreshTTL = %q, want %q", cfg.JWTRefreshTTL, "720h")
	}
	if cfg.SessionTTL != "168h" {
		t.Errorf("SessionTTL = %q, want %q", cfg.SessionTTL, "168h")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.SubscriptionSweepSchedule != "0 3 * * *" {
		t.Errorf("SubscriptionSweepSchedule = %q, want %q", cfg.SubscriptionSweepSchedule, "0 3 * * *")
	}
	if cfg.SweepBatchSize != 1000 {
		t.Errorf("SweepBatchSize = %d, want 1000", cfg.SweepBatchSize)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
}

func TestLoad_SameSecretsRejected(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("JWT_ACCESS_SECRET", "shared")
	os.Setenv("JWT_REFRESH_SECRET", "shared")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject identical access and refresh secrets")
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("BCRYPT_COST", "50")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject BCRYPT_COST over 31")
	}
}

func TestTTLAccessors(t *testing.T) {
	cfg := &Config{JWTAccessTTL: "1h", JWTRefreshTTL: "bogus", SessionTTL: ""}
	if got := cfg.AccessTTL(); got != time.Hour {
		t.Errorf("AccessTTL = %v, want 1h", got)
	}
	if got := cfg.RefreshTTL(); got != 720*time.Hour {
		t.Errorf("RefreshTTL = %v, want fallback 720h", got)
	}
	if got := cfg.SessionMaxAge(); got != 168*time.Hour {
		t.Errorf("SessionMaxAge = %v, want fallback 168h", got)
	}
}
