package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "jwt:\n  secret: s3cret\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"port", cfg.Server.Port, 8080},
		{"access ttl", cfg.JWT.AccessTokenTTL, 15 * time.Minute},
		{"secret", cfg.JWT.Secret, "s3cret"},
		{"trial days", cfg.Company.TrialDays, 14},
		{"upload limit", cfg.Storage.MaxUploadMB, int64(10)},
		{"currency", cfg.Billing.Currency, "gbp"},
		{"sweep interval", cfg.Worker.SweepInterval, time.Hour},
		{"public rate", cfg.RateLimit.PublicPerMinute, 60},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/complyhr")
	t.Setenv("BILLING_WEBHOOK_SECRET", "whsec_env")

	cfg, err := Load(writeConfig(t, "database:\n  url: file:./local.db\nbilling:\n  webhook_secret: from-file\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/complyhr" {
		t.Errorf("database url = %q", cfg.Database.URL)
	}
	if cfg.Billing.WebhookSecret != "whsec_env" {
		t.Errorf("webhook secret = %q", cfg.Billing.WebhookSecret)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestBillingValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     BillingConfig
		wantErr bool
	}{
		{"billing disabled", BillingConfig{}, false},
		{"fully configured", BillingConfig{StripeSecretKey: "sk_test", WebhookSecret: "whsec_1"}, false},
		{"key without webhook secret", BillingConfig{StripeSecretKey: "sk_test"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
