package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PLATFORM_TIMEZONE", "")
	t.Setenv("AUTH_PROVIDER", "")
	t.Setenv("MONTHLY_REQUEST_LIMIT", "")

	cfg := Load()
	if cfg.Location.String() != "America/Sao_Paulo" {
		t.Errorf("Location = %q, want %q", cfg.Location.String(), "America/Sao_Paulo")
	}
	if cfg.AuthProvider != "firebase" {
		t.Errorf("AuthProvider = %q, want %q", cfg.AuthProvider, "firebase")
	}
	if cfg.QuotaLimit != 3 {
		t.Errorf("QuotaLimit = %d, want 3", cfg.QuotaLimit)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
}

func TestLoadFallsBackToUTC(t *testing.T) {
	t.Setenv("PLATFORM_TIMEZONE", "Not/AZone")
	cfg := Load()
	if cfg.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", cfg.Location)
	}
}

func TestIsAdmin(t *testing.T) {
	t.Setenv("ADMIN_UIDS", "u1, u2")
	t.Setenv("ADMIN_EMAILS", "Ops@Example.com")
	cfg := Load()

	tests := []struct {
		uid, email string
		want       bool
	}{
		{"u1", "", true},
		{"u3", "ops@example.com", true},
		{"u3", " OPS@example.COM ", true},
		{"u3", "someone@example.com", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := cfg.IsAdmin(tt.uid, tt.email); got != tt.want {
			t.Errorf("IsAdmin(%q, %q) = %v, want %v", tt.uid, tt.email, got, tt.want)
		}
	}
}
