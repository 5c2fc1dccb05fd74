package config

import (
	"testing"
	"time"

	"github.com/abgandar/trackstats/internal/track"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("FRONTEND_URL", "http://localhost:5173")
}

func TestNewRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("FRONTEND_URL", "")
	if _, err := New(); err == nil {
		t.Fatal("expected an error without JWT_SECRET")
	}

	t.Setenv("JWT_SECRET", "test-secret")
	if _, err := New(); err == nil {
		t.Fatal("expected an error without FRONTEND_URL")
	}
}

func TestNewDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("DATA_PATH", "")
	t.Setenv("MAX_POINT_INTERVAL_MS", "")
	t.Setenv("ELEVATION_NOISE_M", "")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.ServerAddr != ":8080" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr)
	}

	tc := cfg.TrackConfig()
	if tc.MaxPointInterval != track.DefaultMaxPointInterval {
		t.Errorf("MaxPointInterval = %v, want default", tc.MaxPointInterval)
	}
	if tc.ElevationNoiseThreshold != track.DefaultElevationNoiseThreshold {
		t.Errorf("ElevationNoiseThreshold = %v, want default", tc.ElevationNoiseThreshold)
	}
	if cfg.GoogleOauthEnabled() {
		t.Error("Google OAuth should be disabled without credentials")
	}
}

func TestNewThresholdOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_POINT_INTERVAL_MS", "30000")
	t.Setenv("ELEVATION_NOISE_M", "2.5")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tc := cfg.TrackConfig()
	if tc.MaxPointInterval != 30*time.Second {
		t.Errorf("MaxPointInterval = %v, want 30s", tc.MaxPointInterval)
	}
	if tc.ElevationNoiseThreshold != 2.5 {
		t.Errorf("ElevationNoiseThreshold = %v, want 2.5", tc.ElevationNoiseThreshold)
	}
}

func TestNewRejectsBadThresholds(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_POINT_INTERVAL_MS", "zero")
	if _, err := New(); err == nil {
		t.Fatal("expected an error for a malformed interval")
	}

	t.Setenv("MAX_POINT_INTERVAL_MS", "")
	t.Setenv("ELEVATION_NOISE_M", "-4")
	if _, err := New(); err == nil {
		t.Fatal("expected an error for a negative noise threshold")
	}
}
