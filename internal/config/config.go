package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/abgandar/trackstats/internal/track"
)

// Config holds all configuration for the application. By centralizing these
// settings, we make the application easier to manage and deploy.
type Config struct {
	// --- Server & Paths ---
	ServerAddr  string
	DataPath    string
	DbPath      string
	GpxPath     string
	FrontendURL string

	// --- Security ---
	JwtSecret string

	// --- Google OAuth 2.0 (optional; Google sign-in is disabled when unset) ---
	GoogleOauthClientID     string
	GoogleOauthClientSecret string
	GoogleOauthRedirectURL  string

	// --- Aggregation thresholds ---
	// Tunables of the statistics pass; zero values fall back to the
	// aggregator's defaults (15s interval, 4m elevation noise).
	MaxPointInterval        time.Duration
	ElevationNoiseThreshold float64

	// --- Parsed & Derived Fields ---
	// Parsed version of FrontendURL for easy access to its components.
	ParsedFrontendURL *url.URL
}

// New creates a new Config instance by loading values from environment
// variables. It validates that critical variables are present and returns an
// error if the configuration is invalid, preventing the server from starting.
func New() (*Config, error) {
	cfg := &Config{
		ServerAddr:              os.Getenv("SERVER_ADDR"),
		DataPath:                os.Getenv("DATA_PATH"),
		JwtSecret:               os.Getenv("JWT_SECRET"),
		FrontendURL:             os.Getenv("FRONTEND_URL"),
		GoogleOauthClientID:     os.Getenv("GOOGLE_OAUTH_CLIENT_ID"),
		GoogleOauthClientSecret: os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET"),
		GoogleOauthRedirectURL:  os.Getenv("GOOGLE_OAUTH_REDIRECT_URL"),
	}

	// The aggregation thresholds are plain numbers in the environment:
	// milliseconds for the interval, meters for the noise threshold.
	if v := os.Getenv("MAX_POINT_INTERVAL_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return nil, errors.New("FATAL: MAX_POINT_INTERVAL_MS must be a positive integer")
		}
		cfg.MaxPointInterval = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("ELEVATION_NOISE_M"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil || m <= 0 {
			return nil, errors.New("FATAL: ELEVATION_NOISE_M must be a positive number")
		}
		cfg.ElevationNoiseThreshold = m
	}

	// --- Provide sensible defaults for non-critical values ---
	if cfg.DataPath == "" {
		cfg.DataPath = "./data"
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}

	// --- Validate critical required values ---
	// The application will "fail fast" if these are not set.
	if cfg.JwtSecret == "" {
		return nil, errors.New("FATAL: JWT_SECRET environment variable is not set")
	}
	if cfg.FrontendURL == "" {
		return nil, errors.New("FATAL: FRONTEND_URL environment variable is not set")
	}

	// --- Parse and derive necessary fields ---
	parsedURL, err := url.Parse(cfg.FrontendURL)
	if err != nil {
		return nil, errors.New("FATAL: Invalid FRONTEND_URL format")
	}
	cfg.ParsedFrontendURL = parsedURL

	cfg.DbPath = filepath.Join(cfg.DataPath, "databases")
	cfg.GpxPath = filepath.Join(cfg.DataPath, "gpx_files")

	return cfg, nil
}

// TrackConfig yields the aggregator configuration, applying the standard
// defaults for anything left unset.
func (c *Config) TrackConfig() track.Config {
	cfg := track.Config{
		MaxPointInterval:        c.MaxPointInterval,
		ElevationNoiseThreshold: c.ElevationNoiseThreshold,
	}
	if cfg.MaxPointInterval == 0 {
		cfg.MaxPointInterval = track.DefaultMaxPointInterval
	}
	if cfg.ElevationNoiseThreshold == 0 {
		cfg.ElevationNoiseThreshold = track.DefaultElevationNoiseThreshold
	}
	return cfg
}

// GoogleOauthEnabled reports whether the optional Google sign-in flow is
// fully configured.
func (c *Config) GoogleOauthEnabled() bool {
	return c.GoogleOauthClientID != "" && c.GoogleOauthClientSecret != "" && c.GoogleOauthRedirectURL != ""
}
