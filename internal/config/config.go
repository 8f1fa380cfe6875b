// Package config defines the service configuration and how it is loaded.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DevJWTSecret is the signing secret used when none is configured. It is
// only fit for local development.
const DevJWTSecret = "pitchperfect-dev-secret-change-me"

// Config contains process configuration.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// JWTSecret signs session tokens. At least 16 characters.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL is how long a session token stays valid.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// CookieSecure sets the Secure flag on the session cookie.
	CookieSecure bool `koanf:"cookie_secure"`

	// LoginDemoCode, when set, is the only verification code accepted at
	// login. Empty accepts any six characters.
	LoginDemoCode string `koanf:"login_demo_code"`

	// LoginChallengeTTL bounds the time between requesting and using a code.
	LoginChallengeTTL time.Duration `koanf:"login_challenge_ttl"`

	// ScoutAPIKey enables AI scout reports. Empty serves the stats fallback.
	ScoutAPIKey string `koanf:"scout_api_key"`

	// ScoutBaseURL is the Gemini API root.
	ScoutBaseURL string `koanf:"scout_base_url"`

	// ScoutModel names the generation model.
	ScoutModel string `koanf:"scout_model"`

	// ScoutTimeout bounds one report request.
	ScoutTimeout time.Duration `koanf:"scout_timeout"`

	// SimulateReciprocal makes pool opponents rate the reviewer back.
	SimulateReciprocal bool `koanf:"simulate_reciprocal"`

	// SeedDemo stores a finished demo match at startup.
	SeedDemo bool `koanf:"seed_demo"`

	// MetricsEnabled toggles Prometheus collection.
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:               ":8080",
		LogLevel:           "info",
		JWTSecret:          DevJWTSecret,
		TokenTTL:           24 * time.Hour,
		LoginChallengeTTL:  5 * time.Minute,
		ScoutBaseURL:       "https://generativelanguage.googleapis.com/",
		ScoutModel:         "gemini-2.5-flash",
		ScoutTimeout:       15 * time.Second,
		SimulateReciprocal: true,
		SeedDemo:           true,
		MetricsEnabled:     true,
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return invalid("addr must not be empty")
	case len(c.JWTSecret) < 16:
		return invalid("jwt_secret must be at least 16 characters")
	case c.TokenTTL <= 0:
		return invalid("token_ttl must be positive")
	case c.LoginChallengeTTL <= 0:
		return invalid("login_challenge_ttl must be positive")
	case c.LoginDemoCode != "" && len(c.LoginDemoCode) != 6:
		return invalid("login_demo_code must be exactly 6 characters")
	case c.ScoutTimeout <= 0:
		return invalid("scout_timeout must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, invalid(fmt.Sprintf("unknown log_level %q", s))
	}
	return l, nil
}
