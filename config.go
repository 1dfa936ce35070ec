package goSession

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config collects every tunable of a [Manager]. Populate it before Build;
// it is treated as immutable afterwards.
type Config struct {
	Endpoints  EndpointConfig
	HTTP       HTTPConfig
	Refresh    RefreshConfig
	Navigation NavigationConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointConfig names the session endpoints on the server. All five are
// public calls: the Manager marks them skip-auth so they never carry a
// bearer header and never trigger the 401 recovery path themselves.
type EndpointConfig struct {
	BaseURL     string
	LoginPath   string
	RefreshPath string
	LogoutPath  string
	SetupPath   string
	StatusPath  string
}

// HTTPConfig tunes the client the Manager hands out.
type HTTPConfig struct {
	Timeout time.Duration
}

// RefreshConfig bounds the two network calls the Manager issues on its own
// behalf. The refresh call runs on a background context with Timeout so a
// hung refresh cannot starve the waiters attached to it; LogoutTimeout
// bounds the forced logout issued after an irrecoverable refresh failure.
type RefreshConfig struct {
	Timeout       time.Duration
	LogoutTimeout time.Duration
}

type NavigationConfig struct {
	// LoginView is the application path of the login screen. The Manager
	// skips the redirect when the Navigator reports it is already current.
	LoginView string
}

// AuditConfig controls the audit dispatcher. With DropIfFull set, a full
// buffer discards events instead of blocking session operations.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration the Manager ships with. Only
// Endpoints.BaseURL has no usable default.
func DefaultConfig() Config {
	return Config{
		Endpoints: EndpointConfig{
			LoginPath:   "/auth/login",
			RefreshPath: "/auth/refresh",
			LogoutPath:  "/auth/logout",
			SetupPath:   "/auth/setup",
			StatusPath:  "/auth/status",
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Refresh: RefreshConfig{
			Timeout:       15 * time.Second,
			LogoutTimeout: 10 * time.Second,
		},
		Navigation: NavigationConfig{
			LoginView: "/login",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// Validate checks the configuration for internal consistency. Build calls
// it; callers constructing a Config by hand may call it early.
func (c Config) Validate() error {
	base := strings.TrimSpace(c.Endpoints.BaseURL)
	if base == "" {
		return errors.New("endpoints base URL required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("endpoints base URL must be absolute")
	}

	for _, p := range []string{
		c.Endpoints.LoginPath,
		c.Endpoints.RefreshPath,
		c.Endpoints.LogoutPath,
		c.Endpoints.SetupPath,
		c.Endpoints.StatusPath,
	} {
		if !strings.HasPrefix(p, "/") {
			return errors.New("endpoint paths must start with /")
		}
	}

	if c.HTTP.Timeout < 0 {
		return errors.New("http timeout must be >= 0")
	}
	if c.Refresh.Timeout <= 0 {
		return errors.New("refresh timeout must be > 0")
	}
	if c.Refresh.LogoutTimeout <= 0 {
		return errors.New("refresh logout timeout must be > 0")
	}
	if !strings.HasPrefix(c.Navigation.LoginView, "/") {
		return errors.New("navigation login view must start with /")
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}
