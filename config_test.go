package goSession

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.Endpoints.BaseURL = "https://api.example.com"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults with base URL",
			mutate: func(*Config) {},
		},
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.Endpoints.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "relative base URL",
			mutate:  func(c *Config) { c.Endpoints.BaseURL = "/just/a/path" },
			wantErr: true,
		},
		{
			name:    "login path without leading slash",
			mutate:  func(c *Config) { c.Endpoints.LoginPath = "auth/login" },
			wantErr: true,
		},
		{
			name:    "refresh path without leading slash",
			mutate:  func(c *Config) { c.Endpoints.RefreshPath = "refresh" },
			wantErr: true,
		},
		{
			name:    "negative http timeout",
			mutate:  func(c *Config) { c.HTTP.Timeout = -time.Second },
			wantErr: true,
		},
		{
			name:   "zero http timeout means no limit",
			mutate: func(c *Config) { c.HTTP.Timeout = 0 },
		},
		{
			name:    "zero refresh timeout",
			mutate:  func(c *Config) { c.Refresh.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "zero logout timeout",
			mutate:  func(c *Config) { c.Refresh.LogoutTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "login view without leading slash",
			mutate:  func(c *Config) { c.Navigation.LoginView = "login" },
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected a validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestDefaultConfigEndpoints(t *testing.T) {
	cfg := DefaultConfig()

	want := map[string]string{
		"login":   "/auth/login",
		"refresh": "/auth/refresh",
		"logout":  "/auth/logout",
		"setup":   "/auth/setup",
		"status":  "/auth/status",
	}
	got := map[string]string{
		"login":   cfg.Endpoints.LoginPath,
		"refresh": cfg.Endpoints.RefreshPath,
		"logout":  cfg.Endpoints.LogoutPath,
		"setup":   cfg.Endpoints.SetupPath,
		"status":  cfg.Endpoints.StatusPath,
	}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("default %s path = %q, want %q", k, got[k], w)
		}
	}
	if cfg.Navigation.LoginView != "/login" {
		t.Errorf("default login view = %q", cfg.Navigation.LoginView)
	}
}
