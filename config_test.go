package linkAuth

import (
	"strings"
	"testing"
	"time"
)

func validTestConfig() Config {
	cfg := defaultConfig()
	cfg.HTTP.BaseURL = "https://forum.bytehub.app"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults with base url valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name:      "app name blank invalid",
			mutate:    func(c *Config) { c.App.Name = "   " },
			wantValid: false,
		},
		{
			name:      "scheme with separator invalid",
			mutate:    func(c *Config) { c.App.Scheme = "bytehub://" },
			wantValid: false,
		},
		{
			name:      "domain with path invalid",
			mutate:    func(c *Config) { c.App.Domain = "forum.bytehub.app/extra" },
			wantValid: false,
		},
		{
			name:      "no scopes invalid",
			mutate:    func(c *Config) { c.Auth.Scopes = nil },
			wantValid: false,
		},
		{
			name:      "redirect path blank invalid",
			mutate:    func(c *Config) { c.Auth.RedirectPath = "" },
			wantValid: false,
		},
		{
			name:      "weak key bits invalid",
			mutate:    func(c *Config) { c.Auth.KeyBits = 1024 },
			wantValid: false,
		},
		{
			name:      "zero nonce ttl invalid",
			mutate:    func(c *Config) { c.Auth.NonceTTL = 0 },
			wantValid: false,
		},
		{
			name:      "zero intent ttl invalid",
			mutate:    func(c *Config) { c.Intent.TTL = 0 },
			wantValid: false,
		},
		{
			name:      "missing base url invalid",
			mutate:    func(c *Config) { c.HTTP.BaseURL = "" },
			wantValid: false,
		},
		{
			name:      "zero timeout invalid",
			mutate:    func(c *Config) { c.HTTP.Timeout = 0 },
			wantValid: false,
		},
		{
			name:      "excessive retries invalid",
			mutate:    func(c *Config) { c.HTTP.RetryAttempts = 4 },
			wantValid: false,
		},
		{
			name:      "longer nonce ttl valid",
			mutate:    func(c *Config) { c.Auth.NonceTTL = time.Hour },
			wantValid: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestConfigAuthRedirect(t *testing.T) {
	cfg := validTestConfig()
	if got := cfg.authRedirect(); got != "bytehub://auth_redirect" {
		t.Fatalf("unexpected auth redirect %q", got)
	}

	cfg.Auth.RedirectPath = "/auth/callback/"
	if got := cfg.authRedirect(); got != "bytehub://auth/callback" {
		t.Fatalf("expected trimmed redirect path, got %q", got)
	}
}

func TestConfigCloneIsolatesScopes(t *testing.T) {
	cfg := validTestConfig()
	clone := cloneConfig(cfg)
	clone.Auth.Scopes[0] = "mutated"

	if cfg.Auth.Scopes[0] == "mutated" {
		t.Fatal("clone must not share the scopes slice")
	}
}

func TestDefaultConfigScopes(t *testing.T) {
	cfg := DefaultConfig()
	joined := strings.Join(cfg.Auth.Scopes, ",")
	if !strings.Contains(joined, "session_info") || !strings.Contains(joined, "read") {
		t.Fatalf("unexpected default scopes %q", joined)
	}
}
