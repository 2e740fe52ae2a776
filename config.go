package linkAuth

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by linkAuth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	App     AppConfig
	Auth    AuthFlowConfig
	Intent  IntentConfig
	Storage StorageConfig
	HTTP    HTTPConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
APP CONFIG
====================================
*/

// AppConfig defines a public type used by linkAuth APIs.
//
// AppConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AppConfig struct {
	Name   string // application_name sent to the authorization endpoint
	Scheme string // custom URL scheme, without "://"
	Domain string // canonical web domain rewritten into the custom scheme
}

/*
====================================
AUTH FLOW CONFIG
====================================
*/

// AuthFlowConfig defines a public type used by linkAuth APIs.
//
// AuthFlowConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthFlowConfig struct {
	Scopes       []string
	RedirectPath string // path under the custom scheme the server redirects back to
	KeyBits      int
	NonceTTL     time.Duration
}

/*
====================================
INTENT CONFIG
====================================
*/

// IntentConfig defines a public type used by linkAuth APIs.
//
// IntentConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type IntentConfig struct {
	TTL time.Duration
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig defines a public type used by linkAuth APIs.
//
// StorageConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StorageConfig struct {
	KeyPrefix string
}

/*
====================================
HTTP CONFIG
====================================
*/

// HTTPConfig defines a public type used by linkAuth APIs.
//
// HTTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HTTPConfig struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts int // bounded retry for best-effort calls only
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by linkAuth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by linkAuth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the stock configuration for the ByteHub forum.
// Callers adjust fields and hand the result to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		App: AppConfig{
			Name:   "ByteHub Mobile",
			Scheme: "bytehub",
			Domain: "forum.bytehub.app",
		},
		Auth: AuthFlowConfig{
			Scopes:       []string{"session_info", "read", "write", "notifications"},
			RedirectPath: "auth_redirect",
			KeyBits:      2048,
			NonceTTL:     10 * time.Minute,
		},
		Intent: IntentConfig{
			TTL: 15 * time.Minute,
		},
		Storage: StorageConfig{
			KeyPrefix: "la",
		},
		HTTP: HTTPConfig{
			Timeout:       10 * time.Second,
			RetryAttempts: 1,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Auth.Scopes = append([]string(nil), cfg.Auth.Scopes...)
	return out
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if strings.TrimSpace(c.App.Name) == "" {
		return errors.New("App Name required")
	}
	if strings.TrimSpace(c.App.Scheme) == "" || strings.Contains(c.App.Scheme, "://") {
		return errors.New("App Scheme must be a bare scheme name")
	}
	if strings.TrimSpace(c.App.Domain) == "" || strings.Contains(c.App.Domain, "/") {
		return errors.New("App Domain must be a bare host name")
	}
	if len(c.Auth.Scopes) == 0 {
		return errors.New("Auth Scopes required")
	}
	if strings.TrimSpace(c.Auth.RedirectPath) == "" {
		return errors.New("Auth RedirectPath required")
	}
	if c.Auth.KeyBits < 2048 {
		return errors.New("Auth KeyBits below 2048 not permitted")
	}
	if c.Auth.NonceTTL <= 0 {
		return errors.New("Auth NonceTTL must be positive")
	}
	if c.Intent.TTL <= 0 {
		return errors.New("Intent TTL must be positive")
	}
	if strings.TrimSpace(c.HTTP.BaseURL) == "" {
		return errors.New("HTTP BaseURL required")
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("HTTP Timeout must be positive")
	}
	if c.HTTP.RetryAttempts < 0 || c.HTTP.RetryAttempts > 3 {
		return errors.New("HTTP RetryAttempts must be between 0 and 3")
	}
	return nil
}

// authRedirect is the full redirect URL embedded in the authorization request
// and matched against inbound callbacks.
func (c Config) authRedirect() string {
	return c.App.Scheme + "://" + strings.Trim(c.Auth.RedirectPath, "/")
}
