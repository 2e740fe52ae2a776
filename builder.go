package linkAuth

import (
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/linkAuth/deeplink"
	"github.com/MrEthical07/linkAuth/envelope"
	"github.com/MrEthical07/linkAuth/forumapi"
	"github.com/MrEthical07/linkAuth/securestore"
)

// Builder defines a public type used by linkAuth APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	store      securestore.Store
	redis      *redis.Client
	redisKey   []byte
	httpClient *http.Client
	browser    Browser
	backends   []envelope.Backend
	auditSink  AuthEventSink
	now        func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore describes the withstore operation and its observable behavior.
//
// WithStore may return an error when input validation, dependency calls, or security checks fail.
// WithStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithStore(store securestore.Store) *Builder {
	b.store = store
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client, masterKey []byte) *Builder {
	b.redis = client
	b.redisKey = masterKey
	return b
}

// WithHTTPClient describes the withhttpclient operation and its observable behavior.
//
// WithHTTPClient may return an error when input validation, dependency calls, or security checks fail.
// WithHTTPClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithBrowser describes the withbrowser operation and its observable behavior.
//
// WithBrowser may return an error when input validation, dependency calls, or security checks fail.
// WithBrowser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithBrowser(browser Browser) *Builder {
	b.browser = browser
	return b
}

// WithCryptoBackends describes the withcryptobackends operation and its observable behavior.
//
// WithCryptoBackends may return an error when input validation, dependency calls, or security checks fail.
// WithCryptoBackends does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCryptoBackends(backends ...envelope.Backend) *Builder {
	b.backends = backends
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuthEventSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// withClock overrides time for deterministic tests.
func (b *Builder) withClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- SECURE STORE --------
	store := b.store
	if store == nil && b.redis != nil {
		rs, err := securestore.NewRedisStore(b.redis, cfg.Storage.KeyPrefix, b.redisKey)
		if err != nil {
			return nil, err
		}
		store = rs
	}
	if store == nil {
		return nil, errors.New("secure store or redis client required")
	}

	if b.browser == nil {
		return nil, errors.New("browser required")
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	// -------- FORUM CLIENT --------
	api, err := forumapi.NewClient(forumapi.Config{
		BaseURL:       cfg.HTTP.BaseURL,
		Timeout:       cfg.HTTP.Timeout,
		RetryAttempts: cfg.HTTP.RetryAttempts,
	}, b.httpClient)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:  cfg,
		store:   store,
		api:     api,
		browser: b.browser,
		now:     now,
	}

	engine.crypto = envelope.NewEngine(b.backends...)
	engine.resolver = deeplink.NewResolver(deeplink.Config{
		Scheme: cfg.App.Scheme,
		Domain: cfg.App.Domain,
	})
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.credentials = newCredentialStore(store, engine.metrics, now)
	engine.nonces = newNonceStore(store, cfg.Auth.NonceTTL, now)
	engine.intents = newPendingIntentStore(store, cfg.Intent.TTL, engine.metrics, now)
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)

	b.built = true

	return engine, nil
}
