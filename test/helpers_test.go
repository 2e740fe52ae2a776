//go:build integration
// +build integration

package test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// forumStub is a minimal Discourse-style endpoint set: a who-am-I probe
// keyed on the User-Api-Key header and a revocation endpoint that records
// which keys were surrendered.
type forumStub struct {
	*httptest.Server
	mu       sync.Mutex
	accepted map[string]string
	revoked  []string
}

func newForumStub(t *testing.T) *forumStub {
	t.Helper()

	f := &forumStub{accepted: map[string]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/session/current.json", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		username, ok := f.accepted[r.Header.Get("User-Api-Key")]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"current_user": map[string]any{"username": username},
		})
	})
	mux.HandleFunc("/user-api-key/revoke", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.revoked = append(f.revoked, r.Header.Get("User-Api-Key"))
		f.mu.Unlock()
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *forumStub) grant(apiKey, username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accepted[apiKey] = username
}

func (f *forumStub) revokedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.revoked...)
}

// grantingBrowser plays the server side of the authorization handshake: it
// pulls the public key and nonce out of the authorize URL, grants apiKey,
// and hands back a redirect carrying the RSA-OAEP sealed payload.
type grantingBrowser struct {
	apiKey string
	otp    string

	mu       sync.Mutex
	openURLs []string
}

func (b *grantingBrowser) Authorize(_ context.Context, authorizeURL, redirectPrefix string) (string, error) {
	u, err := url.Parse(authorizeURL)
	if err != nil {
		return "", err
	}
	q := u.Query()

	block, _ := pem.Decode([]byte(q.Get("public_key")))
	if block == nil {
		return "", errors.New("authorize url missing public key")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return "", err
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return "", errors.New("authorize url public key is not RSA")
	}

	plain, err := json.Marshal(map[string]string{
		"key":               b.apiKey,
		"one_time_password": b.otp,
		"nonce":             q.Get("nonce"),
	})
	if err != nil {
		return "", err
	}
	sealed, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, plain, nil)
	if err != nil {
		return "", err
	}

	payload := url.QueryEscape(base64.StdEncoding.EncodeToString(sealed))
	return redirectPrefix + "?payload=" + payload, nil
}

func (b *grantingBrowser) OpenURL(_ context.Context, raw string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.openURLs = append(b.openURLs, raw)
	return nil
}

func (b *grantingBrowser) opened() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.openURLs...)
}
