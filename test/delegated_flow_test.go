//go:build integration
// +build integration

package test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	linkAuth "github.com/MrEthical07/linkAuth"
)

// Full round trip over a Redis-backed store: a protected link is parked,
// delegated sign-in completes through the browser handshake, the parked
// intent replays once, and sign-out revokes the key server-side.
func TestDelegatedFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	forum := newForumStub(t)
	client := newRedisClient(t)
	browser := &grantingBrowser{apiKey: "integration-key", otp: "otp-123"}
	forum.grant("integration-key", "peregrine")

	cfg := linkAuth.DefaultConfig()
	cfg.HTTP.BaseURL = forum.URL

	engine, err := linkAuth.New().
		WithConfig(cfg).
		WithRedis(client, bytes.Repeat([]byte{0x42}, 32)).
		WithBrowser(browser).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	outcome, err := engine.OpenLink(ctx, "bytehub://me")
	if err != nil {
		t.Fatalf("OpenLink failed: %v", err)
	}
	if !outcome.Deferred {
		t.Fatal("protected link should be deferred before sign-in")
	}

	res, err := engine.SignIn(ctx)
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if res.Username != "peregrine" {
		t.Fatalf("username = %q, want peregrine", res.Username)
	}
	if !res.NonceVerified {
		t.Fatal("expected the returned nonce to verify")
	}
	if !engine.IsAuthenticated(ctx) {
		t.Fatal("engine should report authenticated after sign-in")
	}
	if urls := browser.opened(); len(urls) != 1 || !strings.Contains(urls[0], "/session/otp/") {
		t.Fatalf("opened urls = %v, want one OTP warm-up", urls)
	}

	replayed := engine.PendingIntents().Replay(ctx)
	if replayed == nil || replayed.ResolvedPath != "/me" {
		t.Fatalf("replayed intent = %+v, want resolved path /me", replayed)
	}
	if engine.PendingIntents().Replay(ctx) != nil {
		t.Fatal("intent replay must be one-shot")
	}

	// Nothing stored in Redis may expose the granted key in the clear.
	keys, err := client.Keys(ctx, "*").Result()
	if err != nil {
		t.Fatalf("redis keys failed: %v", err)
	}
	for _, key := range keys {
		value, err := client.Get(ctx, key).Result()
		if err != nil {
			t.Fatalf("redis get %s failed: %v", key, err)
		}
		if strings.Contains(value, "integration-key") {
			t.Fatalf("redis value at %s leaks the api key", key)
		}
	}

	if err := engine.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if engine.IsAuthenticated(ctx) {
		t.Fatal("engine should not report authenticated after sign-out")
	}
	revoked := forum.revokedKeys()
	if len(revoked) != 1 || revoked[0] != "integration-key" {
		t.Fatalf("revoked keys = %v, want [integration-key]", revoked)
	}
}

// A payload-free redirect with live stored credentials resumes the session
// instead of failing, even across engine restarts on the same store.
func TestDelegatedFlowSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	forum := newForumStub(t)
	client := newRedisClient(t)
	browser := &grantingBrowser{apiKey: "restart-key"}
	forum.grant("restart-key", "peregrine")

	cfg := linkAuth.DefaultConfig()
	cfg.HTTP.BaseURL = forum.URL
	masterKey := bytes.Repeat([]byte{0x42}, 32)

	build := func() *linkAuth.Engine {
		engine, err := linkAuth.New().
			WithConfig(cfg).
			WithRedis(client, masterKey).
			WithBrowser(browser).
			Build()
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		return engine
	}

	first := build()
	if _, err := first.SignIn(ctx); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	first.Close()

	second := build()
	defer second.Close()
	if !second.IsAuthenticated(ctx) {
		t.Fatal("credentials should survive an engine restart")
	}

	creds, err := second.Credentials(ctx)
	if err != nil {
		t.Fatalf("Credentials failed: %v", err)
	}
	if creds.APIKey != "restart-key" {
		t.Fatalf("api key = %q, want restart-key", creds.APIKey)
	}
}
