package linkAuth

import (
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/linkAuth/securestore"
)

func newIntentStore(t *testing.T, ttl time.Duration, now func() time.Time) (*PendingIntentStore, *Metrics) {
	t.Helper()

	metrics := NewMetrics(MetricsConfig{Enabled: true})
	return newPendingIntentStore(securestore.NewMemoryStore(), ttl, metrics, now), metrics
}

func TestPendingIntentStoreAndReplay(t *testing.T) {
	store, metrics := newIntentStore(t, 15*time.Minute, time.Now)
	ctx := context.Background()

	store.Store(ctx, PendingIntent{URL: "bytehub://compose", ResolvedPath: "/compose"})
	if !store.HasPending(ctx) {
		t.Fatal("expected a pending intent after Store")
	}

	replayed := store.Replay(ctx)
	if replayed == nil || replayed.ResolvedPath != "/compose" {
		t.Fatalf("unexpected replay result: %+v", replayed)
	}
	if store.HasPending(ctx) {
		t.Fatal("replay must consume the intent")
	}
	if store.Replay(ctx) != nil {
		t.Fatal("second replay must return nothing")
	}
	if metrics.Value(MetricIntentReplayed) != 1 {
		t.Fatal("expected exactly one replay metric increment")
	}
}

func TestPendingIntentSingleSlot(t *testing.T) {
	store, _ := newIntentStore(t, 15*time.Minute, time.Now)
	ctx := context.Background()

	store.Store(ctx, PendingIntent{URL: "bytehub://me", ResolvedPath: "/me"})
	store.Store(ctx, PendingIntent{URL: "bytehub://notifications", ResolvedPath: "/notifications"})

	got := store.Get(ctx)
	if got == nil || got.ResolvedPath != "/notifications" {
		t.Fatalf("expected the newest intent to hold the slot, got %+v", got)
	}
}

func TestPendingIntentExpires(t *testing.T) {
	current := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return current }
	store, metrics := newIntentStore(t, 15*time.Minute, clock)
	ctx := context.Background()

	store.Store(ctx, PendingIntent{URL: "bytehub://me", ResolvedPath: "/me"})

	// One second short of the deadline the intent is still live.
	current = current.Add(15*time.Minute - time.Second)
	if !store.HasPending(ctx) {
		t.Fatal("intent expired early")
	}

	current = current.Add(2 * time.Second)
	if store.HasPending(ctx) {
		t.Fatal("expected intent expired after TTL")
	}
	if store.Replay(ctx) != nil {
		t.Fatal("expired intent must not replay")
	}
	if metrics.Value(MetricIntentExpired) == 0 {
		t.Fatal("expected expiry metric increment")
	}
	if metrics.Value(MetricIntentReplayed) != 0 {
		t.Fatal("expired intent must not count as replayed")
	}
}

func TestPendingIntentRehydratesFromStore(t *testing.T) {
	backing := securestore.NewMemoryStore()
	metrics := NewMetrics(MetricsConfig{Enabled: true})
	first := newPendingIntentStore(backing, 15*time.Minute, metrics, time.Now)
	ctx := context.Background()

	first.Store(ctx, PendingIntent{URL: "bytehub://me", ResolvedPath: "/me"})

	// A fresh instance over the same backing store sees the intent, the
	// way a relaunched app process would.
	second := newPendingIntentStore(backing, 15*time.Minute, metrics, time.Now)
	got := second.Replay(ctx)
	if got == nil || got.ResolvedPath != "/me" {
		t.Fatalf("expected rehydrated intent, got %+v", got)
	}
}

func TestNonceExpires(t *testing.T) {
	current := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return current }
	store := newNonceStore(securestore.NewMemoryStore(), 10*time.Minute, clock)
	ctx := context.Background()

	if err := store.Save(ctx, "nonce-1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got := store.Get(ctx); got != "nonce-1" {
		t.Fatalf("expected live nonce, got %q", got)
	}

	current = current.Add(10*time.Minute + time.Second)
	if got := store.Get(ctx); got != "" {
		t.Fatalf("expected expired nonce discarded, got %q", got)
	}
}

func TestNonceSingleSlot(t *testing.T) {
	store := newNonceStore(securestore.NewMemoryStore(), 10*time.Minute, time.Now)
	ctx := context.Background()

	if err := store.Save(ctx, "first"); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "second"); err != nil {
		t.Fatal(err)
	}
	if got := store.Get(ctx); got != "second" {
		t.Fatalf("expected the newest nonce, got %q", got)
	}

	store.Clear(ctx)
	if got := store.Get(ctx); got != "" {
		t.Fatal("expected cleared nonce slot")
	}
}
