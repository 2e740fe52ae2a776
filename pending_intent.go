package linkAuth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/MrEthical07/linkAuth/securestore"
)

// PendingIntentStore holds the single "destination the user wanted before
// being forced to sign in" slot. Store overwrites, Get honors the TTL, and
// Replay clears the slot immediately before handing the intent back so a
// re-entrant navigation cannot trigger a replay loop.
//
//	Docs: docs/functionality-pending-intent.md
type PendingIntentStore struct {
	store   securestore.Store
	ttl     time.Duration
	metrics *Metrics
	now     func() time.Time

	mu     sync.Mutex
	cached *PendingIntent
}

func newPendingIntentStore(store securestore.Store, ttl time.Duration, metrics *Metrics, now func() time.Time) *PendingIntentStore {
	if now == nil {
		now = time.Now
	}
	return &PendingIntentStore{store: store, ttl: ttl, metrics: metrics, now: now}
}

// Store describes the store operation and its observable behavior.
//
// Store may return an error when input validation, dependency calls, or security checks fail.
// Store does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *PendingIntentStore) Store(ctx context.Context, intent PendingIntent) {
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = s.now()
	}

	s.mu.Lock()
	s.cached = &intent
	s.mu.Unlock()

	s.metrics.Inc(MetricIntentStored)

	encoded, err := json.Marshal(intent)
	if err != nil {
		log.Print("linkAuth: pending intent encode failed")
		return
	}
	// Persistence failure only costs cross-restart durability; the
	// in-memory mirror still serves the current process.
	if err := s.store.Set(ctx, keyPendingIntent, string(encoded)); err != nil {
		log.Print("linkAuth: pending intent persist failed")
	}
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *PendingIntentStore) Get(ctx context.Context) *PendingIntent {
	intent := s.load(ctx)
	if intent == nil {
		return nil
	}

	if s.now().Sub(intent.CreatedAt) >= s.ttl {
		s.Clear(ctx)
		s.metrics.Inc(MetricIntentExpired)
		return nil
	}

	copied := *intent
	return &copied
}

// HasPending describes the haspending operation and its observable behavior.
//
// HasPending may return an error when input validation, dependency calls, or security checks fail.
// HasPending does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *PendingIntentStore) HasPending(ctx context.Context) bool {
	return s.Get(ctx) != nil
}

// Replay returns the live intent exactly once, clearing the slot before the
// intent is handed back.
func (s *PendingIntentStore) Replay(ctx context.Context) *PendingIntent {
	intent := s.Get(ctx)
	if intent == nil {
		return nil
	}

	s.Clear(ctx)
	s.metrics.Inc(MetricIntentReplayed)
	return intent
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *PendingIntentStore) Clear(ctx context.Context) {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()

	if err := s.store.Delete(ctx, keyPendingIntent); err != nil {
		log.Print("linkAuth: pending intent clear failed")
	}
}

func (s *PendingIntentStore) load(ctx context.Context) *PendingIntent {
	s.mu.Lock()
	cached := s.cached
	s.mu.Unlock()
	if cached != nil {
		copied := *cached
		return &copied
	}

	raw, err := s.store.Get(ctx, keyPendingIntent)
	if errors.Is(err, securestore.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		log.Print("linkAuth: pending intent read failed")
		return nil
	}

	var intent PendingIntent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		s.Clear(ctx)
		return nil
	}

	s.mu.Lock()
	s.cached = &intent
	s.mu.Unlock()
	return &intent
}
