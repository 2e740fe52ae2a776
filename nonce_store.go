package linkAuth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/MrEthical07/linkAuth/securestore"
)

type nonceRecord struct {
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// nonceStore persists the single in-flight nonce. A nonce is bound to one
// authorization attempt: it is overwritten when a new attempt starts and
// cleared immediately after verification, success or failure.
type nonceStore struct {
	store securestore.Store
	ttl   time.Duration
	now   func() time.Time
}

func newNonceStore(store securestore.Store, ttl time.Duration, now func() time.Time) *nonceStore {
	if now == nil {
		now = time.Now
	}
	return &nonceStore{store: store, ttl: ttl, now: now}
}

func (s *nonceStore) Save(ctx context.Context, value string) error {
	encoded, err := json.Marshal(nonceRecord{Value: value, CreatedAt: s.now()})
	if err != nil {
		return err
	}
	return s.store.Set(ctx, keyNonce, string(encoded))
}

// Get returns the live nonce, or the empty string when none is persisted or
// the persisted one has outlived its TTL. Expired nonces are cleared as a
// side effect.
func (s *nonceStore) Get(ctx context.Context) string {
	raw, err := s.store.Get(ctx, keyNonce)
	if errors.Is(err, securestore.ErrKeyNotFound) {
		return ""
	}
	if err != nil {
		log.Print("linkAuth: nonce read failed")
		return ""
	}

	var record nonceRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil || record.Value == "" {
		s.Clear(ctx)
		return ""
	}

	if s.now().Sub(record.CreatedAt) >= s.ttl {
		s.Clear(ctx)
		return ""
	}
	return record.Value
}

func (s *nonceStore) Clear(ctx context.Context) {
	if err := s.store.Delete(ctx, keyNonce); err != nil {
		log.Print("linkAuth: nonce clear failed")
	}
}
