package linkAuth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/MrEthical07/linkAuth/securestore"
)

// Logical storage keys. All values are opaque strings in the encrypted-at-rest
// store; there is no schema versioning beyond the legacy migration below.
const (
	keyPrivateKey      = "auth_private_key"
	keyPublicKey       = "auth_public_key"
	keyNonce           = "auth_nonce"
	keyClientID        = "client_id"
	keyCredentials     = "auth_credentials"
	keyOneTimePassword = "auth_otp"
	keyPendingIntent   = "pending_intent"
)

// legacyCredentialKeys are older credential slots, probed in order on read
// when the canonical record is absent. Found records are rewritten into the
// canonical slot and the legacy keys deleted.
var legacyCredentialKeys = []string{"user_api_key", "api_credentials_v1", "legacy_auth_blob"}

type credentialStore struct {
	store   securestore.Store
	metrics *Metrics
	now     func() time.Time
}

func newCredentialStore(store securestore.Store, metrics *Metrics, now func() time.Time) *credentialStore {
	if now == nil {
		now = time.Now
	}
	return &credentialStore{store: store, metrics: metrics, now: now}
}

func (s *credentialStore) Store(ctx context.Context, creds AuthCredentials) error {
	encoded, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, keyCredentials, string(encoded))
}

// Read returns the canonical credential record, migrating any legacy slot it
// finds along the way. Callers see either current-format data or nil, never
// a partially migrated shape.
func (s *credentialStore) Read(ctx context.Context) (*AuthCredentials, error) {
	raw, err := s.store.Get(ctx, keyCredentials)
	if err == nil {
		var creds AuthCredentials
		if jsonErr := json.Unmarshal([]byte(raw), &creds); jsonErr == nil && creds.APIKey != "" {
			return &creds, nil
		}
		// Corrupt canonical record: fall through to the legacy probe
		// rather than surfacing an unusable shape.
	} else if !errors.Is(err, securestore.ErrKeyNotFound) {
		return nil, err
	}

	return s.migrate(ctx)
}

func (s *credentialStore) migrate(ctx context.Context) (*AuthCredentials, error) {
	for _, legacyKey := range legacyCredentialKeys {
		raw, err := s.store.Get(ctx, legacyKey)
		if errors.Is(err, securestore.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		creds, ok := s.decodeLegacy(ctx, raw)
		if !ok {
			continue
		}

		if err := s.Store(ctx, *creds); err != nil {
			// Leave the legacy record in place so the next read can
			// retry the migration.
			return creds, nil
		}
		for _, k := range legacyCredentialKeys {
			if delErr := s.store.Delete(ctx, k); delErr != nil {
				log.Print("linkAuth: legacy credential slot cleanup failed")
			}
		}
		s.metrics.Inc(MetricCredentialMigrated)
		return creds, nil
	}

	return nil, nil
}

type legacyCredentialRecord struct {
	Key      string `json:"key"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
}

// decodeLegacy understands the two shapes older app versions persisted: a
// JSON record with a key field, or the oldest form, a bare API key string.
func (s *credentialStore) decodeLegacy(ctx context.Context, raw string) (*AuthCredentials, bool) {
	var record legacyCredentialRecord
	if err := json.Unmarshal([]byte(raw), &record); err == nil && record.Key != "" {
		return &AuthCredentials{
			APIKey:    record.Key,
			Username:  record.Username,
			ClientID:  record.ClientID,
			CreatedAt: s.now(),
		}, true
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "{") {
		return nil, false
	}

	clientID, err := s.store.Get(ctx, keyClientID)
	if err != nil {
		clientID = ""
	}
	return &AuthCredentials{
		APIKey:    trimmed,
		ClientID:  clientID,
		CreatedAt: s.now(),
	}, true
}

func (s *credentialStore) Clear(ctx context.Context) error {
	var firstErr error
	keys := append([]string{keyCredentials, keyOneTimePassword}, legacyCredentialKeys...)
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *credentialStore) IsAuthenticated(ctx context.Context) bool {
	creds, err := s.Read(ctx)
	return err == nil && creds != nil && creds.APIKey != ""
}
