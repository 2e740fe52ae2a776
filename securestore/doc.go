// Package securestore provides the encrypted-at-rest key-value persistence
// used for key material, nonces, client identifiers, and credentials.
//
// [Store] is the contract the engine consumes. [RedisStore] seals every value
// with ChaCha20-Poly1305 under a caller-supplied 32-byte master key before it
// reaches Redis, so a dumped keyspace exposes only ciphertext. [MemoryStore]
// backs tests and examples.
//
// # What this package must NOT do
//
//   - Interpret stored values. Everything is an opaque string to this layer.
//   - Derive or persist the master key. Key custody belongs to the host
//     platform (hardware keystore, OS keychain).
//   - Be consulted for TTL policy. Expiry of nonces and pending intents is
//     enforced by their owning stores, not here.
package securestore
