// Package envelope implements the payload cryptography of the delegated
// authorization handshake: 2048-bit RSA key pair generation and decryption of
// the Base64 envelope the forum server redirects back to the app.
//
// # Backend fallback
//
// No single RSA implementation is guaranteed on every device, so [Engine]
// holds an ordered capability-probe list of [Backend] implementations,
// evaluated once and cached. The default chain is [StdBackend] (platform
// crypto) followed by [SoftBackend] (pure math/big software RSA); hosts with
// a hardware keystore prepend their own Backend. Key generation uses the
// first backend whose probe succeeds.
//
// # Scheme fallback
//
// Decryption tries, in order: primary-backend RSA-OAEP SHA-256/SHA-256,
// primary-backend RSA-OAEP SHA-256 with MGF1-SHA-1 (older servers), software
// RSA-OAEP SHA-256/SHA-256, and software PKCS#1 v1.5 (oldest servers). The
// first scheme yielding valid UTF-8 JSON with a key field wins. Exhaustion
// surfaces the single generic [ErrDecryptFailed]; which scheme rejected the
// ciphertext is never part of the error, so callers cannot be turned into a
// padding oracle.
//
// # What this package must NOT do
//
//   - Persist anything. Key custody is the caller's concern.
//   - Hold per-call state. Engine is safe for concurrent use across
//     independent key pairs.
package envelope
