// Package linkAuth provides the delegated-authentication and deep-link routing
// core for the ByteHub mobile forum client: RSA user-api-key handshake against
// the forum server, replay-protected payload decryption, encrypted credential
// persistence, and pending-intent replay for auth-gated destinations.
//
// The package is designed for a host application that owns the platform
// surfaces: Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build], with the documented exception that
// concurrent SignIn attempts are rejected rather than serialized.
//
// # Architecture boundaries
//
// linkAuth is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (AuthCredentials, PendingIntent, MetricsSnapshot, etc.).
// Deep-link resolution lives in [github.com/MrEthical07/linkAuth/deeplink],
// payload cryptography in [github.com/MrEthical07/linkAuth/envelope], the
// encrypted KV layer in [github.com/MrEthical07/linkAuth/securestore], and
// the forum HTTP client in [github.com/MrEthical07/linkAuth/forumapi].
//
// # What this package must NOT do
//
//   - Render UI, show toasts, or drive the host navigation stack. It only
//     reports resolved routes, pending intents, and sign-in outcomes.
//   - Transmit a password or private key off the device. Only the public key
//     and nonce leave the process, embedded in the authorization URL.
//   - Implement session-cookie password login. The one /session/otp call is
//     best-effort cookie warming, never an authentication path.
//
// # Security contract
//
// A key pair and nonce are generated fresh per sign-in attempt and the nonce
// is single-use: it is cleared after verification on both success and failure
// paths so an intercepted payload can never validate twice. Decryption
// failures surface one generic error regardless of which scheme rejected the
// ciphertext.
package linkAuth
