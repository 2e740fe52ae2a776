// Package forumapi is the outbound HTTP surface of the delegated-auth core:
// authorization URL construction, credential revocation, the current-user
// ("who am I") probe, and the one-time-password warm URL.
//
// The authorization URL is never fetched by this package; it is handed to
// an external browser. Everything that is fetched carries a short timeout
// and at most one bounded retry, because every call here is either
// best-effort or an idempotent probe.
//
// A 401 or 403 from any authenticated endpoint is reported as
// [ErrCredentialRejected]; the engine treats that as "credential
// invalidated", not as a retryable transport failure.
package forumapi
