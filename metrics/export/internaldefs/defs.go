package internaldefs

import (
	linkAuth "github.com/MrEthical07/linkAuth"
)

// CounterDef defines a public type used by linkAuth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   linkAuth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by linkAuth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   linkAuth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the delegated-auth engine.
var CounterDefs = []CounterDef{
	{ID: linkAuth.MetricSignInSuccess, Name: "linkauth_signin_success_total", Help: "Completed delegated sign-in attempts."},
	{ID: linkAuth.MetricSignInFailure, Name: "linkauth_signin_failure_total", Help: "Failed delegated sign-in attempts."},
	{ID: linkAuth.MetricSignInCancelled, Name: "linkauth_signin_cancelled_total", Help: "Sign-in attempts dismissed by the user."},
	{ID: linkAuth.MetricSignInShortCircuit, Name: "linkauth_signin_short_circuit_total", Help: "Payload-free redirects confirmed against stored credentials."},
	{ID: linkAuth.MetricSignOut, Name: "linkauth_signout_total", Help: "Sign-out operations."},
	{ID: linkAuth.MetricRevokeFailure, Name: "linkauth_revoke_failure_total", Help: "Failed server-side key revocations during sign-out."},
	{ID: linkAuth.MetricPayloadMissing, Name: "linkauth_payload_missing_total", Help: "Auth redirects delivered without a payload parameter."},
	{ID: linkAuth.MetricNonceMismatch, Name: "linkauth_nonce_mismatch_total", Help: "Redirect payloads rejected for a nonce mismatch."},
	{ID: linkAuth.MetricNonceAbsent, Name: "linkauth_nonce_absent_total", Help: "Redirect payloads verified without a local nonce to compare."},
	{ID: linkAuth.MetricDecryptFallback, Name: "linkauth_decrypt_fallback_total", Help: "Payload decryptions that needed a fallback scheme."},
	{ID: linkAuth.MetricDecryptFailure, Name: "linkauth_decrypt_failure_total", Help: "Payload decryptions that exhausted every scheme."},
	{ID: linkAuth.MetricCredentialMigrated, Name: "linkauth_credential_migrated_total", Help: "Legacy credential records rewritten into the canonical slot."},
	{ID: linkAuth.MetricCredentialRejected, Name: "linkauth_credential_rejected_total", Help: "Stored credentials rejected by the forum."},
	{ID: linkAuth.MetricIntentStored, Name: "linkauth_intent_stored_total", Help: "Navigation intents parked pending sign-in."},
	{ID: linkAuth.MetricIntentReplayed, Name: "linkauth_intent_replayed_total", Help: "Parked intents replayed after sign-in."},
	{ID: linkAuth.MetricIntentExpired, Name: "linkauth_intent_expired_total", Help: "Parked intents discarded after their TTL."},
	{ID: linkAuth.MetricOTPWarmFailure, Name: "linkauth_otp_warm_failure_total", Help: "Failed one-time password session warm-ups."},
}

// HistogramDefs is an exported constant or variable used by the delegated-auth engine.
var HistogramDefs = []HistogramDef{
	{ID: linkAuth.MetricDecryptLatency, Name: "linkauth_decrypt_latency_seconds", Help: "Payload decryption latency."},
}

// HistogramBounds is an exported constant or variable used by the delegated-auth engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the delegated-auth engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
