package linkAuth

import (
	"time"

	"github.com/MrEthical07/linkAuth/deeplink"
)

// SignInState represents the position of a delegated sign-in attempt in the
// handshake state machine.
//
//	Docs: docs/functionality-sign-in.md
type SignInState uint8

const (
	// StateIdle is an exported constant or variable used by the delegated-auth engine.
	StateIdle SignInState = iota
	// StateKeyGenerated is an exported constant or variable used by the delegated-auth engine.
	StateKeyGenerated
	// StateAuthorizationRequested is an exported constant or variable used by the delegated-auth engine.
	StateAuthorizationRequested
	// StateAwaitingRedirect is an exported constant or variable used by the delegated-auth engine.
	StateAwaitingRedirect
	// StatePayloadReceived is an exported constant or variable used by the delegated-auth engine.
	StatePayloadReceived
	// StateDecrypted is an exported constant or variable used by the delegated-auth engine.
	StateDecrypted
	// StateNonceVerified is an exported constant or variable used by the delegated-auth engine.
	StateNonceVerified
	// StateCredentialStored is an exported constant or variable used by the delegated-auth engine.
	StateCredentialStored
	// StateComplete is an exported constant or variable used by the delegated-auth engine.
	StateComplete
	// StateFailed is an exported constant or variable used by the delegated-auth engine.
	StateFailed
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s SignInState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateKeyGenerated:
		return "key_generated"
	case StateAuthorizationRequested:
		return "authorization_requested"
	case StateAwaitingRedirect:
		return "awaiting_redirect"
	case StatePayloadReceived:
		return "payload_received"
	case StateDecrypted:
		return "decrypted"
	case StateNonceVerified:
		return "nonce_verified"
	case StateCredentialStored:
		return "credential_stored"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AuthCredentials is the single persisted credential record produced by a
// successful delegated authorization. ApiKey accompanies every authenticated
// request; Username is resolved best-effort after storage because some forum
// endpoints require an Api-Username header.
//
//	Docs: docs/functionality-credentials.md
type AuthCredentials struct {
	APIKey    string    `json:"api_key"`
	Username  string    `json:"username,omitempty"`
	ClientID  string    `json:"client_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingIntent is the deferred navigation target stored while the user is
// redirected through sign-in. At most one instance is live; it expires after
// the configured TTL and is cleared immediately before replay.
//
//	Docs: docs/functionality-pending-intent.md
type PendingIntent struct {
	URL          string    `json:"url"`
	ResolvedPath string    `json:"resolved_path"`
	CreatedAt    time.Time `json:"created_at"`
}

// SignInResult defines a public type used by linkAuth APIs.
//
// SignInResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SignInResult struct {
	Username      string
	ClientID      string
	OTPWarmed     bool
	ShortCircuit  bool
	NonceVerified bool
}

// LinkOutcome is the engine's decision for one incoming URL. Handled is false
// for foreign links the embedding app should pass to the system browser.
// Deferred means the target needed authentication and was parked as a pending
// intent. ReplayedIntent carries the parked target released by a successful
// auth callback; it is returned at most once.
//
//	Docs: docs/functionality-deeplinks.md
type LinkOutcome struct {
	Handled        bool
	Deferred       bool
	Link           *deeplink.ResolvedLink
	SignIn         *SignInResult
	ReplayedIntent *PendingIntent
}
