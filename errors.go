package linkAuth

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the delegated-auth engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrAuthCancelled is an exported constant or variable used by the delegated-auth engine.
	ErrAuthCancelled = errors.New("authorization cancelled by user")
	// ErrSignInInFlight is an exported constant or variable used by the delegated-auth engine.
	ErrSignInInFlight = errors.New("sign-in already in flight")
	// ErrPayloadMissing is an exported constant or variable used by the delegated-auth engine.
	ErrPayloadMissing = errors.New("redirect payload missing")
	// ErrPayloadInvalid is an exported constant or variable used by the delegated-auth engine.
	ErrPayloadInvalid = errors.New("redirect payload missing api key")
	// ErrNonceMismatch is an exported constant or variable used by the delegated-auth engine.
	ErrNonceMismatch = errors.New("nonce mismatch: possible replay attack")
	// ErrNotAuthenticated is an exported constant or variable used by the delegated-auth engine.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrCredentialRejected is an exported constant or variable used by the delegated-auth engine.
	ErrCredentialRejected = errors.New("credential rejected by server")
	// ErrKeyPairMissing is an exported constant or variable used by the delegated-auth engine.
	ErrKeyPairMissing = errors.New("no key pair persisted for attempt")
	// ErrStoreUnavailable is an exported constant or variable used by the delegated-auth engine.
	ErrStoreUnavailable = errors.New("secure store unavailable")
)
