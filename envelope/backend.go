package envelope

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"
)

// Scheme identifies one padding scheme in the decryption fallback chain.
//
//	Docs: docs/functionality-envelope.md
type Scheme uint8

const (
	// SchemeOAEPSHA256 is an exported constant or variable used by the payload crypto engine.
	SchemeOAEPSHA256 Scheme = iota
	// SchemeOAEPSHA256MGF1SHA1 is an exported constant or variable used by the payload crypto engine.
	SchemeOAEPSHA256MGF1SHA1
	// SchemePKCS1v15 is an exported constant or variable used by the payload crypto engine.
	SchemePKCS1v15
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s Scheme) String() string {
	switch s {
	case SchemeOAEPSHA256:
		return "oaep-sha256"
	case SchemeOAEPSHA256MGF1SHA1:
		return "oaep-sha256-mgf1-sha1"
	case SchemePKCS1v15:
		return "pkcs1v15"
	default:
		return "unknown"
	}
}

var (
	// ErrNoBackend is an exported constant or variable used by the payload crypto engine.
	ErrNoBackend = errors.New("no crypto backend available")
	// ErrDecryptFailed is an exported constant or variable used by the payload crypto engine.
	ErrDecryptFailed = errors.New("payload decryption failed")
	// ErrBackendUnsupported is an exported constant or variable used by the payload crypto engine.
	ErrBackendUnsupported = errors.New("operation unsupported by crypto backend")
)

// Backend is one RSA implementation in the ordered capability-probe chain.
// Available is evaluated once per Engine; a backend reporting false is
// skipped silently for every operation.
//
//	Docs: docs/functionality-envelope.md
type Backend interface {
	Name() string
	Available() bool
	GenerateKey(bits int) (*rsa.PrivateKey, error)
	Decrypt(priv *rsa.PrivateKey, ciphertext []byte, scheme Scheme) ([]byte, error)
	PublicFromPrivate(priv *rsa.PrivateKey) (*rsa.PublicKey, error)
}

// StdBackend defines a public type used by linkAuth APIs.
//
// StdBackend instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StdBackend struct{}

// NewStdBackend describes the newstdbackend operation and its observable behavior.
//
// NewStdBackend may return an error when input validation, dependency calls, or security checks fail.
// NewStdBackend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewStdBackend() StdBackend {
	return StdBackend{}
}

// Name describes the name operation and its observable behavior.
//
// Name may return an error when input validation, dependency calls, or security checks fail.
// Name does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (StdBackend) Name() string { return "stdcrypto" }

// Available describes the available operation and its observable behavior.
//
// Available may return an error when input validation, dependency calls, or security checks fail.
// Available does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (StdBackend) Available() bool { return true }

// GenerateKey describes the generatekey operation and its observable behavior.
//
// GenerateKey may return an error when input validation, dependency calls, or security checks fail.
// GenerateKey does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (StdBackend) GenerateKey(bits int) (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, bits)
}

// Decrypt describes the decrypt operation and its observable behavior.
//
// Decrypt may return an error when input validation, dependency calls, or security checks fail.
// Decrypt does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (StdBackend) Decrypt(priv *rsa.PrivateKey, ciphertext []byte, scheme Scheme) ([]byte, error) {
	switch scheme {
	case SchemeOAEPSHA256:
		return rsa.DecryptOAEP(sha256.New(), nil, priv, ciphertext, nil)
	case SchemeOAEPSHA256MGF1SHA1:
		return priv.Decrypt(nil, ciphertext, &rsa.OAEPOptions{Hash: crypto.SHA256, MGFHash: crypto.SHA1})
	case SchemePKCS1v15:
		return rsa.DecryptPKCS1v15(nil, priv, ciphertext)
	default:
		return nil, fmt.Errorf("%w: scheme %d", ErrBackendUnsupported, scheme)
	}
}

// PublicFromPrivate describes the publicfromprivate operation and its observable behavior.
//
// PublicFromPrivate may return an error when input validation, dependency calls, or security checks fail.
// PublicFromPrivate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (StdBackend) PublicFromPrivate(priv *rsa.PrivateKey) (*rsa.PublicKey, error) {
	if priv == nil {
		return nil, ErrBackendUnsupported
	}
	return &priv.PublicKey, nil
}
