package envelope

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"log"
	"sync"
	"unicode/utf8"
)

// KeyPair holds both halves of a generated RSA key pair in PEM form. The
// private half never leaves device storage; the public half is embedded in
// the authorization URL.
//
//	Docs: docs/functionality-envelope.md
type KeyPair struct {
	PrivateKeyPEM string
	PublicKeyPEM  string
}

// Payload is the decrypted authorization envelope. Key is the long-lived API
// credential; OneTimePassword and Nonce are optional depending on server
// version.
//
//	Docs: docs/functionality-envelope.md
type Payload struct {
	Key             string `json:"key"`
	OneTimePassword string `json:"one_time_password,omitempty"`
	Nonce           string `json:"nonce,omitempty"`

	// SchemeUsed records which fallback attempt produced the payload.
	// Diagnostic only; never a security signal.
	SchemeUsed string `json:"-"`
}

// Engine defines a public type used by linkAuth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	backends []Backend

	probeOnce sync.Once
	available []Backend
}

// NewEngine describes the newengine operation and its observable behavior.
//
// NewEngine may return an error when input validation, dependency calls, or security checks fail.
// NewEngine does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewEngine(backends ...Backend) *Engine {
	if len(backends) == 0 {
		backends = []Backend{NewStdBackend(), NewSoftBackend()}
	}
	return &Engine{backends: backends}
}

func (e *Engine) availableBackends() []Backend {
	e.probeOnce.Do(func() {
		for _, b := range e.backends {
			if b != nil && b.Available() {
				e.available = append(e.available, b)
			}
		}
	})
	return e.available
}

// GenerateKeyPair describes the generatekeypair operation and its observable behavior.
//
// GenerateKeyPair may return an error when input validation, dependency calls, or security checks fail.
// GenerateKeyPair does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) GenerateKeyPair(bits int) (KeyPair, error) {
	backends := e.availableBackends()
	if len(backends) == 0 {
		return KeyPair{}, ErrNoBackend
	}

	for _, b := range backends {
		priv, err := b.GenerateKey(bits)
		if err != nil {
			log.Printf("linkAuth: key generation via %s failed, falling through", b.Name())
			continue
		}
		return encodeKeyPair(priv)
	}

	return KeyPair{}, ErrNoBackend
}

// DerivePublicKey recovers the public PEM from a stored private PEM using the
// first backend that supports the operation. Backends wrapping opaque
// hardware keys may return [ErrBackendUnsupported].
func (e *Engine) DerivePublicKey(privateKeyPEM string) (string, error) {
	priv, err := parsePrivateKeyPEM(privateKeyPEM)
	if err != nil {
		return "", err
	}

	for _, b := range e.availableBackends() {
		pub, err := b.PublicFromPrivate(priv)
		if errors.Is(err, ErrBackendUnsupported) {
			continue
		}
		if err != nil {
			return "", err
		}
		return encodePublicKeyPEM(pub)
	}

	return "", ErrBackendUnsupported
}

type decryptAttempt struct {
	backend Backend
	scheme  Scheme
}

// decryptAttempts builds the fixed fallback order: the primary backend tries
// both OAEP variants, the last (software-grade) backend repeats OAEP and adds
// legacy PKCS#1 v1.5. Duplicate pairs collapse when only one backend exists.
func (e *Engine) decryptAttempts() []decryptAttempt {
	backends := e.availableBackends()
	if len(backends) == 0 {
		return nil
	}

	primary := backends[0]
	last := backends[len(backends)-1]

	candidates := []decryptAttempt{
		{primary, SchemeOAEPSHA256},
		{primary, SchemeOAEPSHA256MGF1SHA1},
		{last, SchemeOAEPSHA256},
		{last, SchemePKCS1v15},
	}

	attempts := candidates[:0]
	for _, c := range candidates {
		dup := false
		for _, a := range attempts {
			if a.backend == c.backend && a.scheme == c.scheme {
				dup = true
				break
			}
		}
		if !dup {
			attempts = append(attempts, c)
		}
	}
	return attempts
}

// PrimaryScheme reports the backend/scheme pair attempted first by Decrypt.
// Callers compare it against Payload.SchemeUsed to detect fallback decrypts.
func (e *Engine) PrimaryScheme() string {
	attempts := e.decryptAttempts()
	if len(attempts) == 0 {
		return ""
	}
	return attempts[0].backend.Name() + "/" + attempts[0].scheme.String()
}

// Decrypt describes the decrypt operation and its observable behavior.
//
// Decrypt may return an error when input validation, dependency calls, or security checks fail.
// Decrypt does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Decrypt(base64Ciphertext, privateKeyPEM string) (*Payload, error) {
	attempts := e.decryptAttempts()
	if len(attempts) == 0 {
		return nil, ErrNoBackend
	}

	ciphertext, err := base64.StdEncoding.DecodeString(NormalizeBase64(base64Ciphertext))
	if err != nil {
		return nil, ErrDecryptFailed
	}

	priv, err := parsePrivateKeyPEM(privateKeyPEM)
	if err != nil {
		return nil, ErrDecryptFailed
	}

	for _, attempt := range attempts {
		plain, err := attempt.backend.Decrypt(priv, ciphertext, attempt.scheme)
		if err != nil {
			continue
		}

		payload, ok := parsePayload(plain)
		if !ok {
			log.Printf("linkAuth: %s/%s produced non-payload plaintext, discarding", attempt.backend.Name(), attempt.scheme)
			continue
		}

		payload.SchemeUsed = attempt.backend.Name() + "/" + attempt.scheme.String()
		return payload, nil
	}

	// Deliberately generic: naming the failing scheme would hand an
	// attacker a decryption oracle.
	return nil, ErrDecryptFailed
}

func parsePayload(plain []byte) (*Payload, bool) {
	if !utf8.Valid(plain) {
		return nil, false
	}

	var payload Payload
	if err := json.Unmarshal(plain, &payload); err != nil {
		return nil, false
	}
	if payload.Key == "" {
		return nil, false
	}
	return &payload, true
}

func encodeKeyPair(priv *rsa.PrivateKey) (KeyPair, error) {
	pubPEM, err := encodePublicKeyPEM(&priv.PublicKey)
	if err != nil {
		return KeyPair{}, err
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	})

	return KeyPair{
		PrivateKeyPEM: string(privPEM),
		PublicKeyPEM:  pubPEM,
	}, nil
}

func encodePublicKeyPEM(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("encode public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// parsePrivateKeyPEM accepts both PKCS#1 and PKCS#8 encodings; older app
// versions persisted PKCS#8.
func parsePrivateKeyPEM(privateKeyPEM string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, errors.New("no PEM block in private key")
	}

	if priv, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return priv, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return priv, nil
}
