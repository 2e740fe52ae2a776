package envelope

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"math/big"
)

// SoftBackend is the pure-software RSA fallback. It performs the private-key
// operation with math/big and unpads OAEP / PKCS#1 v1.5 itself, so it works
// even where the platform crypto provider is absent or refuses a legacy
// padding scheme. It is the only backend expected to carry PKCS#1 v1.5.
//
//	Docs: docs/functionality-envelope.md
type SoftBackend struct{}

// NewSoftBackend describes the newsoftbackend operation and its observable behavior.
//
// NewSoftBackend may return an error when input validation, dependency calls, or security checks fail.
// NewSoftBackend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewSoftBackend() SoftBackend {
	return SoftBackend{}
}

// Name describes the name operation and its observable behavior.
//
// Name may return an error when input validation, dependency calls, or security checks fail.
// Name does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (SoftBackend) Name() string { return "softrsa" }

// Available describes the available operation and its observable behavior.
//
// Available may return an error when input validation, dependency calls, or security checks fail.
// Available does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (SoftBackend) Available() bool { return true }

// GenerateKey describes the generatekey operation and its observable behavior.
//
// GenerateKey may return an error when input validation, dependency calls, or security checks fail.
// GenerateKey does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (SoftBackend) GenerateKey(bits int) (*rsa.PrivateKey, error) {
	if bits < 2048 {
		return nil, errors.New("softrsa: key size below 2048 not permitted")
	}

	e := big.NewInt(65537)
	one := big.NewInt(1)

	for attempt := 0; attempt < 16; attempt++ {
		p, err := rand.Prime(rand.Reader, bits/2)
		if err != nil {
			return nil, fmt.Errorf("softrsa: prime generation: %w", err)
		}
		q, err := rand.Prime(rand.Reader, bits-bits/2)
		if err != nil {
			return nil, fmt.Errorf("softrsa: prime generation: %w", err)
		}
		if p.Cmp(q) == 0 {
			continue
		}

		n := new(big.Int).Mul(p, q)
		if n.BitLen() != bits {
			continue
		}

		phi := new(big.Int).Mul(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))
		d := new(big.Int).ModInverse(e, phi)
		if d == nil {
			continue
		}

		key := &rsa.PrivateKey{
			PublicKey: rsa.PublicKey{N: n, E: int(e.Int64())},
			D:         d,
			Primes:    []*big.Int{p, q},
		}
		key.Precompute()
		if err := key.Validate(); err != nil {
			continue
		}
		return key, nil
	}

	return nil, errors.New("softrsa: key generation did not converge")
}

// Decrypt describes the decrypt operation and its observable behavior.
//
// Decrypt may return an error when input validation, dependency calls, or security checks fail.
// Decrypt does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (SoftBackend) Decrypt(priv *rsa.PrivateKey, ciphertext []byte, scheme Scheme) ([]byte, error) {
	em, err := rawDecrypt(priv, ciphertext)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case SchemeOAEPSHA256:
		return oaepUnpad(em, sha256.New)
	case SchemeOAEPSHA256MGF1SHA1:
		return oaepUnpadMGF(em, sha256.New, sha1.New)
	case SchemePKCS1v15:
		return pkcs1v15Unpad(em)
	default:
		return nil, fmt.Errorf("%w: scheme %d", ErrBackendUnsupported, scheme)
	}
}

// PublicFromPrivate describes the publicfromprivate operation and its observable behavior.
//
// PublicFromPrivate may return an error when input validation, dependency calls, or security checks fail.
// PublicFromPrivate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (SoftBackend) PublicFromPrivate(priv *rsa.PrivateKey) (*rsa.PublicKey, error) {
	if priv == nil || priv.N == nil {
		return nil, ErrBackendUnsupported
	}
	return &rsa.PublicKey{N: priv.N, E: priv.E}, nil
}

// rawDecrypt is the textbook private-key operation m = c^d mod n, left-padded
// to the modulus size.
func rawDecrypt(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	k := (priv.N.BitLen() + 7) / 8
	if len(ciphertext) != k {
		return nil, errors.New("softrsa: ciphertext length mismatch")
	}

	c := new(big.Int).SetBytes(ciphertext)
	if c.Cmp(priv.N) >= 0 {
		return nil, errors.New("softrsa: ciphertext out of range")
	}

	m := new(big.Int).Exp(c, priv.D, priv.N)
	return m.FillBytes(make([]byte, k)), nil
}

func oaepUnpad(em []byte, h func() hash.Hash) ([]byte, error) {
	return oaepUnpadMGF(em, h, h)
}

// oaepUnpadMGF reverses EME-OAEP encoding (RFC 8017 §7.1.2) with an empty
// label, allowing the MGF hash to differ from the label hash.
func oaepUnpadMGF(em []byte, labelHash, mgfHash func() hash.Hash) ([]byte, error) {
	hLen := labelHash().Size()
	if len(em) < 2*hLen+2 || em[0] != 0 {
		return nil, errors.New("softrsa: oaep decoding error")
	}

	maskedSeed := em[1 : 1+hLen]
	maskedDB := em[1+hLen:]

	seed := xorBytes(maskedSeed, mgf1(maskedDB, hLen, mgfHash))
	db := xorBytes(maskedDB, mgf1(seed, len(maskedDB), mgfHash))

	lh := labelHash()
	lh.Write(nil)
	expected := lh.Sum(nil)
	if subtle.ConstantTimeCompare(db[:hLen], expected) != 1 {
		return nil, errors.New("softrsa: oaep decoding error")
	}

	rest := db[hLen:]
	sep := bytes.IndexByte(rest, 0x01)
	if sep < 0 {
		return nil, errors.New("softrsa: oaep decoding error")
	}
	for _, b := range rest[:sep] {
		if b != 0 {
			return nil, errors.New("softrsa: oaep decoding error")
		}
	}
	return rest[sep+1:], nil
}

func pkcs1v15Unpad(em []byte) ([]byte, error) {
	if len(em) < 11 || em[0] != 0 || em[1] != 2 {
		return nil, errors.New("softrsa: pkcs1v15 decoding error")
	}

	sep := bytes.IndexByte(em[2:], 0)
	if sep < 8 {
		return nil, errors.New("softrsa: pkcs1v15 decoding error")
	}
	return em[2+sep+1:], nil
}

func mgf1(seed []byte, length int, h func() hash.Hash) []byte {
	out := make([]byte, 0, length)
	hh := h()

	var counter [4]byte
	for i := uint32(0); len(out) < length; i++ {
		binary.BigEndian.PutUint32(counter[:], i)
		hh.Reset()
		hh.Write(seed)
		hh.Write(counter[:])
		out = hh.Sum(out)
	}
	return out[:length]
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}
