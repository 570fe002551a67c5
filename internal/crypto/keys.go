// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
)

// Key sizes of the encoded forms.
const (
	agreementKeySize = curve25519.ScalarSize
	encodedPairSize  = agreementKeySize + ed25519.SeedSize
	encodedPubSize   = agreementKeySize + ed25519.PublicKeySize
)

var (
	// ErrInvalidKey is returned when an encoded key cannot be parsed.
	ErrInvalidKey = errors.New("invalid key encoding")

	// ErrKeyWiped is returned when a session key is used after invalidation.
	ErrKeyWiped = errors.New("session key has been invalidated")
)

// KeyPair carries both the X25519 agreement pair and the Ed25519 signing
// pair of one party.
type KeyPair struct {
	AgreementPrivate [32]byte
	AgreementPublic  [32]byte

	SigningPrivate ed25519.PrivateKey
	SigningPublic  ed25519.PublicKey
}

// PublicKey is the shareable half of a [KeyPair].
type PublicKey struct {
	Agreement [32]byte
	Signing   ed25519.PublicKey
}

// GenerateKeyPair returns a fresh key pair read from the OS CSPRNG. The
// agreement private key is clamped per RFC 7748.
func GenerateKeyPair() (KeyPair, error) {
	var kp KeyPair
	if _, err := rand.Read(kp.AgreementPrivate[:]); err != nil {
		return KeyPair{}, fmt.Errorf("read agreement key: %w", err)
	}
	clamp(&kp.AgreementPrivate)

	pub, err := curve25519.X25519(kp.AgreementPrivate[:], curve25519.Basepoint)
	if err != nil {
		return KeyPair{}, fmt.Errorf("derive agreement public key: %w", err)
	}
	copy(kp.AgreementPublic[:], pub)

	kp.SigningPublic, kp.SigningPrivate, err = ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate signing key: %w", err)
	}

	return kp, nil
}

// Public returns the public half of k.
func (k KeyPair) Public() PublicKey {
	return PublicKey{Agreement: k.AgreementPublic, Signing: k.SigningPublic}
}

// Encode serialises the private material as base64(agreementPrivate ‖
// signingSeed). The result is a secret.
func (k KeyPair) Encode() string {
	buf := make([]byte, 0, encodedPairSize)
	buf = append(buf, k.AgreementPrivate[:]...)
	buf = append(buf, k.SigningPrivate.Seed()...)
	return base64.StdEncoding.EncodeToString(buf)
}

// ParseKeyPair restores a key pair produced by [KeyPair.Encode].
func ParseKeyPair(encoded string) (KeyPair, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) != encodedPairSize {
		return KeyPair{}, fmt.Errorf("%w: key pair", ErrInvalidKey)
	}
	defer Zero(raw)

	var kp KeyPair
	copy(kp.AgreementPrivate[:], raw[:agreementKeySize])
	clamp(&kp.AgreementPrivate)

	pub, err := curve25519.X25519(kp.AgreementPrivate[:], curve25519.Basepoint)
	if err != nil {
		return KeyPair{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	copy(kp.AgreementPublic[:], pub)

	kp.SigningPrivate = ed25519.NewKeyFromSeed(raw[agreementKeySize:])
	kp.SigningPublic = kp.SigningPrivate.Public().(ed25519.PublicKey)

	return kp, nil
}

// Encode serialises p as base64(agreement ‖ signing).
func (p PublicKey) Encode() string {
	buf := make([]byte, 0, encodedPubSize)
	buf = append(buf, p.Agreement[:]...)
	buf = append(buf, p.Signing...)
	return base64.StdEncoding.EncodeToString(buf)
}

// ParsePublicKey restores a public key produced by [PublicKey.Encode].
func ParsePublicKey(encoded string) (PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) != encodedPubSize {
		return PublicKey{}, fmt.Errorf("%w: public key", ErrInvalidKey)
	}

	var p PublicKey
	copy(p.Agreement[:], raw[:agreementKeySize])
	p.Signing = make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(p.Signing, raw[agreementKeySize:])
	return p, nil
}

// ParseAgreementKey decodes a base64 X25519 public key.
func ParseAgreementKey(encoded string) ([32]byte, error) {
	var out [32]byte
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) != agreementKeySize {
		return out, fmt.Errorf("%w: agreement key", ErrInvalidKey)
	}
	copy(out[:], raw)
	return out, nil
}

// SessionKey is the symmetric key derived for exactly one session. It is
// read-mostly; Wipe takes the write lock so no operation ever observes a
// half-cleared key.
type SessionKey struct {
	sessionID string

	mu  sync.RWMutex
	key []byte
}

// NewSessionKey copies raw into a key bound to sessionID.
func NewSessionKey(sessionID string, raw []byte) (*SessionKey, error) {
	if len(raw) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: session key must be %d bytes", ErrInvalidKey, chacha20poly1305.KeySize)
	}
	key := make([]byte, len(raw))
	copy(key, raw)
	return &SessionKey{sessionID: sessionID, key: key}, nil
}

// SessionID returns the session the key is bound to.
func (k *SessionKey) SessionID() string {
	return k.sessionID
}

// Wipe zeroes the key. Every later use fails with [ErrKeyWiped].
func (k *SessionKey) Wipe() {
	k.mu.Lock()
	defer k.mu.Unlock()
	Zero(k.key)
	k.key = nil
}

// Wiped reports whether Wipe has been called.
func (k *SessionKey) Wiped() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.key == nil
}

func (k *SessionKey) use(fn func(key []byte) error) error {
	if k == nil {
		return ErrKeyWiped
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.key == nil {
		return ErrKeyWiped
	}
	return fn(k.key)
}

func clamp(k *[32]byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
