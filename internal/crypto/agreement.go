// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

const hkdfInfoPrefix = "consent-sdk/session/v1|"

// DeriveSessionKey computes X25519(priv, peer) and expands it with
// HKDF-SHA256, salt = sessionID, info = prefix ‖ contractID. Both sides of a
// session call it with their own private key and the other's public key.
//
// curve25519.X25519 rejects low-order peer points, so an all-zero shared
// secret never reaches HKDF.
func DeriveSessionKey(priv, peer [32]byte, sessionID, contractID string) (*SessionKey, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrInvalidKey)
	}

	shared, err := curve25519.X25519(priv[:], peer[:])
	if err != nil {
		return nil, fmt.Errorf("x25519: %w", err)
	}
	defer Zero(shared)

	kdf := hkdf.New(sha256.New, shared, []byte(sessionID), []byte(hkdfInfoPrefix+contractID))
	raw := make([]byte, chacha20poly1305.KeySize)
	defer Zero(raw)
	if _, err = io.ReadFull(kdf, raw); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}

	return NewSessionKey(sessionID, raw)
}
