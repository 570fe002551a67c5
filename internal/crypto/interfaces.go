// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"context"
	"crypto/ed25519"
	"io"
)

// Service owns the client key pair and performs every cryptographic operation
// of the SDK. It knows nothing about the network or the companion
// application; apart from the key pair it is stateless per call.
//
// Scheme:
//
//	KeyPair            = X25519 agreement pair + Ed25519 signing pair (once per client)
//	SessionKey         = HKDF-SHA256(X25519(client, companion), sessionID, contractID) (once per session)
//	Envelope.Ciphertext= header ‖ XChaCha20-Poly1305 chunks
//	Envelope.Signature = Ed25519ph(SHA-512(Ciphertext)) by the sender
type Service interface {
	// GenerateKeyPair creates a fresh agreement + signing key pair. It does not
	// replace the pair owned by the service.
	GenerateKeyPair() (KeyPair, error)

	// PublicKey returns the public half of the owned key pair.
	PublicKey() PublicKey

	// DeriveSharedSecret performs X25519 between the owned agreement key and
	// peer, and expands the result into a key bound to sessionID.
	DeriveSharedSecret(peer [32]byte, sessionID, contractID string) (*SessionKey, error)

	// Encrypt seals plaintext with key and signs the ciphertext with the owned
	// signing key.
	Encrypt(ctx context.Context, plaintext []byte, key *SessionKey) (Envelope, error)

	// EncryptStream seals src into dst chunk by chunk and returns the
	// signature over everything written to dst. Memory use does not depend on
	// the size of src.
	EncryptStream(ctx context.Context, dst io.Writer, src io.Reader, key *SessionKey) ([]byte, error)

	// Decrypt verifies env.Signature against sender before touching the
	// ciphertext. A mismatch returns models.ErrIntegrity. Only then is the
	// ciphertext opened; any failure returns models.ErrDecryption and no
	// plaintext.
	Decrypt(ctx context.Context, env Envelope, key *SessionKey, sender ed25519.PublicKey) ([]byte, error)

	// Sign signs msg with the owned Ed25519 key.
	Sign(msg []byte) []byte

	// VerifySignature checks sig over msg against sender and returns
	// models.ErrIntegrity on mismatch.
	VerifySignature(msg, sig []byte, sender ed25519.PublicKey) error
}
