// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"bytes"
	"context"
	stdcrypto "crypto"
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/MKhiriev/go-consent-sdk/models"
)

// signatureContext domain-separates consent payload signatures from any other
// Ed25519ph use of the same key.
const signatureContext = "consent-sdk payload v1"

// Envelope is a sealed payload together with the sender's signature over the
// ciphertext.
type Envelope struct {
	Ciphertext []byte
	Signature  []byte
}

// EncodeEnvelope returns the base64 forms used on the wire.
func EncodeEnvelope(env Envelope) (ciphertext, signature string) {
	return base64.StdEncoding.EncodeToString(env.Ciphertext), base64.StdEncoding.EncodeToString(env.Signature)
}

// DecodeEnvelope parses the wire form. A malformed field is reported as
// [models.ErrIntegrity] because the payload cannot be authenticated.
func DecodeEnvelope(ciphertext, signature string) (Envelope, error) {
	ct, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: ciphertext encoding: %v", models.ErrIntegrity, err)
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: signature encoding: %v", models.ErrIntegrity, err)
	}
	return Envelope{Ciphertext: ct, Signature: sig}, nil
}

// service is the private implementation of [Service].
type service struct {
	keys      KeyPair
	chunkSize int
}

// NewService constructs a [Service] owning keys. Payloads are chunked at
// [DefaultChunkSize].
func NewService(keys KeyPair) Service {
	return &service{keys: keys, chunkSize: DefaultChunkSize}
}

// GenerateKeyPair implements [Service].
func (s *service) GenerateKeyPair() (KeyPair, error) {
	return GenerateKeyPair()
}

// PublicKey implements [Service].
func (s *service) PublicKey() PublicKey {
	return s.keys.Public()
}

// DeriveSharedSecret implements [Service].
func (s *service) DeriveSharedSecret(peer [32]byte, sessionID, contractID string) (*SessionKey, error) {
	return DeriveSessionKey(s.keys.AgreementPrivate, peer, sessionID, contractID)
}

// Encrypt implements [Service].
func (s *service) Encrypt(ctx context.Context, plaintext []byte, key *SessionKey) (Envelope, error) {
	var buf bytes.Buffer
	buf.Grow(streamHeaderSize + len(plaintext) + (len(plaintext)/s.chunkSize+1)*16)

	sig, err := s.EncryptStream(ctx, &buf, bytes.NewReader(plaintext), key)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Ciphertext: buf.Bytes(), Signature: sig}, nil
}

// EncryptStream implements [Service]. The ciphertext is hashed as it is
// written so the signature never needs the whole ciphertext in memory.
func (s *service) EncryptStream(ctx context.Context, dst io.Writer, src io.Reader, key *SessionKey) ([]byte, error) {
	h := sha512.New()
	err := key.use(func(k []byte) error {
		return sealStream(ctx, io.MultiWriter(dst, h), src, k, s.chunkSize)
	})
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	return s.signDigest(h.Sum(nil))
}

// Decrypt implements [Service].
func (s *service) Decrypt(ctx context.Context, env Envelope, key *SessionKey, sender ed25519.PublicKey) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	digest := sha512.Sum512(env.Ciphertext)
	if err := verifyDigest(sender, digest[:], env.Signature); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(len(env.Ciphertext))
	err := key.use(func(k []byte) error {
		return openStream(ctx, &out, bytes.NewReader(env.Ciphertext), k)
	})
	if err != nil {
		partial := out.Bytes()
		Zero(partial[:cap(partial)])

		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case errors.Is(err, ErrKeyWiped):
			return nil, fmt.Errorf("%w: %v", models.ErrSessionExpired, err)
		default:
			return nil, fmt.Errorf("%w: %v", models.ErrDecryption, err)
		}
	}

	return out.Bytes(), nil
}

// Sign implements [Service].
func (s *service) Sign(msg []byte) []byte {
	return ed25519.Sign(s.keys.SigningPrivate, msg)
}

// VerifySignature implements [Service].
func (s *service) VerifySignature(msg, sig []byte, sender ed25519.PublicKey) error {
	if len(sender) != ed25519.PublicKeySize || !ed25519.Verify(sender, msg, sig) {
		return fmt.Errorf("%w: signature mismatch", models.ErrIntegrity)
	}
	return nil
}

func (s *service) signDigest(digest []byte) ([]byte, error) {
	return SignDigest(s.keys.SigningPrivate, digest)
}

// SignDigest produces an Ed25519ph signature over a SHA-512 digest of a
// ciphertext.
func SignDigest(priv ed25519.PrivateKey, digest []byte) ([]byte, error) {
	sig, err := priv.Sign(nil, digest, &ed25519.Options{Hash: stdcrypto.SHA512, Context: signatureContext})
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return sig, nil
}

func verifyDigest(sender ed25519.PublicKey, digest, sig []byte) error {
	if len(sender) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: sender key has %d bytes", models.ErrIntegrity, len(sender))
	}
	opts := &ed25519.Options{Hash: stdcrypto.SHA512, Context: signatureContext}
	if err := ed25519.VerifyWithOptions(sender, digest, sig, opts); err != nil {
		return fmt.Errorf("%w: %v", models.ErrIntegrity, err)
	}
	return nil
}
