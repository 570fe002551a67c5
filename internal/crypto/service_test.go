package crypto

import (
	"bytes"
	"context"
	"crypto/sha512"
	"errors"
	"testing"

	"github.com/MKhiriev/go-consent-sdk/models"
)

func newTestService(t *testing.T, chunkSize int) (*service, *SessionKey) {
	t.Helper()
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair error: %v", err)
	}
	svc := NewService(kp).(*service)
	if chunkSize > 0 {
		svc.chunkSize = chunkSize
	}
	key, err := NewSessionKey("session-1", bytes.Repeat([]byte{0x42}, 32))
	if err != nil {
		t.Fatalf("NewSessionKey error: %v", err)
	}
	return svc, key
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		size      int
	}{
		{name: "empty", chunkSize: 16, size: 0},
		{name: "smaller than a chunk", chunkSize: 16, size: 5},
		{name: "exact chunk", chunkSize: 16, size: 16},
		{name: "exact multiple", chunkSize: 16, size: 64},
		{name: "many chunks with tail", chunkSize: 16, size: 1000},
		{name: "default chunk size", chunkSize: 0, size: 3*DefaultChunkSize + 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, key := newTestService(t, tt.chunkSize)
			plaintext := make([]byte, tt.size)
			for i := range plaintext {
				plaintext[i] = byte(i * 7)
			}

			env, err := svc.Encrypt(context.Background(), plaintext, key)
			if err != nil {
				t.Fatalf("Encrypt error: %v", err)
			}
			if len(env.Signature) != 64 {
				t.Fatalf("signature length = %d, want 64", len(env.Signature))
			}

			got, err := svc.Decrypt(context.Background(), env, key, svc.PublicKey().Signing)
			if err != nil {
				t.Fatalf("Decrypt error: %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(plaintext))
			}
		})
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	svc, key := newTestService(t, 0)
	msg := []byte("same input")

	a, err := svc.Encrypt(context.Background(), msg, key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	b, err := svc.Encrypt(context.Background(), msg, key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if bytes.Equal(a.Ciphertext, b.Ciphertext) {
		t.Fatalf("expected ciphertexts to differ across calls")
	}
}

// Every single-bit flip in the ciphertext or the signature must be caught by
// the signature check before any decryption happens.
func TestDecrypt_BitFlipIsIntegrityFailure(t *testing.T) {
	svc, key := newTestService(t, 16)
	env, err := svc.Encrypt(context.Background(), []byte("the quick brown fox jumps over the lazy dog"), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	sender := svc.PublicKey().Signing

	for i := range env.Ciphertext {
		tampered := Envelope{Ciphertext: bytes.Clone(env.Ciphertext), Signature: env.Signature}
		tampered.Ciphertext[i] ^= 1 << (i % 8)

		got, err := svc.Decrypt(context.Background(), tampered, key, sender)
		if !errors.Is(err, models.ErrIntegrity) {
			t.Fatalf("ciphertext byte %d: err = %v, want ErrIntegrity", i, err)
		}
		if got != nil {
			t.Fatalf("ciphertext byte %d: expected no plaintext", i)
		}
	}

	for i := range env.Signature {
		tampered := Envelope{Ciphertext: env.Ciphertext, Signature: bytes.Clone(env.Signature)}
		tampered.Signature[i] ^= 0x80

		if _, err := svc.Decrypt(context.Background(), tampered, key, sender); !errors.Is(err, models.ErrIntegrity) {
			t.Fatalf("signature byte %d: err = %v, want ErrIntegrity", i, err)
		}
	}
}

func TestDecrypt_WrongSenderIsIntegrityFailure(t *testing.T) {
	svc, key := newTestService(t, 0)
	other, _ := newTestService(t, 0)

	env, err := svc.Encrypt(context.Background(), []byte("payload"), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	if _, err = svc.Decrypt(context.Background(), env, key, other.PublicKey().Signing); !errors.Is(err, models.ErrIntegrity) {
		t.Fatalf("err = %v, want ErrIntegrity", err)
	}
	if _, err = svc.Decrypt(context.Background(), env, key, nil); !errors.Is(err, models.ErrIntegrity) {
		t.Fatalf("nil sender: err = %v, want ErrIntegrity", err)
	}
}

func TestDecrypt_WrongKeyIsDecryptionFailure(t *testing.T) {
	svc, key := newTestService(t, 0)
	env, err := svc.Encrypt(context.Background(), []byte("payload"), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	wrong, err := NewSessionKey("session-1", bytes.Repeat([]byte{0x43}, 32))
	if err != nil {
		t.Fatalf("NewSessionKey error: %v", err)
	}

	got, err := svc.Decrypt(context.Background(), env, wrong, svc.PublicKey().Signing)
	if !errors.Is(err, models.ErrDecryption) {
		t.Fatalf("err = %v, want ErrDecryption", err)
	}
	if got != nil {
		t.Fatalf("expected no plaintext on decryption failure")
	}
}

// A correctly signed but truncated stream must still be rejected by the
// last-chunk flag.
func TestDecrypt_TruncatedStream(t *testing.T) {
	svc, key := newTestService(t, 16)
	env, err := svc.Encrypt(context.Background(), bytes.Repeat([]byte("a"), 40), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	cuts := map[string]int{
		"header only":    streamHeaderSize,
		"chunk boundary": streamHeaderSize + 16 + 16,
		"mid chunk":      streamHeaderSize + 10,
		"short header":   3,
	}
	for name, n := range cuts {
		t.Run(name, func(t *testing.T) {
			ct := env.Ciphertext[:n]
			digest := sha512.Sum512(ct)
			sig, err := SignDigest(svc.keys.SigningPrivate, digest[:])
			if err != nil {
				t.Fatalf("SignDigest error: %v", err)
			}

			_, err = svc.Decrypt(context.Background(), Envelope{Ciphertext: ct, Signature: sig}, key, svc.PublicKey().Signing)
			if !errors.Is(err, models.ErrDecryption) {
				t.Fatalf("err = %v, want ErrDecryption", err)
			}
		})
	}
}

func TestDecrypt_WipedKey(t *testing.T) {
	svc, key := newTestService(t, 0)
	env, err := svc.Encrypt(context.Background(), []byte("payload"), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	key.Wipe()
	if !key.Wiped() {
		t.Fatalf("expected key to report wiped")
	}

	if _, err = svc.Decrypt(context.Background(), env, key, svc.PublicKey().Signing); !errors.Is(err, models.ErrSessionExpired) {
		t.Fatalf("Decrypt err = %v, want ErrSessionExpired", err)
	}
	if _, err = svc.Encrypt(context.Background(), []byte("x"), key); !errors.Is(err, ErrKeyWiped) {
		t.Fatalf("Encrypt err = %v, want ErrKeyWiped", err)
	}
}

func TestDecrypt_CancelledContext(t *testing.T) {
	svc, key := newTestService(t, 16)
	env, err := svc.Encrypt(context.Background(), bytes.Repeat([]byte("b"), 100), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err = svc.Decrypt(ctx, env, key, svc.PublicKey().Signing); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestEncryptStream_MatchesDecrypt(t *testing.T) {
	svc, key := newTestService(t, 32)
	src := bytes.Repeat([]byte("stream"), 100)

	var dst bytes.Buffer
	sig, err := svc.EncryptStream(context.Background(), &dst, bytes.NewReader(src), key)
	if err != nil {
		t.Fatalf("EncryptStream error: %v", err)
	}

	got, err := svc.Decrypt(context.Background(), Envelope{Ciphertext: dst.Bytes(), Signature: sig}, key, svc.PublicKey().Signing)
	if err != nil {
		t.Fatalf("Decrypt error: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatalf("stream round trip mismatch")
	}
}

func TestSignVerify(t *testing.T) {
	svc, _ := newTestService(t, 0)
	msg := []byte("callback body")
	sig := svc.Sign(msg)

	if err := svc.VerifySignature(msg, sig, svc.PublicKey().Signing); err != nil {
		t.Fatalf("VerifySignature error: %v", err)
	}

	sig[0] ^= 1
	if err := svc.VerifySignature(msg, sig, svc.PublicKey().Signing); !errors.Is(err, models.ErrIntegrity) {
		t.Fatalf("err = %v, want ErrIntegrity", err)
	}
}

func TestEnvelopeEncoding(t *testing.T) {
	env := Envelope{Ciphertext: []byte{1, 2, 3}, Signature: []byte{4, 5}}
	ct, sig := EncodeEnvelope(env)

	got, err := DecodeEnvelope(ct, sig)
	if err != nil {
		t.Fatalf("DecodeEnvelope error: %v", err)
	}
	if !bytes.Equal(got.Ciphertext, env.Ciphertext) || !bytes.Equal(got.Signature, env.Signature) {
		t.Fatalf("decoded envelope mismatch")
	}

	if _, err = DecodeEnvelope("%%%", sig); !errors.Is(err, models.ErrIntegrity) {
		t.Fatalf("err = %v, want ErrIntegrity", err)
	}
}
