package crypto

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Stream layout:
//
//	header = version(1) ‖ chunkSize(4, big endian) ‖ noncePrefix(16)
//	chunk  = XChaCha20-Poly1305(key, noncePrefix ‖ counter(8), plain, header ‖ lastFlag)
//
// Every chunk except the last carries exactly chunkSize plaintext bytes. The
// last one carries 0..chunkSize bytes and lastFlag = 1, so truncation at a
// chunk boundary and chunk reordering both fail authentication.
const (
	streamVersion    byte = 1
	noncePrefixSize       = chacha20poly1305.NonceSizeX - 8
	streamHeaderSize      = 1 + 4 + noncePrefixSize

	// DefaultChunkSize is the plaintext size of a full chunk.
	DefaultChunkSize = 64 * 1024
	maxChunkSize     = 4 * 1024 * 1024
)

var errMalformedStream = errors.New("malformed stream")

type streamState struct {
	nonce []byte
	aad   []byte
}

func newStreamState(header []byte) *streamState {
	s := &streamState{
		nonce: make([]byte, chacha20poly1305.NonceSizeX),
		aad:   make([]byte, streamHeaderSize+1),
	}
	copy(s.nonce, header[5:streamHeaderSize])
	copy(s.aad, header)
	return s
}

func (s *streamState) next(counter uint64, last bool) {
	binary.BigEndian.PutUint64(s.nonce[noncePrefixSize:], counter)
	s.aad[streamHeaderSize] = 0
	if last {
		s.aad[streamHeaderSize] = 1
	}
}

// sealStream reads src in chunkSize pieces and writes the sealed stream to
// dst. ctx is checked between chunks.
func sealStream(ctx context.Context, dst io.Writer, src io.Reader, key []byte, chunkSize int) error {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("init aead: %w", err)
	}

	header := make([]byte, streamHeaderSize)
	header[0] = streamVersion
	binary.BigEndian.PutUint32(header[1:5], uint32(chunkSize))
	if _, err = rand.Read(header[5:]); err != nil {
		return fmt.Errorf("read nonce prefix: %w", err)
	}
	if _, err = dst.Write(header); err != nil {
		return err
	}

	state := newStreamState(header)
	br := bufio.NewReaderSize(src, chunkSize)
	plain := make([]byte, chunkSize)
	defer Zero(plain)
	sealed := make([]byte, 0, chunkSize+aead.Overhead())

	for counter := uint64(0); ; counter++ {
		if err = ctx.Err(); err != nil {
			return err
		}

		n, readErr := io.ReadFull(br, plain)
		last, err := isLast(br, readErr)
		if err != nil {
			return err
		}

		state.next(counter, last)
		sealed = aead.Seal(sealed[:0], state.nonce, plain[:n], state.aad)
		if _, err = dst.Write(sealed); err != nil {
			return err
		}
		if last {
			return nil
		}
	}
}

// openStream authenticates and decrypts src chunk by chunk into dst. Every
// failure other than ctx cancellation is reported as errMalformedStream or an
// AEAD error; callers map both to models.ErrDecryption.
func openStream(ctx context.Context, dst io.Writer, src io.Reader, key []byte) error {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("init aead: %w", err)
	}

	header := make([]byte, streamHeaderSize)
	if _, err = io.ReadFull(src, header); err != nil {
		return fmt.Errorf("%w: short header", errMalformedStream)
	}
	if header[0] != streamVersion {
		return fmt.Errorf("%w: unsupported version %d", errMalformedStream, header[0])
	}
	chunkSize := binary.BigEndian.Uint32(header[1:5])
	if chunkSize == 0 || chunkSize > maxChunkSize {
		return fmt.Errorf("%w: chunk size %d", errMalformedStream, chunkSize)
	}

	state := newStreamState(header)
	br := bufio.NewReader(src)
	sealed := make([]byte, int(chunkSize)+aead.Overhead())
	plain := make([]byte, 0, chunkSize)
	defer Zero(plain[:cap(plain)])

	for counter := uint64(0); ; counter++ {
		if err = ctx.Err(); err != nil {
			return err
		}

		n, readErr := io.ReadFull(br, sealed)
		if readErr == io.EOF {
			return fmt.Errorf("%w: missing final chunk", errMalformedStream)
		}
		last, err := isLast(br, readErr)
		if err != nil {
			return err
		}
		if n < aead.Overhead() {
			return fmt.Errorf("%w: short chunk", errMalformedStream)
		}

		state.next(counter, last)
		plain, err = aead.Open(plain[:0], state.nonce, sealed[:n], state.aad)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", counter, err)
		}
		if _, err = dst.Write(plain); err != nil {
			return err
		}
		if last {
			return nil
		}
	}
}

// isLast interprets the result of a full-buffer read: a short read means the
// source is exhausted, a full read is the last one only if nothing follows.
func isLast(br *bufio.Reader, readErr error) (bool, error) {
	switch {
	case readErr == io.EOF || errors.Is(readErr, io.ErrUnexpectedEOF):
		return true, nil
	case readErr != nil:
		return false, readErr
	}

	if _, err := br.Peek(1); err != nil {
		if err == io.EOF {
			return true, nil
		}
		return false, err
	}
	return false, nil
}
