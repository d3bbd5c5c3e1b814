// Package cryptox seals attachment payloads with single-use AES-256-GCM key
// material and computes the plaintext digest recipients use to verify them.
//
// The cipher runs with a 16-byte nonce (not the GCM default of 12) so the
// output is compatible with other clients of the attachment format. The
// authentication tag is appended to the ciphertext.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	KeySize   = 32
	NonceSize = 16
	TagSize   = 16

	// Algorithm is the value advertised to recipients alongside the key.
	Algorithm = "aes-gcm"
)

var (
	// ErrCrypto is the parent of every error returned by this package.
	// Crypto failures are terminal and must never be retried.
	ErrCrypto = errors.New("crypto error")

	ErrRandomSource         = fmt.Errorf("%w: random source unavailable", ErrCrypto)
	ErrEmptyPlaintext       = fmt.Errorf("%w: empty plaintext", ErrCrypto)
	ErrInvalidParams        = fmt.Errorf("%w: invalid encryption params", ErrCrypto)
	ErrAuthenticationFailed = fmt.Errorf("%w: authentication failed", ErrCrypto)
	ErrDigestMismatch       = fmt.Errorf("%w: digest mismatch", ErrCrypto)
	ErrCipher               = fmt.Errorf("%w: cipher fault", ErrCrypto)
)

// randReader is the entropy source; tests swap it to simulate failures.
var randReader io.Reader = rand.Reader

// EncryptionParams is one-time key material for a single payload. Both fields
// are lowercase hex. Params are owned by the caller and must not be reused.
type EncryptionParams struct {
	Key   string `json:"key"`
	Nonce string `json:"nonce"`
}

// AttachmentPayload is the ciphertext unit moved over the wire.
type AttachmentPayload struct {
	Ciphertext []byte
	MimeType   string
	// Digest is the hex SHA-256 of the plaintext, computed before sealing.
	Digest string
	// PlainSize is the length of the original plaintext.
	PlainSize int
}

// Size returns the ciphertext length, i.e. the number of bytes uploaded.
func (p *AttachmentPayload) Size() int64 {
	return int64(len(p.Ciphertext))
}

// GenerateParams draws a fresh 32-byte key and 16-byte nonce from the CSPRNG.
func GenerateParams() (EncryptionParams, error) {
	buf := make([]byte, KeySize+NonceSize)
	if _, err := io.ReadFull(randReader, buf); err != nil {
		return EncryptionParams{}, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	defer Wipe(buf)
	return EncryptionParams{
		Key:   hex.EncodeToString(buf[:KeySize]),
		Nonce: hex.EncodeToString(buf[KeySize:]),
	}, nil
}

// Wipe zeroes b. Raw key bytes are wiped as soon as the cipher holds its own
// schedule.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Seal digests and encrypts plaintext. Zero-length plaintext is rejected.
func Seal(plaintext []byte, mimeType string, p EncryptionParams) (*AttachmentPayload, error) {
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}

	digest := CalculateDigest(plaintext)

	aead, nonce, err := newAEAD(p)
	if err != nil {
		return nil, err
	}

	ciphertext := aead.Seal(make([]byte, 0, len(plaintext)+TagSize), nonce, plaintext, nil)

	return &AttachmentPayload{
		Ciphertext: ciphertext,
		MimeType:   mimeType,
		Digest:     digest,
		PlainSize:  len(plaintext),
	}, nil
}

// Open authenticates and decrypts ciphertext produced by Seal.
func Open(ciphertext []byte, p EncryptionParams) ([]byte, error) {
	aead, nonce, err := newAEAD(p)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < TagSize {
		return nil, ErrAuthenticationFailed
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// CalculateDigest returns the lowercase hex SHA-256 of b.
func CalculateDigest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// VerifyDigest compares the digest of b with an expected hex digest.
func VerifyDigest(b []byte, digest string) error {
	got := CalculateDigest(b)
	if subtle.ConstantTimeCompare([]byte(got), []byte(strings.ToLower(digest))) != 1 {
		return ErrDigestMismatch
	}
	return nil
}

func newAEAD(p EncryptionParams) (cipher.AEAD, []byte, error) {
	key, err := hex.DecodeString(p.Key)
	if err != nil || len(key) != KeySize {
		return nil, nil, fmt.Errorf("%w: key must be %d hex-encoded bytes", ErrInvalidParams, KeySize)
	}
	nonce, err := hex.DecodeString(p.Nonce)
	if err != nil || len(nonce) != NonceSize {
		return nil, nil, fmt.Errorf("%w: nonce must be %d hex-encoded bytes", ErrInvalidParams, NonceSize)
	}

	block, err := aes.NewCipher(key)
	Wipe(key)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}
	return aead, nonce, nil
}
