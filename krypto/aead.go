package krypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// NonceSize is the nonce length shared by both ciphers in this package.
	NonceSize = 12
	// TagSize is the authentication tag appended to every ciphertext.
	TagSize = 16
)

// ErrOpen is returned when a ciphertext fails authentication.
var ErrOpen = errors.New("message authentication failed")

// AuthenticatedCipher seals and opens messages under a 32-byte key.
// Seal returns ciphertext with the tag appended; nonce generation is the caller's job.
type AuthenticatedCipher interface {
	NonceSize() int
	Overhead() int
	Seal(key, nonce, plaintext, aad []byte) ([]byte, error)
	Open(key, nonce, ciphertext, aad []byte) ([]byte, error)
}

// ChaCha20Poly1305 is the IETF ChaCha20-Poly1305 construction (RFC 8439).
type ChaCha20Poly1305 struct{}

func (ChaCha20Poly1305) NonceSize() int { return chacha20poly1305.NonceSize }
func (ChaCha20Poly1305) Overhead() int  { return chacha20poly1305.Overhead }

// Seal encrypts plaintext with ChaCha20-Poly1305.
func (ChaCha20Poly1305) Seal(key, nonce, plaintext, aad []byte) ([]byte, error) {
	aead, err := newChaCha(key, nonce)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open authenticates and decrypts ciphertext with ChaCha20-Poly1305.
func (ChaCha20Poly1305) Open(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	aead, err := newChaCha(key, nonce)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}

func newChaCha(key, nonce []byte) (cipher.AEAD, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.New("chacha20-poly1305 requires a 32-byte key")
	}
	if len(nonce) != chacha20poly1305.NonceSize {
		return nil, errors.New("invalid nonce size")
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("create chacha20-poly1305: %w", err)
	}
	return aead, nil
}

// AESGCM is AES-256 in GCM mode.
type AESGCM struct{}

func (AESGCM) NonceSize() int { return NonceSize }
func (AESGCM) Overhead() int  { return TagSize }

// Seal encrypts plaintext using AES-256-GCM.
func (AESGCM) Seal(key, nonce, plaintext, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key, nonce)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, nonce, plaintext, aad), nil
}

// Open decrypts the ciphertext using AES-256-GCM.
func (AESGCM) Open(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key, nonce)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}

func newGCM(key, nonce []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, errors.New("aes-gcm requires a 32-byte key")
	}
	if len(nonce) != NonceSize {
		return nil, errors.New("invalid nonce size")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// NewNonce reads n bytes from r, or from crypto/rand when r is nil.
func NewNonce(r io.Reader, n int) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	nonce := make([]byte, n)
	if _, err := io.ReadFull(r, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return nonce, nil
}
