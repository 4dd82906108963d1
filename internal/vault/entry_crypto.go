package vault

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/Hussein-Mazeh/passm/krypto"
)

const entrySaltLen = 16

// UsernameSalt returns the first 16 bytes of SHA-256(username).
//
// The salt is deterministic so no salt field needs storing, which means two
// entries with the same username share an encryption key, and renaming a
// username without re-encrypting makes the entry undecryptable.
func UsernameSalt(username string) []byte {
	sum := sha256.Sum256([]byte(username))
	salt := make([]byte, entrySaltLen)
	copy(salt, sum[:entrySaltLen])
	return salt
}

// EntryCipher encrypts and decrypts single credential secrets under a key
// derived from (master password, username salt). It is built by NewCore.
type EntryCipher struct {
	kdf      krypto.KeyDeriver
	aead     krypto.AuthenticatedCipher
	rand     io.Reader
	reserved []byte
}

// newEntryCipher builds an EntryCipher that refuses any username whose salt
// equals masterSalt. Nil kdf and aead select PBKDF2 with default parameters
// and ChaCha20-Poly1305.
func newEntryCipher(masterSalt []byte, kdf krypto.KeyDeriver, aead krypto.AuthenticatedCipher) (*EntryCipher, error) {
	if len(masterSalt) == 0 {
		return nil, errors.New("entry cipher requires the master hash salt")
	}
	if kdf == nil {
		kdf = krypto.DefaultPBKDF2()
	}
	if aead == nil {
		aead = krypto.ChaCha20Poly1305{}
	}
	return &EntryCipher{kdf: kdf, aead: aead, reserved: append([]byte(nil), masterSalt...)}, nil
}

func (c *EntryCipher) entryKey(username, master string) ([]byte, error) {
	salt := UsernameSalt(username)
	if bytes.Equal(salt, c.reserved) {
		return nil, ErrSaltReuse
	}

	secret := []byte(master)
	defer krypto.Zero(secret)

	key, err := c.kdf.DeriveKey(secret, salt)
	if err != nil {
		return nil, fmt.Errorf("derive entry key: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext and returns base64(nonce || ciphertext || tag).
// Every call draws a fresh nonce, so identical inputs give different blobs.
func (c *EntryCipher) Encrypt(plaintext, username, master string) (string, error) {
	key, err := c.entryKey(username, master)
	if err != nil {
		return "", err
	}
	defer krypto.Zero(key)

	nonce, err := krypto.NewNonce(c.rand, c.aead.NonceSize())
	if err != nil {
		return "", err
	}

	ciphertext, err := c.aead.Seal(key, nonce, []byte(plaintext), nil)
	if err != nil {
		return "", fmt.Errorf("encrypt entry secret: %w", err)
	}

	blob := make([]byte, 0, len(nonce)+len(ciphertext))
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)
	return krypto.EncodeToString(blob), nil
}

// Decrypt reverses Encrypt. Failures are reported as *DecryptionError.
func (c *EntryCipher) Decrypt(blob, username, master string) (string, error) {
	raw, err := krypto.DecodeString(blob)
	if err != nil {
		return "", &DecryptionError{Err: fmt.Errorf("%w: %v", ErrInvalidEncoding, err)}
	}
	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", &DecryptionError{Err: fmt.Errorf("%w: blob shorter than nonce", ErrInvalidEncoding)}
	}

	key, err := c.entryKey(username, master)
	if err != nil {
		return "", err
	}
	defer krypto.Zero(key)

	plaintext, err := c.aead.Open(key, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		if errors.Is(err, krypto.ErrOpen) {
			return "", &DecryptionError{Err: ErrAuthenticationFailure}
		}
		return "", fmt.Errorf("decrypt entry secret: %w", err)
	}
	defer krypto.Zero(plaintext)

	if !utf8.Valid(plaintext) {
		return "", &DecryptionError{Err: ErrInvalidText}
	}
	return string(plaintext), nil
}
