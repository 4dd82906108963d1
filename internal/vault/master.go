package vault

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/Hussein-Mazeh/passm/krypto"
)

// DefaultHashSalt is the master hash salt used when none is configured.
const DefaultHashSalt = "default_salt_value"

// MasterAuth hashes the master password for storage and verifies candidates
// against that hash. The salt is fixed for the lifetime of a vault.
type MasterAuth struct {
	salt []byte
	kdf  krypto.KeyDeriver
}

// NewMasterAuth binds the hashing salt and key deriver. A nil kdf selects the
// default PBKDF2 parameters.
func NewMasterAuth(salt string, kdf krypto.KeyDeriver) (*MasterAuth, error) {
	if salt == "" {
		return nil, errors.New("master hash salt is required")
	}
	if kdf == nil {
		kdf = krypto.DefaultPBKDF2()
	}
	return &MasterAuth{salt: []byte(salt), kdf: kdf}, nil
}

// Salt returns a copy of the fixed hashing salt.
func (m *MasterAuth) Salt() []byte {
	return append([]byte(nil), m.salt...)
}

// Hash derives a key from master and returns it base64-encoded for storage.
func (m *MasterAuth) Hash(master string) (string, error) {
	secret := []byte(master)
	defer krypto.Zero(secret)

	key, err := m.kdf.DeriveKey(secret, m.salt)
	if err != nil {
		return "", fmt.Errorf("hash master password: %w", err)
	}
	defer krypto.Zero(key)

	return krypto.EncodeToString(key), nil
}

// Verify reports whether candidate hashes to stored. It fails closed: any
// decoding or derivation problem yields false.
func (m *MasterAuth) Verify(stored, candidate string) bool {
	want, err := krypto.DecodeString(stored)
	if err != nil || len(want) == 0 {
		return false
	}

	secret := []byte(candidate)
	defer krypto.Zero(secret)

	got, err := m.kdf.DeriveKey(secret, m.salt)
	if err != nil {
		return false
	}
	defer krypto.Zero(got)

	return subtle.ConstantTimeCompare(want, got) == 1
}
