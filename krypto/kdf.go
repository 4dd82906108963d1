package krypto

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultPBKDF2Iterations is the work factor used for every key the vault derives.
	DefaultPBKDF2Iterations = 100_000
	// KeyLen is the length of every derived key (256 bits).
	KeyLen = sha256.Size
)

// KeyDeriver turns a secret and a salt into a fixed-length symmetric key.
// Implementations must be deterministic: the same (secret, salt) always yields the same key.
type KeyDeriver interface {
	DeriveKey(secret, salt []byte) ([]byte, error)
}

// PBKDF2Params captures tunable parameters for PBKDF2-HMAC-SHA256.
type PBKDF2Params struct {
	Iterations int
	KeyLen     int
}

// DefaultPBKDF2Params returns the parameters the vault format is defined with.
func DefaultPBKDF2Params() PBKDF2Params {
	return PBKDF2Params{
		Iterations: DefaultPBKDF2Iterations,
		KeyLen:     KeyLen,
	}
}

// PBKDF2 derives keys with PBKDF2 over HMAC-SHA256.
type PBKDF2 struct {
	params PBKDF2Params
}

// NewPBKDF2 validates p and returns a deriver bound to it.
func NewPBKDF2(p PBKDF2Params) (*PBKDF2, error) {
	if p.Iterations <= 0 {
		return nil, errors.New("iteration count must be positive")
	}
	if p.KeyLen <= 0 {
		return nil, errors.New("key length must be positive")
	}
	return &PBKDF2{params: p}, nil
}

// DefaultPBKDF2 returns a deriver using DefaultPBKDF2Params.
func DefaultPBKDF2() *PBKDF2 {
	return &PBKDF2{params: DefaultPBKDF2Params()}
}

// Params reports the parameters the deriver was built with.
func (k *PBKDF2) Params() PBKDF2Params { return k.params }

// DeriveKey derives params.KeyLen bytes from secret and salt.
// An empty secret is allowed; an empty salt is not.
func (k *PBKDF2) DeriveKey(secret, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, errors.New("salt is required")
	}

	key := pbkdf2.Key(secret, salt, k.params.Iterations, k.params.KeyLen, sha256.New)
	if len(key) != k.params.KeyLen {
		return nil, fmt.Errorf("derived key has unexpected length %d", len(key))
	}
	return key, nil
}
