package vault

import (
	"errors"
	"testing"

	"github.com/Hussein-Mazeh/passm/krypto"
)

func TestNewEntryCipherRequiresMasterSalt(t *testing.T) {
	if _, err := newEntryCipher(nil, nil, nil); err == nil {
		t.Fatal("expected error without a master salt")
	}
}

func TestEntryCipherGuardsMasterSalt(t *testing.T) {
	kdf, err := krypto.NewPBKDF2(krypto.PBKDF2Params{Iterations: 1000, KeyLen: 32})
	if err != nil {
		t.Fatalf("NewPBKDF2: %v", err)
	}
	c, err := newEntryCipher(UsernameSalt("alice"), kdf, nil)
	if err != nil {
		t.Fatalf("newEntryCipher: %v", err)
	}
	if _, err := c.Encrypt("x", "alice", "m"); !errors.Is(err, ErrSaltReuse) {
		t.Fatalf("Encrypt: expected ErrSaltReuse, got %v", err)
	}
	if _, err := c.Decrypt(krypto.EncodeToString(make([]byte, 40)), "alice", "m"); !errors.Is(err, ErrSaltReuse) {
		t.Fatalf("Decrypt: expected ErrSaltReuse, got %v", err)
	}
}
