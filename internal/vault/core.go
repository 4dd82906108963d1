package vault

import (
	"io"

	"github.com/Hussein-Mazeh/passm/krypto"
)

// Core bundles the four cryptographic operations the CLI layer uses.
// It holds no mutable state after construction.
type Core struct {
	master  *MasterAuth
	entries *EntryCipher
}

type coreOptions struct {
	kdf   krypto.KeyDeriver
	aead  krypto.AuthenticatedCipher
	nonce io.Reader
}

// CoreOption customises NewCore.
type CoreOption func(*coreOptions)

// WithKeyDeriver replaces the PBKDF2 deriver for both master hashing and entry keys.
func WithKeyDeriver(k krypto.KeyDeriver) CoreOption {
	return func(o *coreOptions) { o.kdf = k }
}

// WithCipher replaces the ChaCha20-Poly1305 cipher used for entry secrets.
func WithCipher(c krypto.AuthenticatedCipher) CoreOption {
	return func(o *coreOptions) { o.aead = c }
}

// WithNonceSource replaces crypto/rand as the nonce source.
func WithNonceSource(r io.Reader) CoreOption {
	return func(o *coreOptions) { o.nonce = r }
}

// NewCore wires MasterAuth and EntryCipher around one hashing salt.
func NewCore(hashSalt string, opts ...CoreOption) (*Core, error) {
	var o coreOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.kdf == nil {
		o.kdf = krypto.DefaultPBKDF2()
	}

	master, err := NewMasterAuth(hashSalt, o.kdf)
	if err != nil {
		return nil, err
	}

	entries, err := newEntryCipher(master.Salt(), o.kdf, o.aead)
	if err != nil {
		return nil, err
	}
	entries.rand = o.nonce

	return &Core{master: master, entries: entries}, nil
}

// HashMasterPassword returns the storable hash of master.
func (c *Core) HashMasterPassword(master string) (string, error) {
	return c.master.Hash(master)
}

// VerifyMasterPassword reports whether candidate matches stored.
func (c *Core) VerifyMasterPassword(stored, candidate string) bool {
	return c.master.Verify(stored, candidate)
}

// EncryptEntrySecret encrypts one credential secret.
func (c *Core) EncryptEntrySecret(plaintext, username, master string) (string, error) {
	return c.entries.Encrypt(plaintext, username, master)
}

// DecryptEntrySecret decrypts one credential secret.
func (c *Core) DecryptEntrySecret(blob, username, master string) (string, error) {
	return c.entries.Decrypt(blob, username, master)
}
