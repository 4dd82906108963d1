package vault

import "errors"

var (
	// ErrInvalidEncoding marks a stored hash or blob that is not valid base64
	// or is shorter than a nonce.
	ErrInvalidEncoding = errors.New("invalid encoding")
	// ErrAuthenticationFailure covers a wrong master password, a wrong username
	// and a tampered blob alike. Callers must not try to tell them apart.
	ErrAuthenticationFailure = errors.New("authentication failed")
	// ErrInvalidText means the decrypted bytes are not valid UTF-8.
	ErrInvalidText = errors.New("decrypted secret is not valid text")
	// ErrSaltReuse is returned when an entry salt would equal the master hash salt.
	ErrSaltReuse = errors.New("entry salt collides with master password salt")
	// ErrMissingMasterHash is returned for a vault without a master password hash.
	ErrMissingMasterHash = errors.New("vault has no master password hash")
)

// DecryptionError is returned by EntryCipher.Decrypt. Err is one of
// ErrInvalidEncoding, ErrAuthenticationFailure or ErrInvalidText.
type DecryptionError struct {
	Err error
}

func (e *DecryptionError) Error() string { return "decrypt entry secret: " + e.Err.Error() }

func (e *DecryptionError) Unwrap() error { return e.Err }
