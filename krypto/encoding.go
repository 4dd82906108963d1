package krypto

import (
	"encoding/base64"
	"errors"
	"strings"
)

// Encoding is standard base64 without padding, used for every stored hash and blob.
// Strict mode rejects non-zero trailing bits in the final character.
var Encoding = base64.RawStdEncoding.Strict()

// ErrNonCanonical is returned for encoded input containing line breaks.
var ErrNonCanonical = errors.New("non-canonical base64: line breaks not allowed")

// EncodeToString encodes b with Encoding.
func EncodeToString(b []byte) string {
	return Encoding.EncodeToString(b)
}

// DecodeString decodes s with Encoding. Padded input, line breaks and
// non-canonical final characters are rejected, so each byte string has
// exactly one accepted encoding.
func DecodeString(s string) ([]byte, error) {
	if strings.ContainsAny(s, "\r\n") {
		return nil, ErrNonCanonical
	}
	return Encoding.DecodeString(s)
}

// Zero overwrites sensitive byte slices in place.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
