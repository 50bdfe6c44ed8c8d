package reactorkv

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// salt mirrors the teacher's SALT = "kcp-go" pbkdf2 expansion pattern in
// client/main.go and server/main.go, adapted to this sample's own secret
// namespace.
const salt = "reactorkv"

const (
	pbkdf2Iterations = 4096
	keyLength        = 32
	tagLength        = sha256.Size
)

// DeriveKey expands a pre-shared passphrase into a fixed-length HMAC key via
// PBKDF2-HMAC-SHA1, matching the teacher's key derivation shape exactly
// (only the salt and output length differ, since this sample authenticates
// frames instead of seeding a block cipher).
func DeriveKey(passphrase string) []byte {
	return pbkdf2.Key([]byte(passphrase), []byte(salt), pbkdf2Iterations, keyLength, sha1.New)
}

// Sign appends an HMAC-SHA256 tag of body, keyed by key, to body.
func Sign(key, body []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return mac.Sum(body)
}

// Verify checks the trailing HMAC-SHA256 tag of framed and, if valid,
// returns the body with the tag stripped.
func Verify(key, framed []byte) (body []byte, ok bool) {
	if len(framed) < tagLength {
		return nil, false
	}
	split := len(framed) - tagLength
	body, tag := framed[:split], framed[split:]
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	expected := mac.Sum(nil)
	return body, hmac.Equal(tag, expected)
}
