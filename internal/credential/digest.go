// Package credential derives the stored secret for an account.
//
// The digest is PBKDF2-HMAC-SHA512 keyed by the client-supplied secret and
// salted with the account email. The salt is not random, so a digest can be
// recomputed offline by anyone who knows the email and the iteration count.
// Every stored digest depends on Iterations; changing it locks out every
// existing account.
package credential

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations is fixed for the life of the credential store.
	Iterations = 2000

	// Size is the digest length in bytes.
	Size = 64
)

// Sum returns the raw digest of secret under the given context (the email).
func Sum(secret, context string) [Size]byte {
	var out [Size]byte
	copy(out[:], pbkdf2.Key([]byte(secret), []byte(context), Iterations, Size, sha512.New))
	return out
}

// Digest returns Sum encoded as standard base64, the stored form.
func Digest(secret, context string) string {
	sum := Sum(secret, context)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Equal compares two encoded digests in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
