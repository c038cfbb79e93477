// Package password provides one-way salted hashing and verification of
// user passwords.
package password

import "golang.org/x/crypto/bcrypt"

// Hasher wraps bcrypt with a fixed cost. The per-call salt is embedded in
// the digest, so verification needs no separate salt storage.
type Hasher struct {
	cost int
}

func NewHasher() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// Hash produces a salted digest of the plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the digest. The comparison is
// constant-time; a malformed digest yields false, never an error.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
