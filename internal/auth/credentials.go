// Package auth owns the credential policy: bcrypt secret hashing behind
// an opaque hash type, and signed session tokens.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// ErrEmptySecret is returned when an empty secret is hashed.
var ErrEmptySecret = errors.New("secret cannot be empty")

// SecretHash is an opaque, already-hashed secret. The distinct type is
// the double-hash guard: only Manager.Hash produces one from plaintext,
// so callers can never feed a hash back through hashing by accident and
// nothing ever inspects the hash contents.
type SecretHash string

// StoredHash rehydrates a SecretHash read back from persistence.
func StoredHash(s string) SecretHash { return SecretHash(s) }

// String exposes the stored representation for persistence.
func (h SecretHash) String() string { return string(h) }

// Manager hashes and verifies secrets with bcrypt.
type Manager struct {
	cost int
}

// NewManager returns a Manager with the default bcrypt cost.
func NewManager() *Manager {
	return &Manager{cost: bcrypt.DefaultCost}
}

// Hash derives a SecretHash from a plaintext secret.
func (m *Manager) Hash(plain string) (SecretHash, error) {
	if plain == "" {
		return "", ErrEmptySecret
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), m.cost)
	if err != nil {
		return "", err
	}
	return SecretHash(b), nil
}

// Verify reports whether plain matches the stored hash.
func (m *Manager) Verify(plain string, hash SecretHash) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
