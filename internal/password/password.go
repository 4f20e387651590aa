// Package password hashes and verifies user credentials with bcrypt.
package password

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/errors"
)

// DefaultCost keeps a single hash around 100-200ms on commodity hardware,
// bounding both brute force and login-endpoint cost.
const DefaultCost = 12

// Hasher wraps bcrypt with a configured work factor.
type Hasher struct {
	cost int
}

// NewHasher constructs a hasher; costs outside bcrypt's range fall back to
// DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", errors.Internal("failed to hash password", err)
	}
	return string(hashed), nil
}

// Compare reports whether plaintext matches hash. bcrypt's comparison does
// not leak the position of a mismatch.
func (h *Hasher) Compare(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
