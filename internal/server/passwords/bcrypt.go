// Package passwords hashes and verifies account passwords with bcrypt.
package passwords

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/usuarios/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned by Compare when the password does not match the hash.
var ErrMismatch = errors.New("password does not match")

// ErrTooLong is returned by Hash for passwords over bcrypt's 72-byte limit.
// It matches common.ErrorValidation.
var ErrTooLong = fmt.Errorf("%w: password too long", common.ErrorValidation)

// Hasher hashes passwords at a fixed bcrypt cost.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher for cost, clamped to bcrypt's accepted range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of password. Empty or over-long passwords are
// rejected with common.ErrorValidation.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: empty password", common.ErrorValidation)
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrTooLong
		}
		return "", err
	}
	return string(b), nil
}

// Compare checks password against hash. A wrong password yields ErrMismatch;
// any other error means the stored hash is unusable.
func (h *Hasher) Compare(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return err
	}
	return nil
}
