package auth

import (
	"errors"
	"fmt"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	authport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/auth"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes passwords with bcrypt
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher; costs outside bcrypt's range fall back to the default
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

var _ authport.PasswordHasher = (*BcryptHasher)(nil)

// Hash returns a salted bcrypt hash
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errs.ErrInvalidRequest, err.Error())
	}
	return string(hash), nil
}

// Compare reports ErrInvalidCredentials on mismatch
func (h *BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrHashTooShort) {
		return errs.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrInvalidCredentials, err.Error())
	}
	return nil
}
