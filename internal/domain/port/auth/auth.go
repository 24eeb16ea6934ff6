package auth

import (
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// Claims identify the caller behind a bearer token
type Claims struct {
	UserID    uint64
	Role      entity.Role
	ExpiresAt time.Time
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	// Hash returns a salted hash of password
	Hash(password string) (string, error)

	// Compare returns ErrInvalidCredentials when password does not match hash
	Compare(hash, password string) error
}

// TokenIssuer issues and verifies bearer tokens
type TokenIssuer interface {
	// Issue signs a token for the user
	Issue(user *entity.User) (token string, expiresAt time.Time, err error)

	// Parse verifies a token and returns its claims
	//
	// Possible errors:
	// - ErrUnauthorized: If the token is malformed, forged or expired
	Parse(token string) (*Claims, error)
}
