package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	authport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/auth"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/golang-jwt/jwt/v5"
)

// userClaims is the JWT payload
type userClaims struct {
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues HS256 tokens for authenticated users
type TokenManager struct {
	secret       []byte
	issuer       string
	ttl          time.Duration
	timeProvider coreport.TimeProvider
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime
func NewTokenManager(secret, issuer string, ttl time.Duration, timeProvider coreport.TimeProvider) *TokenManager {
	return &TokenManager{
		secret:       []byte(secret),
		issuer:       issuer,
		ttl:          ttl,
		timeProvider: timeProvider,
	}
}

var _ authport.TokenIssuer = (*TokenManager)(nil)

// Issue signs a token carrying the user's id and role
func (t *TokenManager) Issue(user *entity.User) (string, time.Time, error) {
	now := t.timeProvider.Now()
	expiresAt := now.Add(t.ttl)

	claims := userClaims{
		Role:     string(user.Role),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   strconv.FormatUint(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies signature, issuer and expiry
func (t *TokenManager) Parse(token string) (*authport.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &userClaims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected token signing method")
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.timeProvider.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnauthorized, err.Error())
	}

	claims, ok := parsed.Claims.(*userClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", errs.ErrUnauthorized)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, fmt.Errorf("%w: invalid subject", errs.ErrUnauthorized)
	}
	role, err := entity.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid role", errs.ErrUnauthorized)
	}

	return &authport.Claims{
		UserID:    userID,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
