package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification:
// tampering, a malformed structure, a wrong signing key, or an unexpected
// signing method all collapse into this one failure so callers cannot
// distinguish them.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload carried by Taskforge identity tokens.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HMAC-signed identity tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given signing secret.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token signing secret cannot be empty")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Issue produces a signed token bound to the given user ID. The token
// carries no expiry claim; see the package doc for the rotation caveat.
func (s *TokenService) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user ID cannot be empty")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and returns the bound user ID.
// Fails closed: every failure mode returns ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
