package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"course-management-server/internal/models"
)

var (
	// ErrInvalidToken is returned when a token fails signature or structural
	// validation.
	ErrInvalidToken = errors.New("invalid access token")
	// ErrExpiredToken is returned when a structurally valid token is past its
	// expiry.
	ErrExpiredToken = errors.New("access token has expired")
)

// Claims represents the JWT claims carried by an access token.
type Claims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Signer issues and verifies short-lived HS256 access tokens. It is stateless;
// the secret is fixed at construction and never mutated. There is no
// revocation list for access tokens: a compromised access token stays valid
// until its natural expiry, bounded by the short TTL.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner creates a Signer with the given secret and access token lifetime.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Sign produces a signed access token binding the user's id, email and role.
func (s *Signer) Sign(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// Verify validates the token's signature and expiry and returns its claims.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
