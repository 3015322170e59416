package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes short-lived access tokens from long-lived
// refresh tokens.
type TokenType string

const (
	// TokenTypeAccess tokens carry the role and authorize API operations.
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh tokens may only be exchanged for new access tokens.
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the JWT claim set carried by issued tokens. A token is valid
// only while its signature verifies and the current time is before exp;
// there is no server-side revocation.
type Claims struct {
	jwt.RegisteredClaims
	Role      Role      `json:"role,omitempty"`
	TokenType TokenType `json:"type"`
}

// IssueToken signs a token of the given type for the subject. Access tokens
// carry the role claim; refresh tokens carry only the subject.
func IssueToken(subject string, role Role, tokenType TokenType, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
		TokenType: tokenType,
	}
	if tokenType == TokenTypeAccess {
		claims.Role = role
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry of a token string and checks
// that it is of the expected type. Any failure maps to ErrUnauthorized; the
// caller decides whether to surface detail.
func ParseToken(tokenString string, expectedType TokenType, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	if claims.TokenType != expectedType {
		return nil, ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
