package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the custom claims carried by externally-issued session tokens.
// The subject username is the only identity the service trusts; it is never
// taken from request payloads.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Validator verifies session credentials. Token issuance belongs to the
// external auth service; this side only checks signature, expiry and the
// revocation blacklist.
type Validator struct {
	secret    []byte
	blacklist Blacklist
}

// NewValidator constructs a Validator. blacklist may be nil when session
// revocation is not configured.
func NewValidator(secret string, blacklist Blacklist) *Validator {
	return &Validator{secret: []byte(secret), blacklist: blacklist}
}

// ValidateToken returns the authenticated username for a session token.
func (v *Validator) ValidateToken(ctx context.Context, tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid || claims.Username == "" {
		return "", ErrInvalidToken
	}

	if v.blacklist != nil && claims.ID != "" {
		revoked, err := v.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return "", fmt.Errorf("blacklist check: %w", err)
		}
		if revoked {
			return "", ErrInvalidToken
		}
	}

	return claims.Username, nil
}
