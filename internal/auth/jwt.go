package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "nesthost"

// Claims holds the session token payload.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	TenantID string `json:"tid"`
	Email    string `json:"email"`
}

// ErrInvalidToken is returned when a token is malformed, tampered with,
// signed with another key, or expired.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// IssueToken creates a signed HS256 session token valid for ttl.
func IssueToken(secret string, userID, tenantID uuid.UUID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    tokenIssuer,
		},
		UserID:   userID.String(),
		TenantID: tenantID.String(),
		Email:    email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth.IssueToken: %w", err)
	}

	return signed, nil
}

// ValidateToken verifies signature, algorithm, issuer and expiry of a token
// and returns its claims.
func ValidateToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("auth.ValidateToken: %w", ErrInvalidToken)
	}

	if !token.Valid {
		return nil, fmt.Errorf("auth.ValidateToken: %w", ErrInvalidToken)
	}

	return claims, nil
}

// Identity returns the parsed user and tenant ids carried by the claims.
func (c *Claims) Identity() (userID, tenantID uuid.UUID, err error) {
	userID, err = uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("auth.Claims.Identity: user id: %w", ErrInvalidToken)
	}

	tenantID, err = uuid.Parse(c.TenantID)
	if err != nil || tenantID == uuid.Nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("auth.Claims.Identity: tenant id: %w", ErrInvalidToken)
	}

	return userID, tenantID, nil
}
