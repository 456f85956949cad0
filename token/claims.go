package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what can be read from a JWT-shaped token without verifying it.
// It is for display only; the client never uses it to decide whether a
// token is usable.
type Claims struct {
	Subject   string
	Type      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token claims to have expired at now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Describe peeks at the claims of a token without checking its signature.
// Opaque (non-JWT) tokens return an error.
func Describe(raw string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Claims{}, fmt.Errorf("token is not a readable JWT: %w", err)
	}

	var c Claims
	if sub, err := claims.GetSubject(); err == nil {
		c.Subject = sub
	}
	if sub, ok := claims["sub"].(float64); ok && c.Subject == "" {
		c.Subject = fmt.Sprintf("%.0f", sub)
	}
	if typ, ok := claims["type"].(string); ok {
		c.Type = typ
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
