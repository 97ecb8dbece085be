package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the client can read out of its own access token. The
// claims are decoded without signature verification: the server is the only
// authority on token validity, the client only uses this for display and for
// warning about an expired session before a doomed request.
type TokenInfo struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the token's expiry, if present, has passed.
func (t *TokenInfo) Expired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// InspectToken decodes the claims of an access token without verifying it.
func InspectToken(tokenStr string) (*TokenInfo, error) {
	parser := jwt.NewParser()

	var claims tokenClaims
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse jwt: %w", err)
	}

	info := &TokenInfo{
		Subject: claims.Subject,
		Email:   claims.Email,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
