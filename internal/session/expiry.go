package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

var ErrNoExpiry = errors.New("token has no expiry claim")

var tokenSigAlgs = []jose.SignatureAlgorithm{
	jose.HS256, jose.HS384, jose.HS512,
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.PS256, jose.EdDSA,
}

type TokenExpiry struct {
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is expired at now.
func (e TokenExpiry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// ParseTokenExpiry reads the iat and exp claims of a JWT without verifying it.
// The server remains the only authority on whether the token is valid.
func ParseTokenExpiry(raw string) (TokenExpiry, error) {
	tok, err := jwt.ParseSigned(raw, tokenSigAlgs)
	if err != nil {
		return TokenExpiry{}, fmt.Errorf("parsing token: %w", err)
	}

	var claims jwt.Claims
	if err := tok.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return TokenExpiry{}, fmt.Errorf("reading token claims: %w", err)
	}

	if claims.Expiry == nil {
		return TokenExpiry{}, ErrNoExpiry
	}

	expiry := TokenExpiry{ExpiresAt: claims.Expiry.Time()}
	if claims.IssuedAt != nil {
		expiry.IssuedAt = claims.IssuedAt.Time()
	}

	return expiry, nil
}
