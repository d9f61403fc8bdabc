// Package auth provides JWT token generation/validation, the HTTP
// authentication middleware, and bcrypt password hashing.
//
// TOKEN MODEL:
// Two independent TokenServices are wired at startup — one for short-lived
// access tokens (15 min, sent as an Authorization: Bearer header) and one
// for long-lived refresh tokens (7 days, kept in an HttpOnly cookie).
// Separate secrets mean a leaked access secret can't mint refresh tokens.
//
// JWTs are stateless: the signed payload carries the user id and expiry, so
// validation needs no DB lookup, just the secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "microblog"

// TokenService signs and verifies JWTs with an HMAC secret and a fixed
// lifetime. Build one per token class (access, refresh).
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService.
// The secret should be at least 32 bytes of random data in production
// (e.g. `openssl rand -hex 32`); anything under 16 characters is rejected.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token lifetime must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload. The standard "sub" (Subject) claim carries the
// internal user id.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a token for the given userID, expiring after
// the service's configured lifetime.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.generate(userID, s.ttl)
}

// GenerateWithDuration creates a token with a custom expiry.
// Used by tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	return s.generate(userID, d)
}

func (s *TokenService) generate(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string, returning the userID from the
// "sub" claim.
//
// Beyond the signature, the library checks expiry and issuer for us, and
// WithValidMethods pins HS256 so an attacker can't swap in "none" or an
// asymmetric algorithm (algorithm confusion attack).
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
