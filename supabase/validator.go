package supabase

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidAudience is returned when the token audience is invalid
	ErrInvalidAudience = errors.New("invalid audience")
)

// DefaultAudience is the audience Supabase stamps on access tokens
const DefaultAudience = "authenticated"

// Validator verifies bearer tokens against the key set served by the
// configured JWKS endpoint. The key cache is shared by reference so the
// composition root can invalidate it independently of the validator.
type Validator struct {
	keys           *KeyCache
	audience       string
	verifyAudience bool
}

// ValidatorConfig holds configuration for Validator
type ValidatorConfig struct {
	Audience       string
	VerifyAudience bool
}

// NewValidator creates a token validator backed by the given key cache
func NewValidator(keys *KeyCache, config ValidatorConfig) *Validator {
	if config.Audience == "" {
		config.Audience = DefaultAudience
	}

	return &Validator{
		keys:           keys,
		audience:       config.Audience,
		verifyAudience: config.VerifyAudience,
	}
}

// ValidateToken verifies the token's signature and standard claims and
// returns its identity. Expiration is always enforced; the audience check
// follows the VerifyAudience setting. A failure to obtain key material
// surfaces as ErrKeysUnavailable, every other failure as an invalid token.
func (v *Validator) ValidateToken(ctx context.Context, tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, errors.New("kid header not found")
		}

		publicKey, err := v.keys.PublicKey(ctx, kid)
		if err != nil {
			return nil, err
		}

		return publicKey, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		switch {
		case errors.Is(err, ErrKeysUnavailable):
			return nil, err
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if v.verifyAudience && !containsAudience(claims.Audience, v.audience) {
		return nil, ErrInvalidAudience
	}

	return claims.Identity(), nil
}

// containsAudience checks if the audience list contains the expected value
func containsAudience(audiences jwt.ClaimStrings, expected string) bool {
	for _, aud := range audiences {
		if aud == expected {
			return true
		}
	}
	return false
}
