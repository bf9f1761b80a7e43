package supabase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the raw claims carried by a Supabase access token
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Identity is the validated, application-facing view of a token's claims.
// The subject may be empty; requiring it is the user resolver's job.
type Identity struct {
	Subject   string
	Email     string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity converts raw claims into an Identity record
func (c *Claims) Identity() *Identity {
	id := &Identity{
		Subject:  c.Subject,
		Email:    c.Email,
		Audience: c.Audience,
	}

	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}

	return id
}

// EmailOrPlaceholder returns the token's email claim, or a deterministic
// placeholder derived from the subject when the token carries none
func (i *Identity) EmailOrPlaceholder() string {
	if i.Email != "" {
		return i.Email
	}
	return fmt.Sprintf("user_%s@example.com", i.Subject)
}
