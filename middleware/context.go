package middleware

import (
	"context"

	"github.com/lumapix/photos-api/models"
	"github.com/lumapix/photos-api/supabase"
)

// Context key type to avoid collisions
type contextKey string

const (
	// IdentityKey is the context key for the validated token identity
	IdentityKey contextKey = "identity"

	// UserKey is the context key for the resolved user
	UserKey contextKey = "user"
)

// GetIdentityFromContext retrieves the validated token identity from context
func GetIdentityFromContext(ctx context.Context) *supabase.Identity {
	if val := ctx.Value(IdentityKey); val != nil {
		if identity, ok := val.(*supabase.Identity); ok {
			return identity
		}
	}
	return nil
}

// WithIdentity adds a validated token identity to the context
func WithIdentity(ctx context.Context, identity *supabase.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// GetUserFromContext retrieves the resolved user from context
func GetUserFromContext(ctx context.Context) *models.User {
	if val := ctx.Value(UserKey); val != nil {
		if user, ok := val.(*models.User); ok {
			return user
		}
	}
	return nil
}

// WithUser adds a resolved user to the context
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}
