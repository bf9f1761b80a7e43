package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/lumapix/photos-api/models"
	"github.com/lumapix/photos-api/services"
	"github.com/lumapix/photos-api/supabase"
	"github.com/lumapix/photos-api/utils"
	"go.uber.org/zap"
)

// TokenValidator defines the interface for validating bearer tokens
type TokenValidator interface {
	// ValidateToken validates a bearer token and returns the identity it carries
	ValidateToken(ctx context.Context, token string) (*supabase.Identity, error)
}

// UserResolver defines the interface for resolving a validated identity to a
// persisted user, creating one on first authentication
type UserResolver interface {
	// Resolve returns the user for the given identity
	Resolve(ctx context.Context, identity *supabase.Identity) (*models.User, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	validator TokenValidator
	resolver  UserResolver
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, resolver UserResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		resolver:  resolver,
		logger:    logger,
	}
}

// RequireAuth is a middleware that requires a valid bearer token. It validates
// the token, resolves the caller to a persisted user, and stores both the
// identity and the user in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := chimiddleware.GetReqID(ctx)

		// Extract token from the Authorization header ("Bearer TOKEN")
		token := extractBearerToken(r)
		if token == "" {
			m.logger.Warn("missing bearer token",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		// Validate token. Unavailable key material maps to a 500, not a 401.
		identity, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			if errors.Is(err, supabase.ErrKeysUnavailable) {
				m.logger.Error("key material unavailable",
					zap.String("request_id", requestID),
					zap.Error(err))
				_ = utils.WriteInternalServerError(w, "Unable to verify credentials")
				return
			}
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		// Resolve the caller, provisioning a user row on first authentication
		user, err := m.resolver.Resolve(ctx, identity)
		if err != nil {
			if services.IsUnauthorizedError(err) {
				m.logger.Warn("identity resolution rejected",
					zap.String("request_id", requestID),
					zap.Error(err))
				_ = utils.WriteUnauthorized(w, services.GetErrorMessage(err))
				return
			}
			m.logger.Error("identity resolution failed",
				zap.String("request_id", requestID),
				zap.String("sub", identity.Subject),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w, "Failed to resolve user")
			return
		}

		// Add identity and user to context
		ctx = WithIdentity(ctx, identity)
		ctx = WithUser(ctx, user)

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("sub", identity.Subject),
			zap.String("user_id", user.ID))

		// Call next handler
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	// Check if it starts with "Bearer "
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
