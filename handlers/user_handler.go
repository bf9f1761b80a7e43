package handlers

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/lumapix/photos-api/middleware"
	"github.com/lumapix/photos-api/models"
	"github.com/lumapix/photos-api/utils"
	"go.uber.org/zap"
)

// UserResponse represents the authenticated user in API responses
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(logger *zap.Logger) *UserHandler {
	return &UserHandler{
		logger: logger,
	}
}

// HandleCurrentUser handles GET /api/v1/users/me. The user was resolved by
// the auth middleware; this only reads it back out of the context.
func (h *UserHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		h.logger.Error("missing user in context",
			zap.String("request_id", chimiddleware.GetReqID(ctx)))
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, userToResponse(user))
}

// userToResponse converts a User model to a UserResponse
func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: u.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
