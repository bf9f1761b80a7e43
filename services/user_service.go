package services

import (
	"context"
	"errors"

	"github.com/lumapix/photos-api/models"
	"github.com/lumapix/photos-api/repositories"
	"github.com/lumapix/photos-api/supabase"
	"go.uber.org/zap"
)

// UserService resolves validated token identities to local user records
type UserService struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService instance
func NewUserService(userRepo repositories.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Resolve maps a validated token identity to its local user record, creating
// the record on first use. Tokens without a subject are rejected. When the
// token carries no email, a placeholder derived from the subject is stored.
func (s *UserService) Resolve(ctx context.Context, identity *supabase.Identity) (*models.User, error) {
	if identity == nil || identity.Subject == "" {
		return nil, ErrMissingSubject
	}

	user, err := s.userRepo.GetOrCreate(ctx, identity.Subject, identity.EmailOrPlaceholder())
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, WrapError(ErrorTypeConflict, "user email already in use", err)
		}
		return nil, WrapInternal("failed to resolve user", err)
	}

	s.logger.Debug("resolved user",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email))

	return user, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal("failed to get user", err)
	}

	return user, nil
}
