package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lumapix/photos-api/models"
	"github.com/lumapix/photos-api/repositories"
	"go.uber.org/zap"
)

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s", repositories.ErrDuplicate, user.ID)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug("user created", zap.String("id", user.ID), zap.String("email", user.Email))
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	user := &models.User{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: user %s", repositories.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetOrCreate retrieves the user with the given ID, inserting the row first
// when it does not exist. The insert uses ON CONFLICT DO NOTHING so concurrent
// callers for the same ID race safely; the re-read returns whichever row
// survived.
func (r *UserRepository) GetOrCreate(ctx context.Context, id, email string) (*models.User, error) {
	user, err := r.GetByID(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	query := `
		INSERT INTO users (id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	fresh := models.NewUser(id, email)
	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query,
		fresh.ID,
		fresh.Email,
		fresh.CreatedAt,
		fresh.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: user %s", repositories.ErrDuplicate, id)
		}
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	r.logger.Debug("user provisioned", zap.String("id", id), zap.String("email", email))
	return r.GetByID(ctx, id)
}

// WithTx returns a new repository instance bound to the transaction
func (r *UserRepository) WithTx(tx repositories.Transaction) repositories.UserRepository {
	return &UserRepository{
		db:     r.db,
		logger: r.logger,
	}
}
