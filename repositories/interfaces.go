package repositories

import (
	"context"
	"errors"

	"github.com/lumapix/photos-api/models"
)

// Sentinel errors returned by repository implementations.
// The service layer maps these onto the domain error taxonomy.
var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint was violated
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// transactionContextKey is the context key for storing transactions
type transactionContextKey struct{}

// ContextWithTransaction returns a context carrying the transaction.
// Repository calls made with the returned context run on the transaction.
func ContextWithTransaction(ctx context.Context, tx Transaction) context.Context {
	return context.WithValue(ctx, transactionContextKey{}, tx)
}

// TransactionFromContext retrieves a transaction from the context if present
func TransactionFromContext(ctx context.Context) (Transaction, bool) {
	tx, ok := ctx.Value(transactionContextKey{}).(Transaction)
	return tx, ok
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetOrCreate retrieves the user with the given ID, inserting the row
	// first when it does not exist. Concurrent callers for the same ID all
	// observe the single row that won the insert.
	GetOrCreate(ctx context.Context, id, email string) (*models.User, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) UserRepository
}

// PhotoFilter narrows photo listings. Nil fields are ignored.
type PhotoFilter struct {
	PhotographerID *int64
}

// PhotoRepository handles photo data operations
type PhotoRepository interface {
	// Create inserts a new photo and populates its generated ID
	Create(ctx context.Context, photo *models.Photo) error

	// GetByID retrieves a photo by ID
	GetByID(ctx context.Context, id int64) (*models.Photo, error)

	// GetByPexelsID retrieves a photo by its Pexels ID
	GetByPexelsID(ctx context.Context, pexelsID int64) (*models.Photo, error)

	// List retrieves photos matching the filter, newest first, with pagination
	List(ctx context.Context, filter PhotoFilter, limit, offset int) ([]*models.Photo, error)

	// Count returns the total number of photos matching the filter
	Count(ctx context.Context, filter PhotoFilter) (int64, error)

	// Update updates all mutable fields of a photo
	Update(ctx context.Context, photo *models.Photo) error

	// Delete deletes a photo
	Delete(ctx context.Context, id int64) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) PhotoRepository
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users  UserRepository
	Photos PhotoRepository
}
