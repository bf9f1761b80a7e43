package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/lumapix/photos-api/models"
	"github.com/lumapix/photos-api/repositories"
	"go.uber.org/zap"
)

// PhotoRepository implements the repositories.PhotoRepository interface
type PhotoRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *DB, logger *zap.Logger) repositories.PhotoRepository {
	return &PhotoRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new photo and populates its generated ID
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (
			pexels_id, width, height, url, photographer, photographer_url,
			photographer_id, avg_color, src_original, src_large2x, src_large,
			src_medium, src_small, src_portrait, src_landscape, src_tiny,
			alt, user_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
		RETURNING id
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		photo.PexelsID,
		photo.Width,
		photo.Height,
		photo.URL,
		photo.Photographer,
		photo.PhotographerURL,
		photo.PhotographerID,
		photo.AvgColor,
		photo.SrcOriginal,
		photo.SrcLarge2x,
		photo.SrcLarge,
		photo.SrcMedium,
		photo.SrcSmall,
		photo.SrcPortrait,
		photo.SrcLandscape,
		photo.SrcTiny,
		photo.Alt,
		photo.UserID,
		photo.CreatedAt,
		photo.UpdatedAt,
	).Scan(&photo.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: pexels_id %d", repositories.ErrDuplicate, photo.PexelsID)
		}
		return fmt.Errorf("failed to create photo: %w", err)
	}

	r.logger.Debug("photo created",
		zap.Int64("id", photo.ID),
		zap.Int64("pexels_id", photo.PexelsID),
		zap.String("user_id", photo.UserID))
	return nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id int64) (*models.Photo, error) {
	query := `
		SELECT id, pexels_id, width, height, url, photographer, photographer_url,
		       photographer_id, avg_color, src_original, src_large2x, src_large,
		       src_medium, src_small, src_portrait, src_landscape, src_tiny,
		       alt, user_id, created_at, updated_at
		FROM photos
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	photo := &models.Photo{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&photo.ID,
		&photo.PexelsID,
		&photo.Width,
		&photo.Height,
		&photo.URL,
		&photo.Photographer,
		&photo.PhotographerURL,
		&photo.PhotographerID,
		&photo.AvgColor,
		&photo.SrcOriginal,
		&photo.SrcLarge2x,
		&photo.SrcLarge,
		&photo.SrcMedium,
		&photo.SrcSmall,
		&photo.SrcPortrait,
		&photo.SrcLandscape,
		&photo.SrcTiny,
		&photo.Alt,
		&photo.UserID,
		&photo.CreatedAt,
		&photo.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: photo %d", repositories.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	return photo, nil
}

// GetByPexelsID retrieves a photo by its Pexels ID
func (r *PhotoRepository) GetByPexelsID(ctx context.Context, pexelsID int64) (*models.Photo, error) {
	query := `
		SELECT id, pexels_id, width, height, url, photographer, photographer_url,
		       photographer_id, avg_color, src_original, src_large2x, src_large,
		       src_medium, src_small, src_portrait, src_landscape, src_tiny,
		       alt, user_id, created_at, updated_at
		FROM photos
		WHERE pexels_id = $1
	`

	executor := GetExecutor(ctx, r.db)
	photo := &models.Photo{}

	err := executor.QueryRowContext(ctx, query, pexelsID).Scan(
		&photo.ID,
		&photo.PexelsID,
		&photo.Width,
		&photo.Height,
		&photo.URL,
		&photo.Photographer,
		&photo.PhotographerURL,
		&photo.PhotographerID,
		&photo.AvgColor,
		&photo.SrcOriginal,
		&photo.SrcLarge2x,
		&photo.SrcLarge,
		&photo.SrcMedium,
		&photo.SrcSmall,
		&photo.SrcPortrait,
		&photo.SrcLandscape,
		&photo.SrcTiny,
		&photo.Alt,
		&photo.UserID,
		&photo.CreatedAt,
		&photo.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: pexels_id %d", repositories.ErrNotFound, pexelsID)
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	return photo, nil
}

// List retrieves photos matching the filter, newest first, with pagination
func (r *PhotoRepository) List(ctx context.Context, filter repositories.PhotoFilter, limit, offset int) ([]*models.Photo, error) {
	query := `
		SELECT id, pexels_id, width, height, url, photographer, photographer_url,
		       photographer_id, avg_color, src_original, src_large2x, src_large,
		       src_medium, src_small, src_portrait, src_landscape, src_tiny,
		       alt, user_id, created_at, updated_at
		FROM photos
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	args := []interface{}{limit, offset}

	if filter.PhotographerID != nil {
		query = `
			SELECT id, pexels_id, width, height, url, photographer, photographer_url,
			       photographer_id, avg_color, src_original, src_large2x, src_large,
			       src_medium, src_small, src_portrait, src_landscape, src_tiny,
			       alt, user_id, created_at, updated_at
			FROM photos
			WHERE photographer_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2 OFFSET $3
		`
		args = []interface{}{*filter.PhotographerID, limit, offset}
	}

	return r.queryPhotos(ctx, query, args...)
}

// Count returns the total number of photos matching the filter
func (r *PhotoRepository) Count(ctx context.Context, filter repositories.PhotoFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM photos`
	args := []interface{}{}

	if filter.PhotographerID != nil {
		query = `SELECT COUNT(*) FROM photos WHERE photographer_id = $1`
		args = []interface{}{*filter.PhotographerID}
	}

	executor := GetExecutor(ctx, r.db)
	var total int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}

	return total, nil
}

// Update updates all mutable fields of a photo
func (r *PhotoRepository) Update(ctx context.Context, photo *models.Photo) error {
	query := `
		UPDATE photos
		SET pexels_id = $2,
		    width = $3,
		    height = $4,
		    url = $5,
		    photographer = $6,
		    photographer_url = $7,
		    photographer_id = $8,
		    avg_color = $9,
		    src_original = $10,
		    src_large2x = $11,
		    src_large = $12,
		    src_medium = $13,
		    src_small = $14,
		    src_portrait = $15,
		    src_landscape = $16,
		    src_tiny = $17,
		    alt = $18,
		    updated_at = $19
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		photo.ID,
		photo.PexelsID,
		photo.Width,
		photo.Height,
		photo.URL,
		photo.Photographer,
		photo.PhotographerURL,
		photo.PhotographerID,
		photo.AvgColor,
		photo.SrcOriginal,
		photo.SrcLarge2x,
		photo.SrcLarge,
		photo.SrcMedium,
		photo.SrcSmall,
		photo.SrcPortrait,
		photo.SrcLandscape,
		photo.SrcTiny,
		photo.Alt,
		photo.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: pexels_id %d", repositories.ErrDuplicate, photo.PexelsID)
		}
		return fmt.Errorf("failed to update photo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: photo %d", repositories.ErrNotFound, photo.ID)
	}

	r.logger.Debug("photo updated", zap.Int64("id", photo.ID))
	return nil
}

// Delete deletes a photo
func (r *PhotoRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM photos WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: photo %d", repositories.ErrNotFound, id)
	}

	r.logger.Debug("photo deleted", zap.Int64("id", id))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *PhotoRepository) WithTx(tx repositories.Transaction) repositories.PhotoRepository {
	return &PhotoRepository{
		db:     r.db,
		logger: r.logger,
	}
}

// queryPhotos is a helper method to query multiple photos
func (r *PhotoRepository) queryPhotos(ctx context.Context, query string, args ...interface{}) ([]*models.Photo, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo := &models.Photo{}
		err := rows.Scan(
			&photo.ID,
			&photo.PexelsID,
			&photo.Width,
			&photo.Height,
			&photo.URL,
			&photo.Photographer,
			&photo.PhotographerURL,
			&photo.PhotographerID,
			&photo.AvgColor,
			&photo.SrcOriginal,
			&photo.SrcLarge2x,
			&photo.SrcLarge,
			&photo.SrcMedium,
			&photo.SrcSmall,
			&photo.SrcPortrait,
			&photo.SrcLandscape,
			&photo.SrcTiny,
			&photo.Alt,
			&photo.UserID,
			&photo.CreatedAt,
			&photo.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photo rows: %w", err)
	}

	return photos, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (error code 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
