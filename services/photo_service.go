package services

import (
	"context"
	"errors"
	"time"

	"github.com/lumapix/photos-api/models"
	"github.com/lumapix/photos-api/repositories"
	"go.uber.org/zap"
)

const (
	// DefaultPageLimit is the page size used when the client does not ask for one
	DefaultPageLimit = 20

	// MaxPageLimit caps the page size a client may request
	MaxPageLimit = 100
)

// PhotoAttrs carries the client-settable photo fields for create and full update
type PhotoAttrs struct {
	PexelsID        int64
	Width           int
	Height          int
	URL             string
	Photographer    string
	PhotographerURL string
	PhotographerID  int64
	AvgColor        string
	SrcOriginal     string
	SrcLarge2x      string
	SrcLarge        string
	SrcMedium       string
	SrcSmall        string
	SrcPortrait     string
	SrcLandscape    string
	SrcTiny         string
	Alt             *string
}

func (a *PhotoAttrs) apply(photo *models.Photo) {
	photo.PexelsID = a.PexelsID
	photo.Width = a.Width
	photo.Height = a.Height
	photo.URL = a.URL
	photo.Photographer = a.Photographer
	photo.PhotographerURL = a.PhotographerURL
	photo.PhotographerID = a.PhotographerID
	photo.AvgColor = a.AvgColor
	photo.SrcOriginal = a.SrcOriginal
	photo.SrcLarge2x = a.SrcLarge2x
	photo.SrcLarge = a.SrcLarge
	photo.SrcMedium = a.SrcMedium
	photo.SrcSmall = a.SrcSmall
	photo.SrcPortrait = a.SrcPortrait
	photo.SrcLandscape = a.SrcLandscape
	photo.SrcTiny = a.SrcTiny
	photo.Alt = a.Alt
}

// PhotoPatch carries the subset of fields a partial update may change.
// Nil fields are left untouched.
type PhotoPatch struct {
	Width  *int
	Height *int
	Alt    *string
}

// PhotoService handles photo CRUD with per-owner write authorization
type PhotoService struct {
	photoRepo repositories.PhotoRepository
	txManager repositories.TransactionManager
	logger    *zap.Logger
}

// NewPhotoService creates a new PhotoService instance
func NewPhotoService(photoRepo repositories.PhotoRepository, txManager repositories.TransactionManager, logger *zap.Logger) *PhotoService {
	return &PhotoService{
		photoRepo: photoRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// List returns one page of photos plus the total match count.
// Page and limit are clamped to sane bounds.
func (s *PhotoService) List(ctx context.Context, filter repositories.PhotoFilter, page, limit int) ([]*models.Photo, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	offset := (page - 1) * limit

	total, err := s.photoRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, WrapInternal("failed to count photos", err)
	}

	photos, err := s.photoRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, WrapInternal("failed to list photos", err)
	}
	if photos == nil {
		photos = []*models.Photo{}
	}

	return photos, total, nil
}

// Get retrieves a single photo by ID
func (s *PhotoService) Get(ctx context.Context, id int64) (*models.Photo, error) {
	photo, err := s.photoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, WrapInternal("failed to get photo", err)
	}

	return photo, nil
}

// Create stores a new photo owned by the calling user
func (s *PhotoService) Create(ctx context.Context, attrs PhotoAttrs, ownerID string) (*models.Photo, error) {
	now := time.Now().UTC()
	photo := &models.Photo{
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	attrs.apply(photo)

	if err := s.photoRepo.Create(ctx, photo); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicatePexelsID
		}
		return nil, WrapInternal("failed to create photo", err)
	}

	s.logger.Info("photo created",
		zap.Int64("id", photo.ID),
		zap.Int64("pexels_id", photo.PexelsID),
		zap.String("user_id", ownerID))

	return photo, nil
}

// Update replaces all client-settable fields of a photo. Only the owner may
// update; the ownership check and the write happen in one transaction.
func (s *PhotoService) Update(ctx context.Context, id int64, attrs PhotoAttrs, callerID string) (*models.Photo, error) {
	return WithTransactionResult(ctx, s.txManager, func(txCtx context.Context, tx repositories.Transaction) (*models.Photo, error) {
		photo, err := s.getOwned(txCtx, id, callerID, ErrCannotUpdateOthersPhoto)
		if err != nil {
			return nil, err
		}

		attrs.apply(photo)
		photo.UpdatedAt = time.Now().UTC()

		if err := s.photoRepo.Update(txCtx, photo); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return nil, ErrDuplicatePexelsID
			}
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrPhotoNotFound
			}
			return nil, WrapInternal("failed to update photo", err)
		}

		return photo, nil
	})
}

// Patch updates only the provided fields of a photo. Only the owner may patch.
func (s *PhotoService) Patch(ctx context.Context, id int64, patch PhotoPatch, callerID string) (*models.Photo, error) {
	return WithTransactionResult(ctx, s.txManager, func(txCtx context.Context, tx repositories.Transaction) (*models.Photo, error) {
		photo, err := s.getOwned(txCtx, id, callerID, ErrCannotUpdateOthersPhoto)
		if err != nil {
			return nil, err
		}

		if patch.Width != nil {
			photo.Width = *patch.Width
		}
		if patch.Height != nil {
			photo.Height = *patch.Height
		}
		if patch.Alt != nil {
			photo.Alt = patch.Alt
		}
		photo.UpdatedAt = time.Now().UTC()

		if err := s.photoRepo.Update(txCtx, photo); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrPhotoNotFound
			}
			return nil, WrapInternal("failed to update photo", err)
		}

		return photo, nil
	})
}

// Delete removes a photo. Only the owner may delete.
func (s *PhotoService) Delete(ctx context.Context, id int64, callerID string) error {
	return WithTransaction(ctx, s.txManager, func(txCtx context.Context, tx repositories.Transaction) error {
		if _, err := s.getOwned(txCtx, id, callerID, ErrCannotDeleteOthersPhoto); err != nil {
			return err
		}

		if err := s.photoRepo.Delete(txCtx, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrPhotoNotFound
			}
			return WrapInternal("failed to delete photo", err)
		}

		s.logger.Info("photo deleted",
			zap.Int64("id", id),
			zap.String("user_id", callerID))

		return nil
	})
}

// getOwned loads a photo and enforces that callerID owns it.
// Missing photos map to not found before ownership is considered.
func (s *PhotoService) getOwned(ctx context.Context, id int64, callerID string, deniedErr error) (*models.Photo, error) {
	photo, err := s.photoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, WrapInternal("failed to get photo", err)
	}

	if !photo.OwnedBy(callerID) {
		return nil, deniedErr
	}

	return photo, nil
}
