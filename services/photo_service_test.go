package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lumapix/photos-api/models"
	"github.com/lumapix/photos-api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPhotoRepository is a mock implementation of PhotoRepository
type MockPhotoRepository struct {
	mock.Mock
}

func (m *MockPhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	args := m.Called(ctx, photo)
	return args.Error(0)
}

func (m *MockPhotoRepository) GetByID(ctx context.Context, id int64) (*models.Photo, error) {
	args := m.Called(ctx, id)
	if photo := args.Get(0); photo != nil {
		return photo.(*models.Photo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPhotoRepository) GetByPexelsID(ctx context.Context, pexelsID int64) (*models.Photo, error) {
	args := m.Called(ctx, pexelsID)
	if photo := args.Get(0); photo != nil {
		return photo.(*models.Photo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPhotoRepository) List(ctx context.Context, filter repositories.PhotoFilter, limit, offset int) ([]*models.Photo, error) {
	args := m.Called(ctx, filter, limit, offset)
	if photos := args.Get(0); photos != nil {
		return photos.([]*models.Photo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPhotoRepository) Count(ctx context.Context, filter repositories.PhotoFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPhotoRepository) Update(ctx context.Context, photo *models.Photo) error {
	args := m.Called(ctx, photo)
	return args.Error(0)
}

func (m *MockPhotoRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPhotoRepository) WithTx(tx repositories.Transaction) repositories.PhotoRepository {
	args := m.Called(tx)
	return args.Get(0).(repositories.PhotoRepository)
}

func ownedPhoto(id, pexelsID int64, ownerID string) *models.Photo {
	alt := "A mountain lake at dawn"
	now := time.Now().UTC()
	return &models.Photo{
		ID:              id,
		PexelsID:        pexelsID,
		Width:           4000,
		Height:          3000,
		URL:             fmt.Sprintf("https://www.pexels.com/photo/%d/", pexelsID),
		Photographer:    "Jane Doe",
		PhotographerURL: "https://www.pexels.com/@janedoe",
		PhotographerID:  77,
		AvgColor:        "#AABBCC",
		SrcOriginal:     "https://images.pexels.com/photos/1/original.jpg",
		SrcLarge2x:      "https://images.pexels.com/photos/1/large2x.jpg",
		SrcLarge:        "https://images.pexels.com/photos/1/large.jpg",
		SrcMedium:       "https://images.pexels.com/photos/1/medium.jpg",
		SrcSmall:        "https://images.pexels.com/photos/1/small.jpg",
		SrcPortrait:     "https://images.pexels.com/photos/1/portrait.jpg",
		SrcLandscape:    "https://images.pexels.com/photos/1/landscape.jpg",
		SrcTiny:         "https://images.pexels.com/photos/1/tiny.jpg",
		Alt:             &alt,
		UserID:          ownerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func samplePhotoAttrs(pexelsID int64) PhotoAttrs {
	alt := "A mountain lake at dawn"
	return PhotoAttrs{
		PexelsID:        pexelsID,
		Width:           4000,
		Height:          3000,
		URL:             fmt.Sprintf("https://www.pexels.com/photo/%d/", pexelsID),
		Photographer:    "Jane Doe",
		PhotographerURL: "https://www.pexels.com/@janedoe",
		PhotographerID:  77,
		AvgColor:        "#AABBCC",
		SrcOriginal:     "https://images.pexels.com/photos/1/original.jpg",
		SrcLarge2x:      "https://images.pexels.com/photos/1/large2x.jpg",
		SrcLarge:        "https://images.pexels.com/photos/1/large.jpg",
		SrcMedium:       "https://images.pexels.com/photos/1/medium.jpg",
		SrcSmall:        "https://images.pexels.com/photos/1/small.jpg",
		SrcPortrait:     "https://images.pexels.com/photos/1/portrait.jpg",
		SrcLandscape:    "https://images.pexels.com/photos/1/landscape.jpg",
		SrcTiny:         "https://images.pexels.com/photos/1/tiny.jpg",
		Alt:             &alt,
	}
}

func TestPhotoService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("returns photos with total count", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		service := NewPhotoService(mockRepo, nil, zap.NewNop())

		photos := []*models.Photo{ownedPhoto(1, 9001, "user-123"), ownedPhoto(2, 9002, "user-456")}
		filter := repositories.PhotoFilter{}
		mockRepo.On("Count", ctx, filter).Return(int64(25), nil)
		mockRepo.On("List", ctx, filter, 20, 0).Return(photos, nil)

		got, total, err := service.List(ctx, filter, 1, 20)

		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, int64(25), total)
		mockRepo.AssertExpectations(t)
	})

	t.Run("applies defaults for unset paging", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		service := NewPhotoService(mockRepo, nil, zap.NewNop())

		filter := repositories.PhotoFilter{}
		mockRepo.On("Count", ctx, filter).Return(int64(0), nil)
		mockRepo.On("List", ctx, filter, DefaultPageLimit, 0).Return([]*models.Photo{}, nil)

		_, _, err := service.List(ctx, filter, 0, 0)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("caps limit at the maximum", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		service := NewPhotoService(mockRepo, nil, zap.NewNop())

		filter := repositories.PhotoFilter{}
		mockRepo.On("Count", ctx, filter).Return(int64(0), nil)
		mockRepo.On("List", ctx, filter, MaxPageLimit, 0).Return([]*models.Photo{}, nil)

		_, _, err := service.List(ctx, filter, 1, 500)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("computes offset from page", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		service := NewPhotoService(mockRepo, nil, zap.NewNop())

		filter := repositories.PhotoFilter{}
		mockRepo.On("Count", ctx, filter).Return(int64(25), nil)
		mockRepo.On("List", ctx, filter, 10, 20).Return([]*models.Photo{ownedPhoto(21, 9021, "user-123")}, nil)

		got, total, err := service.List(ctx, filter, 3, 10)

		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, int64(25), total)
		mockRepo.AssertExpectations(t)
	})

	t.Run("passes photographer filter through", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		service := NewPhotoService(mockRepo, nil, zap.NewNop())

		photographerID := int64(77)
		filter := repositories.PhotoFilter{PhotographerID: &photographerID}
		mockRepo.On("Count", ctx, filter).Return(int64(1), nil)
		mockRepo.On("List", ctx, filter, 20, 0).Return([]*models.Photo{ownedPhoto(1, 9001, "user-123")}, nil)

		got, total, err := service.List(ctx, filter, 1, 20)

		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, int64(1), total)
		mockRepo.AssertExpectations(t)
	})

	t.Run("returns empty slice when nothing matches", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		service := NewPhotoService(mockRepo, nil, zap.NewNop())

		filter := repositories.PhotoFilter{}
		mockRepo.On("Count", ctx, filter).Return(int64(0), nil)
		mockRepo.On("List", ctx, filter, 20, 0).Return(nil, nil)

		got, total, err := service.List(ctx, filter, 1, 20)

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
		assert.Equal(t, int64(0), total)
	})

	t.Run("wraps count failures as internal", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		service := NewPhotoService(mockRepo, nil, zap.NewNop())

		filter := repositories.PhotoFilter{}
		mockRepo.On("Count", ctx, filter).Return(int64(0), fmt.Errorf("connection refused"))

		_, _, err := service.List(ctx, filter, 1, 20)

		assert.True(t, IsInternalError(err))
		mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPhotoService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("returns photo", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		service := NewPhotoService(mockRepo, nil, zap.NewNop())

		mockRepo.On("GetByID", ctx, int64(42)).Return(ownedPhoto(42, 9001, "user-123"), nil)

		photo, err := service.Get(ctx, 42)

		require.NoError(t, err)
		assert.Equal(t, int64(42), photo.ID)
		assert.Equal(t, int64(9001), photo.PexelsID)
	})

	t.Run("maps missing photo to not found", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		service := NewPhotoService(mockRepo, nil, zap.NewNop())

		mockRepo.On("GetByID", ctx, int64(404)).
			Return(nil, fmt.Errorf("%w: photo 404", repositories.ErrNotFound))

		photo, err := service.Get(ctx, 404)

		assert.Nil(t, photo)
		assert.ErrorIs(t, err, ErrPhotoNotFound)
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("wraps repository failures as internal", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		service := NewPhotoService(mockRepo, nil, zap.NewNop())

		mockRepo.On("GetByID", ctx, int64(42)).Return(nil, fmt.Errorf("connection refused"))

		_, err := service.Get(ctx, 42)

		assert.True(t, IsInternalError(err))
	})
}

func TestPhotoService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps the caller as owner", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		service := NewPhotoService(mockRepo, nil, zap.NewNop())

		mockRepo.On("Create", ctx, mock.MatchedBy(func(p *models.Photo) bool {
			return p.UserID == "user-123" && p.PexelsID == 9001 && !p.CreatedAt.IsZero()
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Photo).ID = 42
		}).Return(nil)

		photo, err := service.Create(ctx, samplePhotoAttrs(9001), "user-123")

		require.NoError(t, err)
		assert.Equal(t, int64(42), photo.ID)
		assert.Equal(t, "user-123", photo.UserID)
		assert.Equal(t, "Jane Doe", photo.Photographer)
		mockRepo.AssertExpectations(t)
	})

	t.Run("maps duplicate pexels id to conflict", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		service := NewPhotoService(mockRepo, nil, zap.NewNop())

		mockRepo.On("Create", ctx, mock.Anything).
			Return(fmt.Errorf("%w: photo 9001", repositories.ErrDuplicate))

		photo, err := service.Create(ctx, samplePhotoAttrs(9001), "user-123")

		assert.Nil(t, photo)
		assert.ErrorIs(t, err, ErrDuplicatePexelsID)
		assert.True(t, IsConflictError(err))
	})

	t.Run("wraps repository failures as internal", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		service := NewPhotoService(mockRepo, nil, zap.NewNop())

		mockRepo.On("Create", ctx, mock.Anything).Return(fmt.Errorf("connection refused"))

		_, err := service.Create(ctx, samplePhotoAttrs(9001), "user-123")

		assert.True(t, IsInternalError(err))
	})
}

func TestPhotoService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("owner updates in a transaction", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		service := NewPhotoService(mockRepo, mockTxMgr, zap.NewNop())

		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Commit").Return(nil)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(ownedPhoto(42, 9001, "user-123"), nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		attrs := samplePhotoAttrs(9001)
		attrs.Width = 800
		attrs.Height = 600

		photo, err := service.Update(ctx, 42, attrs, "user-123")

		require.NoError(t, err)
		assert.Equal(t, int64(42), photo.ID)
		assert.Equal(t, 800, photo.Width)
		assert.Equal(t, 600, photo.Height)
		assert.True(t, mockTx.committed)
		mockRepo.AssertExpectations(t)
		mockTx.AssertExpectations(t)
	})

	t.Run("rejects non-owner without modifying", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		service := NewPhotoService(mockRepo, mockTxMgr, zap.NewNop())

		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Rollback").Return(nil)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(ownedPhoto(42, 9001, "someone-else"), nil)

		photo, err := service.Update(ctx, 42, samplePhotoAttrs(9001), "user-123")

		assert.Nil(t, photo)
		assert.ErrorIs(t, err, ErrCannotUpdateOthersPhoto)
		assert.True(t, IsForbiddenError(err))
		assert.True(t, mockTx.rolledback)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("maps missing photo to not found", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		service := NewPhotoService(mockRepo, mockTxMgr, zap.NewNop())

		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Rollback").Return(nil)
		mockRepo.On("GetByID", mock.Anything, int64(404)).
			Return(nil, fmt.Errorf("%w: photo 404", repositories.ErrNotFound))

		photo, err := service.Update(ctx, 404, samplePhotoAttrs(9001), "user-123")

		assert.Nil(t, photo)
		assert.ErrorIs(t, err, ErrPhotoNotFound)
		assert.True(t, mockTx.rolledback)
	})

	t.Run("maps pexels id collision to conflict", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		service := NewPhotoService(mockRepo, mockTxMgr, zap.NewNop())

		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Rollback").Return(nil)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(ownedPhoto(42, 9001, "user-123"), nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).
			Return(fmt.Errorf("%w: photo 42", repositories.ErrDuplicate))

		photo, err := service.Update(ctx, 42, samplePhotoAttrs(9002), "user-123")

		assert.Nil(t, photo)
		assert.ErrorIs(t, err, ErrDuplicatePexelsID)
		assert.True(t, mockTx.rolledback)
	})
}

func TestPhotoService_Patch(t *testing.T) {
	ctx := context.Background()

	t.Run("updates only provided fields", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		service := NewPhotoService(mockRepo, mockTxMgr, zap.NewNop())

		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Commit").Return(nil)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(ownedPhoto(42, 9001, "user-123"), nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		width := 800
		photo, err := service.Patch(ctx, 42, PhotoPatch{Width: &width}, "user-123")

		require.NoError(t, err)
		assert.Equal(t, 800, photo.Width)
		assert.Equal(t, 3000, photo.Height)
		require.NotNil(t, photo.Alt)
		assert.Equal(t, "A mountain lake at dawn", *photo.Alt)
		assert.True(t, mockTx.committed)
	})

	t.Run("replaces alt text", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		service := NewPhotoService(mockRepo, mockTxMgr, zap.NewNop())

		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Commit").Return(nil)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(ownedPhoto(42, 9001, "user-123"), nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		alt := "Same lake, new caption"
		photo, err := service.Patch(ctx, 42, PhotoPatch{Alt: &alt}, "user-123")

		require.NoError(t, err)
		assert.Equal(t, 4000, photo.Width)
		require.NotNil(t, photo.Alt)
		assert.Equal(t, "Same lake, new caption", *photo.Alt)
	})

	t.Run("rejects non-owner without modifying", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		service := NewPhotoService(mockRepo, mockTxMgr, zap.NewNop())

		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Rollback").Return(nil)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(ownedPhoto(42, 9001, "someone-else"), nil)

		width := 800
		photo, err := service.Patch(ctx, 42, PhotoPatch{Width: &width}, "user-123")

		assert.Nil(t, photo)
		assert.ErrorIs(t, err, ErrCannotUpdateOthersPhoto)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestPhotoService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes in a transaction", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		service := NewPhotoService(mockRepo, mockTxMgr, zap.NewNop())

		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Commit").Return(nil)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(ownedPhoto(42, 9001, "user-123"), nil)
		mockRepo.On("Delete", mock.Anything, int64(42)).Return(nil)

		err := service.Delete(ctx, 42, "user-123")

		require.NoError(t, err)
		assert.True(t, mockTx.committed)
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects non-owner without deleting", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		service := NewPhotoService(mockRepo, mockTxMgr, zap.NewNop())

		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Rollback").Return(nil)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(ownedPhoto(42, 9001, "someone-else"), nil)

		err := service.Delete(ctx, 42, "user-123")

		assert.ErrorIs(t, err, ErrCannotDeleteOthersPhoto)
		assert.True(t, IsForbiddenError(err))
		assert.True(t, mockTx.rolledback)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("maps missing photo to not found", func(t *testing.T) {
		mockRepo := new(MockPhotoRepository)
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		service := NewPhotoService(mockRepo, mockTxMgr, zap.NewNop())

		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Rollback").Return(nil)
		mockRepo.On("GetByID", mock.Anything, int64(404)).
			Return(nil, fmt.Errorf("%w: photo 404", repositories.ErrNotFound))

		err := service.Delete(ctx, 404, "user-123")

		assert.ErrorIs(t, err, ErrPhotoNotFound)
		assert.True(t, mockTx.rolledback)
	})
}
