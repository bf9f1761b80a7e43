package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/lumapix/photos-api/middleware"
	"github.com/lumapix/photos-api/models"
	"github.com/lumapix/photos-api/repositories"
	"github.com/lumapix/photos-api/services"
	"github.com/lumapix/photos-api/utils"
	"go.uber.org/zap"
)

// PhotoCreateRequest carries the client-settable fields for creating or fully
// replacing a photo. The owner is stamped from the caller's identity and is
// never part of the payload.
type PhotoCreateRequest struct {
	PexelsID        int64   `json:"pexels_id" validate:"required,gt=0"`
	Width           int     `json:"width" validate:"required,gt=0"`
	Height          int     `json:"height" validate:"required,gt=0"`
	URL             string  `json:"url" validate:"required,url,max=2048"`
	Photographer    string  `json:"photographer" validate:"required,max=255"`
	PhotographerURL string  `json:"photographer_url" validate:"required,url,max=2048"`
	PhotographerID  int64   `json:"photographer_id" validate:"required,gt=0"`
	AvgColor        string  `json:"avg_color" validate:"required,len=7,hexcolor"`
	SrcOriginal     string  `json:"src_original" validate:"required,url,max=2048"`
	SrcLarge2x      string  `json:"src_large2x" validate:"required,url,max=2048"`
	SrcLarge        string  `json:"src_large" validate:"required,url,max=2048"`
	SrcMedium       string  `json:"src_medium" validate:"required,url,max=2048"`
	SrcSmall        string  `json:"src_small" validate:"required,url,max=2048"`
	SrcPortrait     string  `json:"src_portrait" validate:"required,url,max=2048"`
	SrcLandscape    string  `json:"src_landscape" validate:"required,url,max=2048"`
	SrcTiny         string  `json:"src_tiny" validate:"required,url,max=2048"`
	Alt             *string `json:"alt"`
}

func (r *PhotoCreateRequest) toAttrs() services.PhotoAttrs {
	return services.PhotoAttrs{
		PexelsID:        r.PexelsID,
		Width:           r.Width,
		Height:          r.Height,
		URL:             r.URL,
		Photographer:    r.Photographer,
		PhotographerURL: r.PhotographerURL,
		PhotographerID:  r.PhotographerID,
		AvgColor:        r.AvgColor,
		SrcOriginal:     r.SrcOriginal,
		SrcLarge2x:      r.SrcLarge2x,
		SrcLarge:        r.SrcLarge,
		SrcMedium:       r.SrcMedium,
		SrcSmall:        r.SrcSmall,
		SrcPortrait:     r.SrcPortrait,
		SrcLandscape:    r.SrcLandscape,
		SrcTiny:         r.SrcTiny,
		Alt:             r.Alt,
	}
}

// PhotoPatchRequest carries the fields a partial update may change.
// Absent fields are left untouched.
type PhotoPatchRequest struct {
	Width  *int    `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height *int    `json:"height,omitempty" validate:"omitempty,gt=0"`
	Alt    *string `json:"alt,omitempty"`
}

func (r *PhotoPatchRequest) toPatch() services.PhotoPatch {
	return services.PhotoPatch{
		Width:  r.Width,
		Height: r.Height,
		Alt:    r.Alt,
	}
}

// PhotoResponse represents a photo in API responses
type PhotoResponse struct {
	ID              int64   `json:"id"`
	PexelsID        int64   `json:"pexels_id"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	URL             string  `json:"url"`
	Photographer    string  `json:"photographer"`
	PhotographerURL string  `json:"photographer_url"`
	PhotographerID  int64   `json:"photographer_id"`
	AvgColor        string  `json:"avg_color"`
	SrcOriginal     string  `json:"src_original"`
	SrcLarge2x      string  `json:"src_large2x"`
	SrcLarge        string  `json:"src_large"`
	SrcMedium       string  `json:"src_medium"`
	SrcSmall        string  `json:"src_small"`
	SrcPortrait     string  `json:"src_portrait"`
	SrcLandscape    string  `json:"src_landscape"`
	SrcTiny         string  `json:"src_tiny"`
	Alt             *string `json:"alt"`
	UserID          string  `json:"user_id"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// PhotoListResponse represents one page of photos
type PhotoListResponse struct {
	Items []PhotoResponse `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Pages int             `json:"pages"`
}

// PhotoService defines the interface for photo operations
type PhotoService interface {
	// List returns one page of photos plus the total match count
	List(ctx context.Context, filter repositories.PhotoFilter, page, limit int) ([]*models.Photo, int64, error)

	// Get retrieves a photo by ID
	Get(ctx context.Context, id int64) (*models.Photo, error)

	// Create inserts a new photo owned by ownerID
	Create(ctx context.Context, attrs services.PhotoAttrs, ownerID string) (*models.Photo, error)

	// Update replaces all client-settable fields of the photo owned by callerID
	Update(ctx context.Context, id int64, attrs services.PhotoAttrs, callerID string) (*models.Photo, error)

	// Patch applies a partial update to the photo owned by callerID
	Patch(ctx context.Context, id int64, patch services.PhotoPatch, callerID string) (*models.Photo, error)

	// Delete removes the photo owned by callerID
	Delete(ctx context.Context, id int64, callerID string) error
}

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photos PhotoService
	logger *zap.Logger
}

// NewPhotoHandler creates a new PhotoHandler
func NewPhotoHandler(photos PhotoService, logger *zap.Logger) *PhotoHandler {
	return &PhotoHandler{
		photos: photos,
		logger: logger,
	}
}

// HandleListPhotos handles GET /api/v1/photos
func (h *PhotoHandler) HandleListPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chimiddleware.GetReqID(ctx)

	// Parse pagination parameters
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil || parsed < 1 {
			_ = utils.WriteUnprocessableEntity(w, "Invalid query parameters", map[string]interface{}{
				"page": "must be an integer greater than or equal to 1",
			})
			return
		}
		page = parsed
	}

	limit := services.DefaultPageLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > services.MaxPageLimit {
			_ = utils.WriteUnprocessableEntity(w, "Invalid query parameters", map[string]interface{}{
				"limit": fmt.Sprintf("must be an integer between 1 and %d", services.MaxPageLimit),
			})
			return
		}
		limit = parsed
	}

	// Optional photographer filter
	var filter repositories.PhotoFilter
	if pidStr := r.URL.Query().Get("photographer_id"); pidStr != "" {
		parsed, err := strconv.ParseInt(pidStr, 10, 64)
		if err != nil {
			_ = utils.WriteUnprocessableEntity(w, "Invalid query parameters", map[string]interface{}{
				"photographer_id": "must be an integer",
			})
			return
		}
		filter.PhotographerID = &parsed
	}

	h.logger.Debug("listing photos",
		zap.String("request_id", requestID),
		zap.Int("page", page),
		zap.Int("limit", limit))

	photos, total, err := h.photos.List(ctx, filter, page, limit)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	// Convert to response format
	items := make([]PhotoResponse, len(photos))
	for i, p := range photos {
		items[i] = photoToResponse(p)
	}

	pages := int((total + int64(limit) - 1) / int64(limit))

	h.logger.Info("listed photos",
		zap.String("request_id", requestID),
		zap.Int("count", len(items)),
		zap.Int64("total", total))

	_ = utils.WriteJSON(w, http.StatusOK, PhotoListResponse{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	})
}

// HandleGetPhoto handles GET /api/v1/photos/{id}
func (h *PhotoHandler) HandleGetPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.parsePhotoID(w, r)
	if !ok {
		return
	}

	photo, err := h.photos.Get(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, photoToResponse(photo))
}

// HandleCreatePhoto handles POST /api/v1/photos
func (h *PhotoHandler) HandleCreatePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chimiddleware.GetReqID(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		h.logger.Error("missing user in context", zap.String("request_id", requestID))
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	// Parse request body
	var req PhotoCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteUnprocessableEntity(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if err := utils.ValidateStruct(&req); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	photo, err := h.photos.Create(ctx, req.toAttrs(), user.ID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("photo created",
		zap.String("request_id", requestID),
		zap.Int64("photo_id", photo.ID),
		zap.String("user_id", user.ID))

	_ = utils.WriteJSON(w, http.StatusCreated, photoToResponse(photo))
}

// HandleUpdatePhoto handles PUT /api/v1/photos/{id}
func (h *PhotoHandler) HandleUpdatePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chimiddleware.GetReqID(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		h.logger.Error("missing user in context", zap.String("request_id", requestID))
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	id, ok := h.parsePhotoID(w, r)
	if !ok {
		return
	}

	// Parse request body
	var req PhotoCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteUnprocessableEntity(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if err := utils.ValidateStruct(&req); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	photo, err := h.photos.Update(ctx, id, req.toAttrs(), user.ID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("photo updated",
		zap.String("request_id", requestID),
		zap.Int64("photo_id", photo.ID),
		zap.String("user_id", user.ID))

	_ = utils.WriteJSON(w, http.StatusOK, photoToResponse(photo))
}

// HandlePatchPhoto handles PATCH /api/v1/photos/{id}
func (h *PhotoHandler) HandlePatchPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chimiddleware.GetReqID(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		h.logger.Error("missing user in context", zap.String("request_id", requestID))
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	id, ok := h.parsePhotoID(w, r)
	if !ok {
		return
	}

	// Parse request body
	var req PhotoPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteUnprocessableEntity(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if err := utils.ValidateStruct(&req); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	photo, err := h.photos.Patch(ctx, id, req.toPatch(), user.ID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("photo patched",
		zap.String("request_id", requestID),
		zap.Int64("photo_id", photo.ID),
		zap.String("user_id", user.ID))

	_ = utils.WriteJSON(w, http.StatusOK, photoToResponse(photo))
}

// HandleDeletePhoto handles DELETE /api/v1/photos/{id}
func (h *PhotoHandler) HandleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chimiddleware.GetReqID(ctx)

	user := middleware.GetUserFromContext(ctx)
	if user == nil {
		h.logger.Error("missing user in context", zap.String("request_id", requestID))
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	id, ok := h.parsePhotoID(w, r)
	if !ok {
		return
	}

	if err := h.photos.Delete(ctx, id, user.ID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("photo deleted",
		zap.String("request_id", requestID),
		zap.Int64("photo_id", id),
		zap.String("user_id", user.ID))

	utils.WriteNoContent(w)
}

// parsePhotoID parses the {id} route parameter. On failure it writes the
// error response and returns false.
func (h *PhotoHandler) parsePhotoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		_ = utils.WriteUnprocessableEntity(w, "Invalid photo ID", map[string]interface{}{
			"id": "must be an integer",
		})
		return 0, false
	}
	return id, true
}

// photoToResponse converts a Photo model to a PhotoResponse
func photoToResponse(p *models.Photo) PhotoResponse {
	return PhotoResponse{
		ID:              p.ID,
		PexelsID:        p.PexelsID,
		Width:           p.Width,
		Height:          p.Height,
		URL:             p.URL,
		Photographer:    p.Photographer,
		PhotographerURL: p.PhotographerURL,
		PhotographerID:  p.PhotographerID,
		AvgColor:        p.AvgColor,
		SrcOriginal:     p.SrcOriginal,
		SrcLarge2x:      p.SrcLarge2x,
		SrcLarge:        p.SrcLarge,
		SrcMedium:       p.SrcMedium,
		SrcSmall:        p.SrcSmall,
		SrcPortrait:     p.SrcPortrait,
		SrcLandscape:    p.SrcLandscape,
		SrcTiny:         p.SrcTiny,
		Alt:             p.Alt,
		UserID:          p.UserID,
		CreatedAt:       p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:       p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
