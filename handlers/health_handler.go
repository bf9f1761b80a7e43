package handlers

import (
	"net/http"

	"github.com/lumapix/photos-api/repositories/postgres"
	"github.com/lumapix/photos-api/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the liveness response
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ReadinessResponse represents the readiness response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db     *postgres.DB
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *postgres.DB, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// HandleHealth handles GET /api/v1/health.
// Liveness only; it never touches dependencies.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Message: "Lumapix Photos API is running",
	})
}

// HandleReadiness handles GET /api/v1/ready.
// Returns 503 until the database answers.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	status := "healthy"
	httpStatus := http.StatusOK
	if err := h.db.HealthCheck(r.Context()); err != nil {
		h.logger.Warn("database readiness check failed", zap.Error(err))
		checks["database"] = "unhealthy"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["database"] = "healthy"
	}

	if err := utils.WriteJSON(w, httpStatus, ReadinessResponse{
		Status: status,
		Checks: checks,
	}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
