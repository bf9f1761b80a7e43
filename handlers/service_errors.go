package handlers

import (
	"net/http"

	"github.com/lumapix/photos-api/services"
	"github.com/lumapix/photos-api/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses.
// Expected control-flow errors (not found, forbidden, conflict) pass through
// with their message; internal and unavailable errors are logged and masked.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	message := services.GetErrorMessage(err)
	details := services.GetErrorDetails(err)

	// Map error type to HTTP status and response
	switch {
	case services.IsNotFoundError(err):
		if err := utils.WriteNotFound(w, message); err != nil {
			logger.Error("failed to write not found response", zap.Error(err))
		}

	case services.IsValidationError(err):
		if err := utils.WriteUnprocessableEntity(w, message, details); err != nil {
			logger.Error("failed to write validation error response", zap.Error(err))
		}

	case services.IsUnauthorizedError(err):
		if err := utils.WriteUnauthorized(w, message); err != nil {
			logger.Error("failed to write unauthorized response", zap.Error(err))
		}

	case services.IsForbiddenError(err):
		if err := utils.WriteForbidden(w, message); err != nil {
			logger.Error("failed to write forbidden response", zap.Error(err))
		}

	case services.IsConflictError(err):
		if err := utils.WriteConflict(w, message, details); err != nil {
			logger.Error("failed to write conflict response", zap.Error(err))
		}

	case services.IsUnavailableError(err):
		// Dependency outages surface as 500s and are not retried here
		logger.Error("dependency unavailable", zap.Error(err))
		if err := utils.WriteInternalServerError(w, message); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}

	case services.IsInternalError(err):
		// Log internal errors but return generic message
		logger.Error("internal server error", zap.Error(err))
		if err := utils.WriteInternalServerError(w, "An internal error occurred"); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}

	default:
		// Unknown error type - log and return internal error
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		if err := utils.WriteInternalServerError(w, "An unexpected error occurred"); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{})
		for k, v := range fields {
			details[k] = v
		}
		if err := utils.WriteUnprocessableEntity(w, "Validation failed", details); err != nil {
			logger.Error("failed to write validation error response", zap.Error(err))
		}
		return
	}

	// Generic validation error
	if err := utils.WriteUnprocessableEntity(w, err.Error(), nil); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}
