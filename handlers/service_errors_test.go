package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumapix/photos-api/services"
	"github.com/lumapix/photos-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedError   string
		expectedMessage string
	}{
		{
			name:            "not found error",
			err:             services.ErrPhotoNotFound,
			expectedStatus:  http.StatusNotFound,
			expectedError:   "not_found",
			expectedMessage: "Photo not found",
		},
		{
			name:           "validation error",
			err:            services.ErrInvalidInput,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "validation_error",
		},
		{
			name:           "unauthorized error",
			err:            services.ErrUnauthorized,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "unauthorized",
		},
		{
			name:           "missing subject error",
			err:            services.ErrMissingSubject,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "unauthorized",
		},
		{
			name:            "forbidden error",
			err:             services.ErrCannotUpdateOthersPhoto,
			expectedStatus:  http.StatusForbidden,
			expectedError:   "forbidden",
			expectedMessage: "You can only update your own photos",
		},
		{
			name:            "conflict error",
			err:             services.ErrDuplicatePexelsID,
			expectedStatus:  http.StatusConflict,
			expectedError:   "conflict",
			expectedMessage: "Photo with this Pexels ID already exists",
		},
		{
			name:            "unavailable error",
			err:             services.ErrKeysUnavailable,
			expectedStatus:  http.StatusInternalServerError,
			expectedError:   "internal_error",
			expectedMessage: "key material unavailable",
		},
		{
			name:            "internal error keeps its message generic",
			err:             services.WrapInternal("failed to fetch photo", errors.New("connection refused")),
			expectedStatus:  http.StatusInternalServerError,
			expectedError:   "internal_error",
			expectedMessage: "An internal error occurred",
		},
		{
			name:           "unknown error",
			err:            errors.New("some unknown error"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response utils.ErrorResponse
			err := json.NewDecoder(w.Body).Decode(&response)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedError, response.Error)
			assert.NotEmpty(t, response.Message)
			if tt.expectedMessage != "" {
				assert.Equal(t, tt.expectedMessage, response.Message)
			}
		})
	}
}

func TestHandleServiceError_UnauthorizedChallenge(t *testing.T) {
	logger := zap.NewNop()
	w := httptest.NewRecorder()

	HandleServiceError(w, services.ErrTokenExpired, logger)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestHandleServiceErrorWithDetails(t *testing.T) {
	logger := zap.NewNop()

	// WithDetail mutates its receiver, so build a fresh error here
	err := services.NewDomainError(services.ErrorTypeConflict, "Photo with this Pexels ID already exists", nil).
		WithDetail("pexels_id", 9001)

	w := httptest.NewRecorder()
	HandleServiceError(w, err, logger)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response utils.ErrorResponse
	err2 := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err2)

	assert.Equal(t, "conflict", response.Error)
	assert.NotNil(t, response.Details)
	assert.Equal(t, float64(9001), response.Details["pexels_id"])
}

func TestHandleServiceErrorNil(t *testing.T) {
	logger := zap.NewNop()
	w := httptest.NewRecorder()

	HandleServiceError(w, nil, logger)

	// Should not write anything
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleValidationError(t *testing.T) {
	logger := zap.NewNop()

	t.Run("field validation error", func(t *testing.T) {
		fields := map[string]string{
			"url":       "url must be a valid URL",
			"avg_color": "avg_color must be exactly 7 characters",
		}
		err := &utils.ValidationError{
			Message: "Validation failed",
			Fields:  fields,
		}

		w := httptest.NewRecorder()
		HandleValidationError(w, err, logger)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response utils.ErrorResponse
		err2 := json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err2)

		assert.Equal(t, "validation_error", response.Error)
		assert.Equal(t, "Validation failed", response.Message)
		assert.NotNil(t, response.Details)
		assert.Equal(t, "url must be a valid URL", response.Details["url"])
		assert.Equal(t, "avg_color must be exactly 7 characters", response.Details["avg_color"])
	})

	t.Run("generic error", func(t *testing.T) {
		err := errors.New("generic validation error")

		w := httptest.NewRecorder()
		HandleValidationError(w, err, logger)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response utils.ErrorResponse
		err2 := json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err2)

		assert.Equal(t, "validation_error", response.Error)
		assert.Equal(t, "generic validation error", response.Message)
	})
}
