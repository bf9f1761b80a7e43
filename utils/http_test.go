package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"message": "test"}

		err := WriteJSON(w, http.StatusOK, data)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		err = json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, "test", response["message"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusNoContent, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	WriteNoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestWriteBadRequest(t *testing.T) {
	w := httptest.NewRecorder()
	details := map[string]interface{}{"email": "invalid format"}

	err := WriteBadRequest(w, "Malformed request", details)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	err = json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, "bad_request", response.Error)
	assert.Equal(t, "Malformed request", response.Message)
	assert.Equal(t, "invalid format", response.Details["email"])
}

func TestWriteUnauthorized(t *testing.T) {
	t.Run("with custom message", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteUnauthorized(w, "Invalid token")
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

		var response ErrorResponse
		err = json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)

		assert.Equal(t, "unauthorized", response.Error)
		assert.Equal(t, "Invalid token", response.Message)
	})

	t.Run("with empty message", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteUnauthorized(w, "")
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

		var response ErrorResponse
		err = json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)

		assert.Equal(t, "Authentication required", response.Message)
	})
}

func TestWriteForbidden(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteForbidden(w, "You can only update your own photos")
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var response ErrorResponse
	err = json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, "forbidden", response.Error)
	assert.Equal(t, "You can only update your own photos", response.Message)
}

func TestWriteNotFound(t *testing.T) {
	t.Run("with custom message", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteNotFound(w, "Photo not found")
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var response ErrorResponse
		err = json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)

		assert.Equal(t, "not_found", response.Error)
		assert.Equal(t, "Photo not found", response.Message)
	})

	t.Run("with empty message", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteNotFound(w, "")
		require.NoError(t, err)

		var response ErrorResponse
		err = json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)

		assert.Equal(t, "Resource not found", response.Message)
	})
}

func TestWriteConflict(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteConflict(w, "Photo with this Pexels ID already exists", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response ErrorResponse
	err = json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, "conflict", response.Error)
	assert.Equal(t, "Photo with this Pexels ID already exists", response.Message)
}

func TestWriteUnprocessableEntity(t *testing.T) {
	t.Run("with field details", func(t *testing.T) {
		w := httptest.NewRecorder()
		details := map[string]interface{}{"Width": "Width is required"}

		err := WriteUnprocessableEntity(w, "Validation failed", details)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response ErrorResponse
		err = json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)

		assert.Equal(t, "validation_error", response.Error)
		assert.Equal(t, "Validation failed", response.Message)
		assert.Equal(t, "Width is required", response.Details["Width"])
	})

	t.Run("with empty message", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteUnprocessableEntity(w, "", nil)
		require.NoError(t, err)

		var response ErrorResponse
		err = json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)

		assert.Equal(t, "Validation failed", response.Message)
	})
}

func TestWriteInternalServerError(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteInternalServerError(w, "")
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response ErrorResponse
	err = json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, "internal_error", response.Error)
	assert.Equal(t, "Internal server error", response.Message)
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		expectedError string
	}{
		{"bad request", http.StatusBadRequest, "bad_request"},
		{"unauthorized", http.StatusUnauthorized, "unauthorized"},
		{"forbidden", http.StatusForbidden, "forbidden"},
		{"not found", http.StatusNotFound, "not_found"},
		{"conflict", http.StatusConflict, "conflict"},
		{"unprocessable entity", http.StatusUnprocessableEntity, "validation_error"},
		{"service unavailable", http.StatusServiceUnavailable, "service_unavailable"},
		{"unknown maps to internal", http.StatusBadGateway, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			err := WriteError(w, tt.status, "message", nil)
			require.NoError(t, err)

			assert.Equal(t, tt.status, w.Code)

			var response ErrorResponse
			err = json.NewDecoder(w.Body).Decode(&response)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedError, response.Error)
			assert.Equal(t, "message", response.Message)
		})
	}
}
