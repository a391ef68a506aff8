package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	assert.Equal(t, "Invalid request format", err.Error())
}

func TestPredefinedErrors_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		apiErr     *APIError
		wantStatus int
		wantCode   string
	}{
		{
			name:       "bad request",
			apiErr:     ErrInvalidRequest,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "dataset not found",
			apiErr:     ErrDatasetNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "DATASET_NOT_FOUND",
		},
		{
			name:       "unsupported media",
			apiErr:     ErrUnsupportedMedia,
			wantStatus: http.StatusUnsupportedMediaType,
			wantCode:   "UNSUPPORTED_MEDIA_TYPE",
		},
		{
			name:       "rate limit",
			apiErr:     ErrRateLimitExceeded,
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "RATE_LIMIT_EXCEEDED",
		},
		{
			name:       "scan failed",
			apiErr:     ErrScanFailed,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "SCAN_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, tt.apiErr.ErrorCode)
		})
	}
}

func TestNewWithDetails(t *testing.T) {
	err := NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "bad input", map[string]string{"field": "axis"})

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)
	assert.NotNil(t, err.Details)
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("how", "must be one of any, all")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	detail, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "how", detail.Field)
	assert.Equal(t, "must be one of any, all", detail.Message)
}

func TestDatasetNotFoundError(t *testing.T) {
	err := DatasetNotFoundError("ds-123")

	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "DATASET_NOT_FOUND", err.ErrorCode)
	assert.Equal(t, "ds-123", err.Details)
}

func TestNewValidationErrors(t *testing.T) {
	errs := []ValidationError{
		{Field: "axis", Message: "required"},
		{Field: "thresh", Message: "must be >= 0"},
	}

	err := NewValidationErrors(errs)

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	wrapped, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, wrapped.Errors, 2)
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, ErrScanFailed)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SCAN_FAILED", resp.Error.ErrorCode)
}

func TestInvalidRequestWithError(t *testing.T) {
	err := InvalidRequestWithError(errors.New("unexpected token"))

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "unexpected token", err.Details)
}

func TestFileSystemError(t *testing.T) {
	err := FileSystemError("export", errors.New("permission denied"))

	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Contains(t, err.Message, "export")
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(
		http.StatusBadRequest,
		TypeShapeMismatch,
		"Shape Mismatch",
		"subset column age not present",
		"/api/datasets/x/drop",
	).WithExtension("trace_id", "abc").WithExtension("column", "age")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeShapeMismatch, decoded["type"])
	assert.Equal(t, "Shape Mismatch", decoded["title"])
	assert.Equal(t, float64(http.StatusBadRequest), decoded["status"])
	assert.Equal(t, "abc", decoded["trace_id"])
	assert.Equal(t, "age", decoded["column"])
}

func TestProblemDetails_OmitsEmptyDetail(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "detail")
	assert.NotContains(t, decoded, "instance")
}
