package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{
			name:     "config error type",
			errType:  ErrTypeConfig,
			expected: "CONFIG",
		},
		{
			name:     "shape mismatch error type",
			errType:  ErrTypeShape,
			expected: "SHAPE_MISMATCH",
		},
		{
			name:     "unsupported type error type",
			errType:  ErrTypeUnsupported,
			expected: "UNSUPPORTED_TYPE",
		},
		{
			name:     "parsing error type",
			errType:  ErrTypeParsing,
			expected: "PARSING",
		},
		{
			name:     "storage error type",
			errType:  ErrTypeStorage,
			expected: "STORAGE",
		},
		{
			name:     "validation error type",
			errType:  ErrTypeValidation,
			expected: "VALIDATION",
		},
		{
			name:     "not found error type",
			errType:  ErrTypeNotFound,
			expected: "NOT_FOUND",
		},
		{
			name:     "network error type",
			errType:  ErrTypeNetwork,
			expected: "NETWORK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeShape,
				Message: "subset column missing",
				Cause:   nil,
			},
			wantMessage: "[SHAPE_MISMATCH] subset column missing",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeParsing,
				Message: "failed to read csv",
				Cause:   fmt.Errorf("unexpected EOF"),
			},
			wantMessage: "[PARSING] failed to read csv: unexpected EOF",
		},
		{
			name: "error with empty message",
			appError: &AppError{
				Type:    ErrTypeValidation,
				Message: "",
				Cause:   nil,
			},
			wantMessage: "[VALIDATION] ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("original error")
	err := NewConfigError("bad policy", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))

	noCause := NewShapeError("thresh out of range")
	assert.Nil(t, noCause.Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	err := NewUnsupportedTypeError("mean undefined for string column")
	err.WithContext("column", "city").WithContext("dtype", "string")

	require.NotNil(t, err.Context)
	assert.Equal(t, "city", err.Context["column"])
	assert.Equal(t, "string", err.Context["dtype"])
}

func TestAppError_WithContext_NilMap(t *testing.T) {
	err := &AppError{Type: ErrTypeInternal, Message: "boom"}
	err.WithContext("key", 1)

	require.NotNil(t, err.Context)
	assert.Equal(t, 1, err.Context["key"])
}

func TestNewAppError_Constructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
	}{
		{
			name:     "config error",
			err:      NewConfigError("unknown column type", nil),
			wantType: ErrTypeConfig,
		},
		{
			name:     "shape error",
			err:      NewShapeError("column not present"),
			wantType: ErrTypeShape,
		},
		{
			name:     "unsupported type error",
			err:      NewUnsupportedTypeError("no median for bool"),
			wantType: ErrTypeUnsupported,
		},
		{
			name:     "parsing error",
			err:      NewParsingError("bad row", errors.New("eof")),
			wantType: ErrTypeParsing,
		},
		{
			name:     "storage error",
			err:      NewStorageError("write failed", errors.New("disk full")),
			wantType: ErrTypeStorage,
		},
		{
			name:     "validation error",
			err:      NewAppValidationError("empty table name"),
			wantType: ErrTypeValidation,
		},
		{
			name:     "not found error",
			err:      NewNotFoundError("dataset"),
			wantType: ErrTypeNotFound,
		},
		{
			name:     "network error",
			err:      NewNetworkError("fetch failed", errors.New("timeout")),
			wantType: ErrTypeNetwork,
		},
		{
			name:     "internal error",
			err:      NewInternalAppError("unexpected state", nil),
			wantType: ErrTypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestNewNotFoundError_Message(t *testing.T) {
	err := NewNotFoundError("dataset")
	assert.Equal(t, "[NOT_FOUND] dataset not found", err.Error())
}

func TestTypePredicates(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", NewShapeError("bad subset"))

	assert.True(t, IsShape(wrapped))
	assert.False(t, IsConfig(wrapped))
	assert.False(t, IsUnsupported(wrapped))
	assert.False(t, IsNotFound(wrapped))

	assert.True(t, IsConfig(NewConfigError("x", nil)))
	assert.True(t, IsUnsupported(NewUnsupportedTypeError("x")))
	assert.True(t, IsNotFound(NewNotFoundError("x")))

	assert.False(t, IsShape(errors.New("plain")))
	assert.False(t, IsShape(nil))
}
