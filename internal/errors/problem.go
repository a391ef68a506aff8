package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/render"
)

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	for k, v := range pd.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// MapAppError maps a domain AppError to HTTP problem details. Unrecognized
// errors map to a generic internal problem.
func MapAppError(err error, instance, traceID string) *ProblemDetails {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred while processing your request.",
			instance,
		).WithExtension("trace_id", traceID)
	}

	var problem *ProblemDetails
	switch appErr.Type {
	case ErrTypeConfig:
		problem = NewProblemDetails(
			http.StatusBadRequest,
			TypeConfig,
			"Invalid Configuration",
			appErr.Message,
			instance,
		)
	case ErrTypeShape:
		problem = NewProblemDetails(
			http.StatusBadRequest,
			TypeShapeMismatch,
			"Shape Mismatch",
			appErr.Message,
			instance,
		)
	case ErrTypeUnsupported:
		problem = NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeUnsupportedType,
			"Unsupported Column Type",
			appErr.Message,
			instance,
		)
	case ErrTypeParsing:
		problem = NewProblemDetails(
			http.StatusBadRequest,
			TypeParsing,
			"Parse Failure",
			appErr.Message,
			instance,
		)
	case ErrTypeValidation:
		problem = NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Validation Failed",
			appErr.Message,
			instance,
		)
	case ErrTypeNotFound:
		problem = NewProblemDetails(
			http.StatusNotFound,
			TypeDatasetNotFound,
			"Not Found",
			appErr.Message,
			instance,
		)
	case ErrTypeNetwork:
		problem = NewProblemDetails(
			http.StatusBadGateway,
			TypeUpstream,
			"Upstream Fetch Failed",
			appErr.Message,
			instance,
		)
	case ErrTypeStorage:
		problem = NewProblemDetails(
			http.StatusInternalServerError,
			TypeStorage,
			"Storage Failure",
			appErr.Message,
			instance,
		)
	default:
		problem = NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			appErr.Message,
			instance,
		)
	}

	problem.WithExtension("trace_id", traceID).
		WithExtension("error_code", string(appErr.Type))
	for k, v := range appErr.Context {
		problem.WithExtension(k, v)
	}
	return problem
}
