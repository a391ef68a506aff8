package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	apierrors "tabscan/internal/errors"
	"tabscan/internal/middleware"
	api "tabscan/pkg/contracts/api/v1"
	"tabscan/pkg/contracts/domain"
)

// DatasetHandler handles dataset HTTP requests with RFC 7807 errors.
type DatasetHandler struct {
	service      DatasetServiceInterface
	validator    StructValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(service DatasetServiceInterface, validator StructValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.LoadDataset)
	r.Get("/", h.ListDatasets)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.GetDataset)
		r.Delete("/", h.DeleteDataset)
		r.Get("/profile", h.GetProfile)
		r.Get("/mask", h.GetMask)
		r.Post("/drop", h.DropMissing)
		r.Post("/fill", h.FillMissing)
		r.Get("/export", h.ExportDataset)
	})

	return r
}

// DatasetCtx middleware validates the dataset id URL parameter.
func (h *DatasetHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Dataset id is required"))
			return
		}
		if _, err := uuid.Parse(id); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Dataset id must be a UUID"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoadDataset handles POST /api/datasets. The request body names a
// source and its parse options; the response carries the registered
// dataset with its shape and dtype census.
func (h *DatasetHandler) LoadDataset(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var req api.DatasetLoadRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "loading dataset",
		slog.String("request_id", reqID),
		slog.String("source_type", req.SourceType),
		slog.String("name", req.Name),
	)

	dataset, err := h.service.Load(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dataset load failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   dataset,
	})
}

// ListDatasets handles GET /api/datasets with paging and filters.
func (h *DatasetHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	req := api.DatasetListRequest{}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("page", "Page must be a positive integer"))
			return
		}
		req.Page = page
	}
	if v := q.Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 || size > 100 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("page_size", "Page size must be between 1 and 100"))
			return
		}
		req.PageSize = size
	}
	if v := q.Get("status"); v != "" {
		switch domain.DatasetStatus(v) {
		case domain.DatasetStatusLoading, domain.DatasetStatusReady, domain.DatasetStatusFailed:
			req.Status = v
		default:
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("status", "Status must be loading, ready or failed"))
			return
		}
	}
	if v := q.Get("source"); v != "" {
		switch domain.SourceType(v) {
		case domain.SourceTypeCSV, domain.SourceTypeXLSX, domain.SourceTypeHTML, domain.SourceTypeSheets, domain.SourceTypeURL:
			req.Source = v
		default:
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("source", "Source must be csv, xlsx, html, sheets or url"))
			return
		}
	}
	if v := q.Get("sort"); v != "" {
		if v != "asc" && v != "desc" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("sort", "Sort must be asc or desc"))
			return
		}
		req.Sort = v
	}
	req.SortBy = q.Get("sort_by")
	req.NameContains = q.Get("name_contains")

	datasets, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dataset list failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   datasets,
		"count":  len(datasets),
		"total":  total,
	})
}

// GetDataset handles GET /api/datasets/{id}. The dataset fingerprint
// doubles as an ETag so unchanged tables answer 304.
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dataset, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if dataset.Fingerprint != "" {
		w.Header().Set("ETag", `"`+dataset.Fingerprint+`"`)
		if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, dataset.Fingerprint) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   dataset,
	})
}

// DeleteDataset handles DELETE /api/datasets/{id}. Unloading a parent
// dataset leaves derived datasets in the registry.
func (h *DatasetHandler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.logger.InfoContext(r.Context(), "unloading dataset",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("dataset_id", id),
	)

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{
		"message": "Dataset unloaded",
		"id":      id,
	})
}

// GetProfile handles GET /api/datasets/{id}/profile. The profile is
// the nullity summary computed at load time over current cells.
func (h *DatasetHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	summary, err := h.service.Profile(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetMask handles GET /api/datasets/{id}/mask. Rows come back as
// boolean slices in column order, true marking a missing cell.
func (h *DatasetHandler) GetMask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	mask, labels, err := h.service.Mask(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data := map[string]interface{}{
		"columns":       mask.Columns(),
		"rows":          mask.Rows(),
		"num_rows":      mask.NumRows(),
		"num_columns":   mask.NumCols(),
		"missing_cells": mask.CountMissing(),
	}
	if len(labels) > 0 {
		data["labels"] = labels
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// DropMissing handles POST /api/datasets/{id}/drop. The reduction
// registers a derived dataset and leaves the source untouched.
func (h *DatasetHandler) DropMissing(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var req api.DropRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	req.DatasetID = chi.URLParam(r, "id")
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dropping missing data",
		slog.String("request_id", reqID),
		slog.String("dataset_id", req.DatasetID),
		slog.String("axis", req.Axis),
		slog.String("how", req.How),
	)

	report, derived, err := h.service.Drop(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "drop failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("dataset_id", req.DatasetID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"report":  report,
			"dataset": derived,
		},
	})
}

// FillMissing handles POST /api/datasets/{id}/fill.
func (h *DatasetHandler) FillMissing(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var req api.FillRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	req.DatasetID = chi.URLParam(r, "id")
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "filling missing data",
		slog.String("request_id", reqID),
		slog.String("dataset_id", req.DatasetID),
		slog.String("strategy", req.Strategy),
	)

	report, derived, err := h.service.Fill(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "fill failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("dataset_id", req.DatasetID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"report":  report,
			"dataset": derived,
		},
	})
}

// ExportDataset handles GET /api/datasets/{id}/export. Format and
// target come from query parameters; format defaults to csv and
// target to the table itself.
func (h *DatasetHandler) ExportDataset(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := api.ExportRequest{
		DatasetID: chi.URLParam(r, "id"),
		Format:    q.Get("format"),
		Target:    q.Get("target"),
		Path:      q.Get("path"),
	}
	if req.Format == "" {
		req.Format = "csv"
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "exporting dataset",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("dataset_id", req.DatasetID),
		slog.String("format", req.Format),
		slog.String("target", req.Target),
	)

	record, err := h.service.Export(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   record,
	})
}
