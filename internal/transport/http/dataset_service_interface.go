package http

import (
	"context"

	"tabscan/internal/nullity"
	api "tabscan/pkg/contracts/api/v1"
	"tabscan/pkg/contracts/domain"
)

// DatasetServiceInterface defines the dataset operations the HTTP
// layer depends on. *services.DatasetService satisfies it; tests
// substitute a mock.
type DatasetServiceInterface interface {
	Load(ctx context.Context, req api.DatasetLoadRequest) (*domain.Dataset, error)
	Get(ctx context.Context, id string) (*domain.Dataset, error)
	List(ctx context.Context, req api.DatasetListRequest) ([]domain.Dataset, int, error)
	Delete(ctx context.Context, id string) error
	Profile(ctx context.Context, id string) (*domain.ScanSummary, error)
	Mask(ctx context.Context, id string) (nullity.NullityMask, []string, error)
	Drop(ctx context.Context, req api.DropRequest) (*domain.ReductionReport, *domain.Dataset, error)
	Fill(ctx context.Context, req api.FillRequest) (*domain.ReductionReport, *domain.Dataset, error)
	Export(ctx context.Context, req api.ExportRequest) (*domain.ExportRecord, error)
}

// StructValidator checks decoded request payloads against their
// declared constraints before they reach a service.
type StructValidator interface {
	ValidateStruct(v interface{}) error
}
