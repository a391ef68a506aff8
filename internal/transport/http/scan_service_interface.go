package http

import (
	"context"

	api "tabscan/pkg/contracts/api/v1"
	"tabscan/pkg/contracts/domain"
)

// ScanServiceInterface defines the scan operations the HTTP layer
// depends on. *services.ScanService satisfies it; tests substitute a
// mock.
type ScanServiceInterface interface {
	Start(ctx context.Context, req api.ScanStartRequest) (*domain.Scan, error)
	Get(ctx context.Context, scanID string) (*domain.Scan, error)
	List(ctx context.Context, req api.ScanListRequest) ([]domain.Scan, int, error)
	Cancel(ctx context.Context, scanID string) error
	Summary(ctx context.Context, scanID string) (*domain.ScanSummary, error)
}
