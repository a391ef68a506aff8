package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tabscan/internal/config"
	"tabscan/internal/dataload"
	apperrors "tabscan/internal/errors"
	"tabscan/internal/infrastructure"
	"tabscan/internal/nullity"
	api "tabscan/pkg/contracts/api/v1"
	"tabscan/pkg/contracts/domain"
	"tabscan/pkg/contracts/events"
)

// WebSocketHub interface for WebSocket communication
type WebSocketHub interface {
	Broadcast(messageType string, data interface{})
}

// ScanService runs nullity scans. A scan over a registered dataset
// executes an ordered step pipeline asynchronously and publishes a
// full snapshot on the hub after every state change; a batch scan
// profiles a set of files concurrently without touching the registry.
type ScanService struct {
	cfg      *config.Config
	paths    *config.Paths
	logger   *slog.Logger
	datasets *DatasetService
	hub      WebSocketHub
	metrics  *infrastructure.BusinessMetrics

	mu   sync.RWMutex
	runs map[string]*scanRun
}

// NewScanService creates a new scan service using the process paths.
func NewScanService(cfg *config.Config, datasets *DatasetService, logger *slog.Logger) (*ScanService, error) {
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	return NewScanServiceWithPaths(cfg, paths, datasets, logger)
}

// NewScanServiceWithPaths creates a new scan service with injected
// paths.
func NewScanServiceWithPaths(cfg *config.Config, paths *config.Paths, datasets *DatasetService, logger *slog.Logger) (*ScanService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if datasets == nil {
		return nil, fmt.Errorf("dataset service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("ScanService initialized with paths",
		slog.String("reports_dir", paths.ReportsDir),
		slog.Int("batch_workers", cfg.Scan.Workers),
		slog.Duration("scan_timeout", cfg.Scan.BatchTimeout))

	return &ScanService{
		cfg:      cfg,
		paths:    paths,
		logger:   logger,
		datasets: datasets,
		runs:     make(map[string]*scanRun),
	}, nil
}

// WithHub attaches the broadcast hub for scan snapshots.
func (s *ScanService) WithHub(hub WebSocketHub) *ScanService {
	s.hub = hub
	return s
}

// WithMetrics attaches the business metrics recorders.
func (s *ScanService) WithMetrics(m *infrastructure.BusinessMetrics) *ScanService {
	s.metrics = m
	return s
}

// Start launches a scan over a registered dataset and returns its
// initial state. The pipeline runs in the background; progress arrives
// over the hub and through Get.
func (s *ScanService) Start(ctx context.Context, req api.ScanStartRequest) (*domain.Scan, error) {
	entry, err := s.datasets.entry(req.DatasetID)
	if err != nil {
		return nil, err
	}

	scanCfg := domain.ScanConfig{
		StringSentinels: req.StringSentinels,
		NumberSentinels: req.NumberSentinels,
		CaseInsensitive: req.CaseInsensitive,
		ComputeMask:     req.ComputeMask,
		ExportReport:    req.ExportReport,
	}
	if _, err := nullity.NewClassifier(scanPolicy(scanCfg)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	run := &scanRun{
		svc:   s,
		entry: entry,
		scan: domain.Scan{
			ID:        uuid.NewString(),
			DatasetID: req.DatasetID,
			Status:    domain.ScanStatusPending,
			Config:    scanCfg,
			Steps:     buildSteps(scanCfg),
			CreatedAt: now,
		},
	}

	s.mu.Lock()
	s.runs[run.scan.ID] = run
	s.mu.Unlock()

	// The scan outlives the request: drop the caller's cancellation
	// but keep its values so trace ids survive into the pipeline.
	scanCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Scan.BatchTimeout)
	run.cancel = cancel

	infrastructure.RecordActiveScanChange(ctx, s.metrics, 1, "dataset")
	infrastructure.LoggerWithContext(ctx).Info("scan started",
		slog.String("scan_id", run.scan.ID),
		slog.String("dataset_id", req.DatasetID),
		slog.Int("steps", len(run.scan.Steps)))

	go run.execute(scanCtx)

	snapshot := run.snapshotScan()
	return &snapshot, nil
}

// Get returns the current state of a scan.
func (s *ScanService) Get(ctx context.Context, scanID string) (*domain.Scan, error) {
	run, err := s.run(scanID)
	if err != nil {
		return nil, err
	}
	snapshot := run.snapshotScan()
	return &snapshot, nil
}

// List returns scans matching the filter, newest first, along with the
// total match count before pagination.
func (s *ScanService) List(ctx context.Context, req api.ScanListRequest) ([]domain.Scan, int, error) {
	s.mu.RLock()
	matched := make([]domain.Scan, 0, len(s.runs))
	for _, run := range s.runs {
		scan := run.snapshotScan()
		if req.DatasetID != "" && scan.DatasetID != req.DatasetID {
			continue
		}
		if req.Status != "" && scan.Status != domain.ScanStatus(req.Status) {
			continue
		}
		matched = append(matched, scan)
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)

	page, size := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	lo := (page - 1) * size
	if lo >= total {
		return []domain.Scan{}, total, nil
	}
	hi := lo + size
	if hi > total {
		hi = total
	}
	return matched[lo:hi], total, nil
}

// Cancel requests cancellation of a running scan. Scans that already
// reached a terminal state return ErrScanFinished.
func (s *ScanService) Cancel(ctx context.Context, scanID string) error {
	run, err := s.run(scanID)
	if err != nil {
		return err
	}

	run.mu.Lock()
	terminal := run.scan.Status.IsTerminal()
	run.mu.Unlock()
	if terminal {
		return ErrScanFinished
	}

	run.cancel()
	infrastructure.RecordScanCancellation(ctx, s.metrics, scanID, "dataset", "user request")
	infrastructure.LoggerWithContext(ctx).Info("scan cancellation requested",
		slog.String("scan_id", scanID))
	return nil
}

// Summary returns the nullity summary a completed scan computed.
func (s *ScanService) Summary(ctx context.Context, scanID string) (*domain.ScanSummary, error) {
	run, err := s.run(scanID)
	if err != nil {
		return nil, err
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	if run.summary == nil {
		return nil, ErrScanNotFinished
	}
	summary := summaryToDomain(run.scan.DatasetID, run.scan.ID, *run.summary)
	return &summary, nil
}

// ActiveCount returns the number of scans that have not reached a
// terminal state.
func (s *ScanService) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := 0
	for _, run := range s.runs {
		run.mu.Lock()
		if !run.scan.Status.IsTerminal() {
			active++
		}
		run.mu.Unlock()
	}
	return active
}

func (s *ScanService) run(scanID string) (*scanRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[scanID]
	if !ok {
		return nil, apperrors.NewNotFoundError("scan")
	}
	return run, nil
}

// BatchScanResult is the outcome of profiling one file in a batch
// scan.
type BatchScanResult struct {
	Path    string           `json:"path"`
	Table   string           `json:"table,omitempty"`
	Summary *nullity.Summary `json:"summary,omitempty"`
	Err     error            `json:"-"`
}

// ScanFiles profiles a set of files concurrently, at most
// cfg.Scan.Workers at a time. Results come back in input order; a
// failed file carries its error without aborting the rest of the
// batch.
func (s *ScanService) ScanFiles(ctx context.Context, filePaths []string, opts dataload.Options) []BatchScanResult {
	batchID := uuid.NewString()
	logger := infrastructure.LoggerWithContext(ctx)
	logger.Info("batch scan started",
		slog.String("batch_id", batchID),
		slog.Int("files", len(filePaths)),
		slog.Int("workers", s.cfg.Scan.Workers))

	results := make([]BatchScanResult, len(filePaths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Scan.Workers)

	for i, path := range filePaths {
		g.Go(func() error {
			start := time.Now()
			result := s.scanFile(gctx, path, opts)
			results[i] = result

			infrastructure.RecordScanMetrics(gctx, s.metrics, batchID,
				filepath.Base(path), time.Since(start), result.Err == nil, result.Err)
			if result.Err != nil {
				logger.Error("batch scan item failed",
					slog.String("batch_id", batchID),
					slog.String("path", path),
					slog.String("error", result.Err.Error()))
				return nil
			}

			s.broadcastBatchProgress(batchID, path, result)
			logger.Info("batch scan item completed",
				slog.String("batch_id", batchID),
				slog.String("path", path),
				slog.Int("rows", result.Summary.Rows),
				slog.Int("missing_cells", result.Summary.MissingCells),
				slog.Duration("duration", time.Since(start)))
			return nil
		})
	}
	g.Wait()

	logger.Info("batch scan finished", slog.String("batch_id", batchID))
	return results
}

func (s *ScanService) scanFile(ctx context.Context, path string, opts dataload.Options) BatchScanResult {
	if err := ctx.Err(); err != nil {
		return BatchScanResult{Path: path, Err: err}
	}
	if len(opts.NAValues) == 0 {
		opts.NAValues = s.cfg.Sentinels.NullTokens
	}

	raw, err := dataload.LoadFile(path, opts)
	if err != nil {
		return BatchScanResult{Path: path, Err: err}
	}

	classifier, err := nullity.NewClassifier(s.datasets.defaultPolicy())
	if err != nil {
		return BatchScanResult{Path: path, Err: err}
	}
	tbl, err := classifier.ClassifyTable(raw)
	if err != nil {
		return BatchScanResult{Path: path, Err: err}
	}

	summary := nullity.Summarize(tbl)
	return BatchScanResult{Path: path, Table: tbl.Name(), Summary: &summary}
}

func (s *ScanService) broadcastBatchProgress(batchID, path string, result BatchScanResult) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(string(events.MessageTypeScanBatch), map[string]interface{}{
		"batch_id":      batchID,
		"path":          path,
		"table":         result.Table,
		"rows":          result.Summary.Rows,
		"missing_cells": result.Summary.MissingCells,
		"missing_ratio": result.Summary.MissingRatio,
	})
}

// buildSteps lays out the pipeline for a scan config. Classify and
// profile always run; mask and export join on request.
func buildSteps(cfg domain.ScanConfig) []domain.ScanStep {
	steps := []domain.ScanStep{
		{ID: domain.StepIDClassify, Name: domain.StepNameClassify, Status: domain.StepStatusPending},
		{ID: domain.StepIDProfile, Name: domain.StepNameProfile, Status: domain.StepStatusPending},
	}
	if cfg.ComputeMask {
		steps = append(steps, domain.ScanStep{ID: domain.StepIDMask, Name: domain.StepNameMask, Status: domain.StepStatusPending})
	}
	if cfg.ExportReport {
		steps = append(steps, domain.ScanStep{ID: domain.StepIDExport, Name: domain.StepNameExport, Status: domain.StepStatusPending})
	}
	for i := range steps {
		steps[i].Order = i
	}
	return steps
}

// scanPolicy builds the sentinel policy a scan classifies under. Empty
// sentinel lists are honored as given: only loader nulls and NaN
// payloads count as missing then.
func scanPolicy(cfg domain.ScanConfig) nullity.Policy {
	return nullity.Policy{
		StringSentinels: cfg.StringSentinels,
		NumberSentinels: cfg.NumberSentinels,
		CaseInsensitive: cfg.CaseInsensitive,
	}
}

// stepMessage is the human-readable progress line for a step
// snapshot.
func stepMessage(step domain.ScanStep) string {
	switch step.Status {
	case domain.StepStatusRunning:
		if step.State.CurrentColumn != "" {
			return fmt.Sprintf("column %s (%d/%d)",
				step.State.CurrentColumn, step.State.ColumnsProcessed, step.State.ColumnsTotal)
		}
		return "running"
	case domain.StepStatusCompleted:
		if step.Duration != nil {
			return fmt.Sprintf("completed in %s", step.Duration.Round(time.Millisecond))
		}
		return "completed"
	case domain.StepStatusFailed:
		return strings.TrimSpace("failed " + step.Error)
	case domain.StepStatusSkipped:
		return "skipped"
	default:
		return ""
	}
}
