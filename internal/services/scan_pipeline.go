package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "tabscan/internal/errors"
	"tabscan/internal/exporter"
	"tabscan/internal/infrastructure"
	"tabscan/internal/nullity"
	"tabscan/internal/table"
	"tabscan/pkg/contracts/domain"
	"tabscan/pkg/contracts/events"
)

// scanRun is the live state of one scan: the wire-visible Scan plus
// the working table and its derived artifacts. All mutation goes
// through transition so every change produces exactly one snapshot on
// the hub.
type scanRun struct {
	svc    *ScanService
	entry  *datasetEntry
	cancel context.CancelFunc

	mu      sync.Mutex
	scan    domain.Scan
	tbl     *table.Table
	summary *nullity.Summary
	mask    *nullity.NullityMask
}

// execute runs the step pipeline to completion. A failed step fails
// the scan and skips the remainder; context cancellation marks it
// cancelled instead.
func (r *scanRun) execute(ctx context.Context) {
	defer r.cancel()
	start := time.Now()

	r.transition(func(s *domain.Scan) {
		now := time.Now().UTC()
		s.Status = domain.ScanStatusRunning
		s.StartedAt = &now
	})

	steps := []struct {
		id string
		fn func(context.Context) error
	}{
		{domain.StepIDClassify, r.stepClassify},
		{domain.StepIDProfile, r.stepProfile},
		{domain.StepIDMask, r.stepMask},
		{domain.StepIDExport, r.stepExport},
	}

	var failure error
	for _, step := range steps {
		if !r.hasStep(step.id) {
			continue
		}
		if err := ctx.Err(); err != nil {
			failure = err
			break
		}
		if err := r.runStep(ctx, step.id, step.fn); err != nil {
			failure = err
			break
		}
	}

	r.finish(ctx, time.Since(start), failure)
}

func (r *scanRun) runStep(ctx context.Context, id string, fn func(context.Context) error) error {
	stepStart := time.Now()
	r.transition(func(s *domain.Scan) {
		step := findStep(s, id)
		now := time.Now().UTC()
		step.Status = domain.StepStatusRunning
		step.StartedAt = &now
	})

	err := fn(ctx)
	duration := time.Since(stepStart)
	infrastructure.RecordScanStepMetrics(ctx, r.svc.metrics, r.scanID(), id, "scan", duration, err == nil)

	r.transition(func(s *domain.Scan) {
		step := findStep(s, id)
		now := time.Now().UTC()
		step.CompletedAt = &now
		step.Duration = &duration
		if err != nil {
			step.Status = domain.StepStatusFailed
			step.Error = err.Error()
			step.State.LastError = err.Error()
			return
		}
		step.Status = domain.StepStatusCompleted
		step.State.Progress = 100
	})
	return err
}

// finish settles the terminal state: remaining steps become skipped,
// the metrics block is filled in, and the final snapshot goes out.
func (r *scanRun) finish(ctx context.Context, total time.Duration, failure error) {
	cancelled := failure != nil && ctx.Err() == context.Canceled

	r.transition(func(s *domain.Scan) {
		now := time.Now().UTC()
		s.CompletedAt = &now
		s.Metrics.TotalDuration = total

		for i := range s.Steps {
			switch s.Steps[i].Status {
			case domain.StepStatusCompleted:
				s.Metrics.StepsCompleted++
			case domain.StepStatusFailed:
				s.Metrics.StepsFailed++
			default:
				s.Steps[i].Status = domain.StepStatusSkipped
				s.Metrics.StepsSkipped++
			}
		}

		switch {
		case cancelled:
			s.Status = domain.ScanStatusCancelled
			s.Error = "scan cancelled"
		case failure != nil:
			s.Status = domain.ScanStatusFailed
			s.Error = failure.Error()
		default:
			s.Status = domain.ScanStatusCompleted
		}
	})

	infrastructure.RecordActiveScanChange(ctx, r.svc.metrics, -1, "dataset")
	infrastructure.RecordScanMetrics(ctx, r.svc.metrics, r.scanID(), r.datasetID(), total, failure == nil, failure)

	logger := infrastructure.LoggerWithContext(ctx)
	if failure != nil {
		logger.Error("scan finished with error",
			slog.String("scan_id", r.scanID()),
			slog.String("dataset_id", r.datasetID()),
			slog.Bool("cancelled", cancelled),
			slog.Duration("duration", total),
			slog.String("error", failure.Error()))
		return
	}
	logger.Info("scan completed",
		slog.String("scan_id", r.scanID()),
		slog.String("dataset_id", r.datasetID()),
		slog.Duration("duration", total))
}

// stepClassify rebuilds the classified table under the scan's own
// sentinel policy. Datasets loaded from a source re-classify their raw
// cells; reduced datasets carry no raw form, so their typed cells pass
// through the classifier instead, with missing cells staying missing.
func (r *scanRun) stepClassify(ctx context.Context) error {
	classifier, err := nullity.NewClassifier(scanPolicy(r.config()))
	if err != nil {
		return err
	}

	var (
		name    string
		labels  []string
		columns []table.Column
	)

	if r.entry.hasRaw {
		raw := r.entry.raw
		name, labels = raw.Name, raw.Labels
		total := int64(len(raw.Columns))
		columns = make([]table.Column, 0, len(raw.Columns))

		for ci, rawCol := range raw.Columns {
			if err := ctx.Err(); err != nil {
				return err
			}
			cells := make([]table.Cell, len(rawCol.Cells))
			for i, rc := range rawCol.Cells {
				if rc.Null {
					cells[i] = table.Missing()
					continue
				}
				cell, err := classifier.Classify(rc.Value, rawCol.DType)
				if err != nil {
					return fmt.Errorf("classify column %q: %w", rawCol.Name, err)
				}
				cells[i] = cell
			}
			col, err := table.NewColumn(rawCol.Name, rawCol.DType, cells)
			if err != nil {
				return fmt.Errorf("build column %q: %w", rawCol.Name, err)
			}
			columns = append(columns, col)
			r.stepProgress(domain.StepIDClassify, rawCol.Name, int64(ci+1), total)
		}
	} else {
		src := r.entry.tbl
		name = src.Name()
		if src.HasLabels() {
			labels = src.Labels()
		}
		total := int64(src.NumCols())
		columns = make([]table.Column, 0, src.NumCols())

		for ci, srcCol := range src.Columns() {
			if err := ctx.Err(); err != nil {
				return err
			}
			cells := make([]table.Cell, srcCol.Len())
			for i := 0; i < srcCol.Len(); i++ {
				cell := srcCol.Cell(i)
				if cell.IsMissing() {
					cells[i] = table.Missing()
					continue
				}
				classified, err := classifier.Classify(cell.MustValue(), srcCol.DType())
				if err != nil {
					return fmt.Errorf("classify column %q: %w", srcCol.Name(), err)
				}
				cells[i] = classified
			}
			col, err := table.NewColumn(srcCol.Name(), srcCol.DType(), cells)
			if err != nil {
				return fmt.Errorf("build column %q: %w", srcCol.Name(), err)
			}
			columns = append(columns, col)
			r.stepProgress(domain.StepIDClassify, srcCol.Name(), int64(ci+1), total)
		}
	}

	var opts []table.Option
	if labels != nil {
		opts = append(opts, table.WithLabels(labels))
	}
	tbl, err := table.New(name, columns, opts...)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.tbl = tbl
	r.mu.Unlock()
	return nil
}

func (r *scanRun) stepProfile(ctx context.Context) error {
	tbl := r.table()
	if tbl == nil {
		return apperrors.NewInternalAppError("profile step ran before classification", nil)
	}
	summary := nullity.Summarize(tbl)

	r.mu.Lock()
	r.summary = &summary
	r.mu.Unlock()

	r.transition(func(s *domain.Scan) {
		s.Metrics.CellsScanned = int64(summary.TotalCells)
		s.Metrics.MissingCells = int64(summary.MissingCells)
		s.Metrics.MissingRatio = summary.MissingRatio
	})
	return nil
}

func (r *scanRun) stepMask(ctx context.Context) error {
	tbl := r.table()
	if tbl == nil {
		return apperrors.NewInternalAppError("mask step ran before classification", nil)
	}
	mask := nullity.ComputeMask(tbl)

	r.mu.Lock()
	r.mask = &mask
	r.mu.Unlock()
	return nil
}

func (r *scanRun) stepExport(ctx context.Context) error {
	r.mu.Lock()
	summary := r.summary
	created := r.scan.CreatedAt
	r.mu.Unlock()
	if summary == nil {
		return apperrors.NewInternalAppError("export step ran before profiling", nil)
	}

	reports := exporter.NewReportExporter(r.svc.paths)
	if err := reports.ExportSummaryCSV(*summary, r.svc.paths.GetScanReportPath(created)); err != nil {
		return err
	}
	return reports.ExportSummaryJSON(*summary, r.svc.paths.GetSummaryJSONPath())
}

// transition applies a mutation under the run lock and broadcasts the
// resulting snapshot.
func (r *scanRun) transition(mutate func(*domain.Scan)) {
	r.mu.Lock()
	mutate(&r.scan)
	snapshot := snapshotEvent(&r.scan)
	r.mu.Unlock()

	if r.svc.hub != nil {
		r.svc.hub.Broadcast(string(events.MessageTypeScanSnapshot), snapshot)
	}
}

// stepProgress publishes column-level progress for a running step.
func (r *scanRun) stepProgress(stepID, column string, processed, total int64) {
	r.transition(func(s *domain.Scan) {
		step := findStep(s, stepID)
		step.State.CurrentColumn = column
		step.State.ColumnsProcessed = processed
		step.State.ColumnsTotal = total
		if total > 0 {
			step.State.Progress = float64(processed) / float64(total) * 100
		}
	})
}

func (r *scanRun) hasStep(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return findStep(&r.scan, id) != nil
}

func (r *scanRun) config() domain.ScanConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scan.Config
}

func (r *scanRun) scanID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scan.ID
}

func (r *scanRun) datasetID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scan.DatasetID
}

func (r *scanRun) table() *table.Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tbl
}

// snapshotScan returns a copy of the wire-visible scan safe to hand
// out after the lock drops.
func (r *scanRun) snapshotScan() domain.Scan {
	r.mu.Lock()
	defer r.mu.Unlock()
	scan := r.scan
	scan.Steps = append([]domain.ScanStep(nil), r.scan.Steps...)
	return scan
}

func findStep(s *domain.Scan, id string) *domain.ScanStep {
	for i := range s.Steps {
		if s.Steps[i].ID == id {
			return &s.Steps[i]
		}
	}
	return nil
}

// snapshotEvent flattens the scan into the full snapshot broadcast on
// every change. Clients render snapshots as-is; they never stitch
// deltas.
func snapshotEvent(s *domain.Scan) events.ScanSnapshot {
	snap := events.ScanSnapshot{
		ScanID:      s.ID,
		DatasetID:   s.DatasetID,
		Status:      string(s.Status),
		StartedAt:   s.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
		CompletedAt: s.CompletedAt,
		Error:       s.Error,
		Steps:       make([]events.StepSnapshot, len(s.Steps)),
	}
	if s.StartedAt != nil {
		snap.StartedAt = *s.StartedAt
	}

	var progressSum float64
	for i := range s.Steps {
		step := &s.Steps[i]
		progressSum += step.State.Progress

		stepSnap := events.StepSnapshot{
			ID:       step.ID,
			Name:     step.Name,
			Status:   string(step.Status),
			Progress: int(step.State.Progress),
			Message:  stepMessage(*step),
			Error:    step.Error,
		}
		if step.State.ColumnsTotal > 0 {
			stepSnap.Metadata = map[string]interface{}{
				"columns_processed": step.State.ColumnsProcessed,
				"columns_total":     step.State.ColumnsTotal,
			}
		}
		snap.Steps[i] = stepSnap

		if step.Status == domain.StepStatusRunning {
			snap.CurrentStep = step.Name
		}
	}
	if len(s.Steps) > 0 {
		snap.Progress = int(progressSum / float64(len(s.Steps)))
	}
	if s.Status == domain.ScanStatusCompleted {
		snap.Progress = 100
	}
	return snap
}
