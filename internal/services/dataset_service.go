package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tabscan/internal/config"
	"tabscan/internal/dataload"
	apperrors "tabscan/internal/errors"
	"tabscan/internal/exporter"
	"tabscan/internal/infrastructure"
	"tabscan/internal/nullity"
	"tabscan/internal/table"
	"tabscan/internal/validation"
	api "tabscan/pkg/contracts/api/v1"
	"tabscan/pkg/contracts/domain"
	"tabscan/pkg/contracts/events"
)

// SheetLoader fetches a spreadsheet range as a raw table.
type SheetLoader interface {
	LoadRange(ctx context.Context, spreadsheetID, readRange string, opts dataload.Options) (table.RawTable, error)
}

// PageFetcher renders a page in a headless browser and extracts a
// table from the result.
type PageFetcher interface {
	FetchTable(ctx context.Context, pageURL string, opts dataload.Options) (table.RawTable, error)
}

// datasetEntry is one registry slot: the wire metadata plus the data
// the metadata describes. raw is kept for datasets that came from a
// loader so a scan can re-classify under a different sentinel policy;
// reduced datasets carry no raw and re-classify from typed cells.
type datasetEntry struct {
	meta    domain.Dataset
	raw     table.RawTable
	hasRaw  bool
	tbl     *table.Table
	summary nullity.Summary
	mask    *nullity.NullityMask
}

// DatasetService owns the in-memory registry of loaded datasets and
// every operation over them: load, profile, drop, fill, export,
// delete. Reductions never mutate a registered table; they register
// the result as a new dataset pointing back at its parent.
type DatasetService struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	validator *validation.FileValidator

	hub     WebSocketHub
	metrics *infrastructure.BusinessMetrics
	monitor *infrastructure.ResourceMonitor
	sheets  SheetLoader
	fetcher PageFetcher

	mu      sync.RWMutex
	entries map[string]*datasetEntry
}

// NewDatasetService creates a new dataset service using the process
// paths.
func NewDatasetService(cfg *config.Config, logger *slog.Logger) (*DatasetService, error) {
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	return NewDatasetServiceWithPaths(cfg, paths, logger)
}

// NewDatasetServiceWithPaths creates a new dataset service with
// injected paths.
func NewDatasetServiceWithPaths(cfg *config.Config, paths *config.Paths, logger *slog.Logger) (*DatasetService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("DatasetService initialized with paths",
		slog.String("data_dir", paths.DataDir),
		slog.String("datasets_dir", paths.DatasetsDir),
		slog.String("exports_dir", paths.ExportsDir))

	return &DatasetService{
		cfg:       cfg,
		paths:     paths,
		logger:    logger,
		validator: validation.NewFileValidator(logger),
		entries:   make(map[string]*datasetEntry),
	}, nil
}

// WithHub attaches the broadcast hub for dataset lifecycle events.
func (s *DatasetService) WithHub(hub WebSocketHub) *DatasetService {
	s.hub = hub
	return s
}

// WithMetrics attaches the business metrics recorders.
func (s *DatasetService) WithMetrics(m *infrastructure.BusinessMetrics) *DatasetService {
	s.metrics = m
	return s
}

// WithMonitor attaches the resource monitor used to reclaim memory
// after unloads.
func (s *DatasetService) WithMonitor(m *infrastructure.ResourceMonitor) *DatasetService {
	s.monitor = m
	return s
}

// WithSheetLoader attaches the Google Sheets loader.
func (s *DatasetService) WithSheetLoader(l SheetLoader) *DatasetService {
	s.sheets = l
	return s
}

// WithPageFetcher attaches the headless page fetcher.
func (s *DatasetService) WithPageFetcher(f PageFetcher) *DatasetService {
	s.fetcher = f
	return s
}

// Load parses the requested source, classifies it under the default
// sentinel policy, and registers the result. The returned dataset is
// ready for profiling and reductions.
func (s *DatasetService) Load(ctx context.Context, req api.DatasetLoadRequest) (*domain.Dataset, error) {
	start := time.Now()
	logger := infrastructure.LoggerWithContext(ctx)

	opts, err := s.loadOptions(req)
	if err != nil {
		return nil, err
	}

	raw, sizeBytes, err := s.readSource(ctx, req, opts)
	if err != nil {
		infrastructure.RecordDatasetLoadMetrics(ctx, s.metrics, req.SourceType, 0, 0, time.Since(start), err)
		logger.Error("dataset load failed",
			slog.String("source_type", req.SourceType),
			slog.String("error", err.Error()))
		return nil, err
	}

	classifier, err := nullity.NewClassifier(s.defaultPolicy())
	if err != nil {
		return nil, err
	}
	tbl, err := classifier.ClassifyTable(raw)
	if err != nil {
		infrastructure.RecordDatasetLoadMetrics(ctx, s.metrics, req.SourceType, 0, 0, time.Since(start), err)
		return nil, err
	}

	meta := domain.NewDataset(datasetName(req.Name, tbl.Name()), sourceFromRequest(req))
	summary := nullity.Summarize(tbl)
	applyShape(&meta, tbl, summary)
	meta.SizeBytes = sizeBytes
	meta.Fingerprint = Fingerprint(tbl)
	meta.MarkReady()

	if err := domain.ValidateDataset(&meta); err != nil {
		return nil, apperrors.NewAppValidationError(err.Error())
	}

	entry := &datasetEntry{meta: meta, raw: raw, hasRaw: true, tbl: tbl, summary: summary}
	s.mu.Lock()
	s.entries[meta.ID] = entry
	s.mu.Unlock()

	infrastructure.RecordDatasetLoadMetrics(ctx, s.metrics, req.SourceType, int64(meta.Rows), sizeBytes, time.Since(start), nil)
	s.broadcastUpdate(meta, "loaded")

	logger.Info("dataset loaded",
		slog.String("dataset_id", meta.ID),
		slog.String("name", meta.Name),
		slog.String("source_type", req.SourceType),
		slog.Int("rows", meta.Rows),
		slog.Int("columns", meta.Columns),
		slog.Int("missing_cells", meta.MissingCells),
		slog.Duration("duration", time.Since(start)))

	return &meta, nil
}

// readSource dispatches to the loader selected by the request's source
// type and reports the source size for file-backed loads.
func (s *DatasetService) readSource(ctx context.Context, req api.DatasetLoadRequest, opts dataload.Options) (table.RawTable, int64, error) {
	switch domain.SourceType(req.SourceType) {
	case domain.SourceTypeCSV, domain.SourceTypeXLSX, domain.SourceTypeHTML:
		if req.Path == "" {
			return table.RawTable{}, 0, apperrors.NewAppValidationError(fmt.Sprintf("source type %s requires a path", req.SourceType))
		}
		if err := s.validator.ValidateFile(req.Path); err != nil {
			return table.RawTable{}, 0, apperrors.NewAppValidationError(err.Error())
		}
		raw, err := s.loadFile(domain.SourceType(req.SourceType), req.Path, opts)
		if err != nil {
			return table.RawTable{}, 0, err
		}
		var size int64
		if info, statErr := os.Stat(req.Path); statErr == nil {
			size = info.Size()
		}
		return raw, size, nil

	case domain.SourceTypeURL:
		if req.URL == "" {
			return table.RawTable{}, 0, apperrors.NewAppValidationError("source type url requires a url")
		}
		if s.fetcher == nil {
			return table.RawTable{}, 0, apperrors.NewConfigError("no page fetcher configured", nil)
		}
		raw, err := s.fetcher.FetchTable(ctx, req.URL, opts)
		return raw, 0, err

	case domain.SourceTypeSheets:
		if req.SpreadsheetID == "" || req.ReadRange == "" {
			return table.RawTable{}, 0, apperrors.NewAppValidationError("source type sheets requires spreadsheet_id and read_range")
		}
		if s.sheets == nil {
			return table.RawTable{}, 0, apperrors.NewConfigError("no sheets loader configured", nil)
		}
		raw, err := s.sheets.LoadRange(ctx, req.SpreadsheetID, req.ReadRange, opts)
		return raw, 0, err

	default:
		return table.RawTable{}, 0, apperrors.NewUnsupportedTypeError(fmt.Sprintf("unknown source type %q", req.SourceType))
	}
}

func (s *DatasetService) loadFile(sourceType domain.SourceType, path string, opts dataload.Options) (table.RawTable, error) {
	switch sourceType {
	case domain.SourceTypeCSV:
		return dataload.LoadCSV(path, opts)
	case domain.SourceTypeXLSX:
		return dataload.LoadXLSX(path, opts)
	default:
		return dataload.LoadHTMLFile(path, opts)
	}
}

// loadOptions translates the wire request into loader options, filling
// defaults from the configured sentinel tokens.
func (s *DatasetService) loadOptions(req api.DatasetLoadRequest) (dataload.Options, error) {
	opts := dataload.DefaultOptions()
	opts.Name = req.Name
	opts.Sheet = req.Sheet
	opts.TableIndex = req.TableIndex
	opts.LabelColumn = req.LabelColumn
	opts.MaxRows = req.MaxRows

	if req.Delimiter != "" {
		opts.Delimiter = []rune(req.Delimiter)[0]
	}
	if req.NAValues != nil {
		opts.NAValues = req.NAValues
	} else if len(s.cfg.Sentinels.NullTokens) > 0 {
		opts.NAValues = s.cfg.Sentinels.NullTokens
	}

	if len(req.TypeHints) > 0 {
		hints := make(map[string]table.DType, len(req.TypeHints))
		for name, text := range req.TypeHints {
			dtype, err := table.ParseDType(text)
			if err != nil {
				return dataload.Options{}, err
			}
			hints[name] = dtype
		}
		opts.TypeHints = hints
	}
	return opts, nil
}

// defaultPolicy builds the sentinel policy applied at load time from
// configuration.
func (s *DatasetService) defaultPolicy() nullity.Policy {
	return nullity.Policy{
		StringSentinels: s.cfg.Sentinels.StringSentinels,
		NumberSentinels: s.cfg.Sentinels.NumberSentinels,
		CaseInsensitive: s.cfg.Sentinels.CaseInsensitive,
	}
}

// Get returns the metadata of a registered dataset.
func (s *DatasetService) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	meta := entry.meta
	return &meta, nil
}

// Table returns the classified table of a registered dataset. The
// table is immutable; callers must not assume otherwise.
func (s *DatasetService) Table(ctx context.Context, id string) (*table.Table, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	return entry.tbl, nil
}

// List returns registered datasets matching the filter, newest first
// unless the request orders otherwise, along with the total match
// count before pagination.
func (s *DatasetService) List(ctx context.Context, req api.DatasetListRequest) ([]domain.Dataset, int, error) {
	s.mu.RLock()
	matched := make([]domain.Dataset, 0, len(s.entries))
	for _, entry := range s.entries {
		if req.Status != "" && entry.meta.Status != domain.DatasetStatus(req.Status) {
			continue
		}
		if req.Source != "" && entry.meta.Source.Type != domain.SourceType(req.Source) {
			continue
		}
		if req.NameContains != "" && !strings.Contains(strings.ToLower(entry.meta.Name), strings.ToLower(req.NameContains)) {
			continue
		}
		matched = append(matched, entry.meta)
	}
	s.mu.RUnlock()

	sortDatasets(matched, req.SortBy, req.Sort)
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
		return []domain.Dataset{}, total, nil
	}
	hi := lo + size
	if hi > total {
		hi = total
	}
	return matched[lo:hi], total, nil
}

func sortDatasets(datasets []domain.Dataset, sortBy, order string) {
	less := func(a, b domain.Dataset) bool { return a.CreatedAt.After(b.CreatedAt) }
	switch sortBy {
	case "name":
		less = func(a, b domain.Dataset) bool { return a.Name < b.Name }
	case "rows":
		less = func(a, b domain.Dataset) bool { return a.Rows < b.Rows }
	case "missing_cells":
		less = func(a, b domain.Dataset) bool { return a.MissingCells < b.MissingCells }
	}
	sort.SliceStable(datasets, func(i, j int) bool {
		if order == "desc" && sortBy != "" {
			return less(datasets[j], datasets[i])
		}
		return less(datasets[i], datasets[j])
	})
}

// Delete removes a dataset from the registry and nudges the runtime to
// return its memory.
func (s *DatasetService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	s.mu.Unlock()

	if !ok {
		return apperrors.NewNotFoundError("dataset")
	}

	if s.monitor != nil {
		s.monitor.ReclaimMemory(ctx)
	}
	s.broadcastUpdate(entry.meta, "deleted")

	infrastructure.LoggerWithContext(ctx).Info("dataset deleted",
		slog.String("dataset_id", id),
		slog.String("name", entry.meta.Name))
	return nil
}

// Profile returns the cached nullity summary of a dataset in wire
// form.
func (s *DatasetService) Profile(ctx context.Context, id string) (*domain.ScanSummary, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	summary := summaryToDomain(id, "", entry.summary)
	return &summary, nil
}

// Mask returns the boolean nullity mask of a dataset together with its
// row labels. The mask is computed on first use and cached.
func (s *DatasetService) Mask(ctx context.Context, id string) (nullity.NullityMask, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nullity.NullityMask{}, nil, apperrors.NewNotFoundError("dataset")
	}
	if entry.mask == nil {
		mask := nullity.ComputeMask(entry.tbl)
		entry.mask = &mask
	}
	return *entry.mask, entry.tbl.Labels(), nil
}

// Drop applies a row or column drop and registers the result as a new
// dataset. The source dataset is left untouched.
func (s *DatasetService) Drop(ctx context.Context, req api.DropRequest) (*domain.ReductionReport, *domain.Dataset, error) {
	start := time.Now()
	entry, err := s.entry(req.DatasetID)
	if err != nil {
		return nil, nil, err
	}

	opts, err := dropOptions(req)
	if err != nil {
		return nil, nil, err
	}

	result, err := nullity.Drop(entry.tbl, opts)
	if err != nil {
		return nil, nil, err
	}

	derived := s.registerDerived(entry, result, req.Name, "drop")
	report := &domain.ReductionReport{
		ID:              uuid.NewString(),
		DatasetID:       entry.meta.ID,
		ResultDatasetID: derived.ID,
		Kind:            domain.ReductionKindDrop,
		Axis:            opts.Axis.String(),
		RowsBefore:      entry.tbl.NumRows(),
		RowsAfter:       result.NumRows(),
		ColumnsBefore:   entry.tbl.NumCols(),
		ColumnsAfter:    result.NumCols(),
		DroppedColumns:  droppedColumns(entry.tbl, result),
		Duration:        time.Since(start),
		RequestedAt:     start.UTC(),
	}

	infrastructure.RecordReductionMetrics(ctx, s.metrics, entry.meta.ID, "drop",
		int64(report.RowsDropped()), int64(report.ColumnsDropped()), 0)

	infrastructure.LoggerWithContext(ctx).Info("drop applied",
		slog.String("dataset_id", entry.meta.ID),
		slog.String("result_id", derived.ID),
		slog.String("axis", report.Axis),
		slog.Int("rows_dropped", report.RowsDropped()),
		slog.Int("columns_dropped", report.ColumnsDropped()))

	return report, derived, nil
}

func dropOptions(req api.DropRequest) (nullity.DropOptions, error) {
	opts := nullity.DropOptions{Thresh: req.Thresh, Columns: req.Columns, Rows: req.Rows}

	if req.Axis != "" {
		axis, err := nullity.ParseAxis(req.Axis)
		if err != nil {
			return nullity.DropOptions{}, err
		}
		opts.Axis = axis
	}
	how, err := nullity.ParseHow(req.How)
	if err != nil {
		return nullity.DropOptions{}, err
	}
	opts.How = how
	return opts, nil
}

// droppedColumns names the columns of before missing from after.
func droppedColumns(before, after *table.Table) []string {
	if before.NumCols() == after.NumCols() {
		return nil
	}
	var dropped []string
	for _, name := range before.ColumnNames() {
		if _, ok := after.ColumnIndex(name); !ok {
			dropped = append(dropped, name)
		}
	}
	return dropped
}

// Fill applies the requested imputation and registers the result as a
// new dataset. The source dataset is left untouched.
func (s *DatasetService) Fill(ctx context.Context, req api.FillRequest) (*domain.ReductionReport, *domain.Dataset, error) {
	start := time.Now()
	entry, err := s.entry(req.DatasetID)
	if err != nil {
		return nil, nil, err
	}

	opts, err := fillOptions(entry.tbl, req)
	if err != nil {
		return nil, nil, err
	}

	result, err := nullity.Fill(entry.tbl, opts)
	if err != nil {
		return nil, nil, err
	}

	after := nullity.Summarize(result)
	derived := s.registerDerived(entry, result, req.Name, "fill")
	report := &domain.ReductionReport{
		ID:                uuid.NewString(),
		DatasetID:         entry.meta.ID,
		ResultDatasetID:   derived.ID,
		Kind:              domain.ReductionKindFill,
		Axis:              opts.Axis.String(),
		RowsBefore:        entry.tbl.NumRows(),
		RowsAfter:         result.NumRows(),
		ColumnsBefore:     entry.tbl.NumCols(),
		ColumnsAfter:      result.NumCols(),
		CellsFilled:       entry.summary.MissingCells - after.MissingCells,
		CellsStillMissing: after.MissingCells,
		Duration:          time.Since(start),
		RequestedAt:       start.UTC(),
	}

	infrastructure.RecordReductionMetrics(ctx, s.metrics, entry.meta.ID, "fill",
		0, 0, int64(report.CellsFilled))

	infrastructure.LoggerWithContext(ctx).Info("fill applied",
		slog.String("dataset_id", entry.meta.ID),
		slog.String("result_id", derived.ID),
		slog.Int("cells_filled", report.CellsFilled),
		slog.Int("cells_still_missing", report.CellsStillMissing))

	return report, derived, nil
}

// fillOptions translates the wire request into engine options. Constant
// payloads arrive as text: per-column constants parse against the
// column's dtype, the table-wide constant parses to its narrowest type
// and converts per column inside the engine.
func fillOptions(tbl *table.Table, req api.FillRequest) (nullity.FillOptions, error) {
	var opts nullity.FillOptions

	if req.Axis != "" {
		axis, err := nullity.ParseAxis(req.Axis)
		if err != nil {
			return nullity.FillOptions{}, err
		}
		opts.Axis = axis
	}

	if req.Strategy != "" {
		strat, err := parseStrategy(req.Strategy, req.Value, nil, tbl)
		if err != nil {
			return nullity.FillOptions{}, err
		}
		opts.Strategy = strat
	}

	if len(req.PerColumn) > 0 {
		opts.PerColumn = make(map[string]nullity.Strategy, len(req.PerColumn))
		for name, in := range req.PerColumn {
			col, ok := tbl.Column(name)
			if !ok {
				return nullity.FillOptions{}, apperrors.NewShapeError(fmt.Sprintf("strategy column %q does not exist", name))
			}
			dtype := col.DType()
			strat, err := parseStrategy(in.Strategy, in.Value, &dtype, tbl)
			if err != nil {
				return nullity.FillOptions{}, err
			}
			opts.PerColumn[name] = strat
		}
	}

	if opts.Strategy.Kind == nullity.FillUnspecified && len(opts.PerColumn) == 0 {
		return nullity.FillOptions{}, apperrors.NewAppValidationError("no fill strategy configured")
	}
	return opts, nil
}

func parseStrategy(name, value string, dtype *table.DType, tbl *table.Table) (nullity.Strategy, error) {
	kind, err := nullity.ParseStrategyKind(name)
	if err != nil {
		return nullity.Strategy{}, err
	}
	if kind != nullity.FillConstant {
		return nullity.Strategy{Kind: kind}, nil
	}
	if value == "" {
		return nullity.Strategy{}, apperrors.NewAppValidationError("constant fill requires a value")
	}
	if dtype != nil {
		v, err := dataload.ParseLiteral(value, *dtype)
		if err != nil {
			return nullity.Strategy{}, err
		}
		return nullity.Constant(v), nil
	}
	return nullity.Constant(dataload.InferLiteral(value)), nil
}

// registerDerived stores a reduction result as a new ready dataset
// pointing back at its parent.
func (s *DatasetService) registerDerived(parent *datasetEntry, result *table.Table, name, suffix string) *domain.Dataset {
	if name == "" {
		name = parent.meta.Name + "_" + suffix
	}

	meta := domain.NewDataset(name, parent.meta.Source)
	meta.ParentID = parent.meta.ID
	summary := nullity.Summarize(result)
	applyShape(&meta, result, summary)
	meta.Fingerprint = Fingerprint(result)
	meta.MarkReady()

	entry := &datasetEntry{meta: meta, tbl: result, summary: summary}
	s.mu.Lock()
	s.entries[meta.ID] = entry
	s.mu.Unlock()

	s.broadcastUpdate(meta, "reduced")
	return &meta
}

// Export writes a dataset or one of its scan artifacts to disk and
// returns the export record.
func (s *DatasetService) Export(ctx context.Context, req api.ExportRequest) (*domain.ExportRecord, error) {
	start := time.Now()
	entry, err := s.entry(req.DatasetID)
	if err != nil {
		return nil, err
	}

	format := domain.ExportFormat(req.Format)
	if !format.IsValid() {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("unknown export format %q", req.Format))
	}
	target := domain.ExportTarget(req.Target)
	if target == "" {
		target = defaultTarget(format)
	}

	path := req.Path
	if path == "" {
		ext := strings.TrimPrefix(format.Extension(), ".")
		path = s.paths.GetDatasetExportPath(entry.meta.ID, string(target), ext)
	}

	if err := s.writeExport(entry, format, target, path); err != nil {
		infrastructure.RecordExportMetrics(ctx, s.metrics, string(format), 0, time.Since(start), err)
		return nil, err
	}

	var size int64
	if info, statErr := os.Stat(path); statErr == nil {
		size = info.Size()
	}

	record := &domain.ExportRecord{
		ID:          uuid.NewString(),
		DatasetID:   entry.meta.ID,
		Format:      format,
		Target:      target,
		Path:        path,
		SizeBytes:   size,
		Rows:        entry.meta.Rows,
		Columns:     entry.meta.Columns,
		GeneratedAt: start.UTC(),
	}

	infrastructure.RecordExportMetrics(ctx, s.metrics, string(format), size, time.Since(start), nil)
	infrastructure.LoggerWithContext(ctx).Info("dataset exported",
		slog.String("dataset_id", entry.meta.ID),
		slog.String("format", string(format)),
		slog.String("target", string(target)),
		slog.String("path", path),
		slog.Int64("bytes", size))

	return record, nil
}

func defaultTarget(format domain.ExportFormat) domain.ExportTarget {
	switch format {
	case domain.ExportFormatXLSX:
		return domain.ExportTargetReport
	case domain.ExportFormatJSON:
		return domain.ExportTargetSummary
	default:
		return domain.ExportTargetTable
	}
}

func (s *DatasetService) writeExport(entry *datasetEntry, format domain.ExportFormat, target domain.ExportTarget, path string) error {
	reports := exporter.NewReportExporter(s.paths)

	switch format {
	case domain.ExportFormatCSV:
		switch target {
		case domain.ExportTargetTable:
			return reports.ExportTableCSV(entry.tbl, path)
		case domain.ExportTargetSummary, domain.ExportTargetReport:
			return reports.ExportSummaryCSV(entry.summary, path)
		case domain.ExportTargetMask:
			mask := s.maskFor(entry)
			return reports.ExportMaskCSV(mask, entry.tbl.Labels(), path)
		}

	case domain.ExportFormatXLSX:
		switch target {
		case domain.ExportTargetTable, domain.ExportTargetReport:
			return reports.ExportWorkbook(entry.tbl, entry.summary, s.maskFor(entry), path)
		}

	case domain.ExportFormatArrow:
		if target == domain.ExportTargetTable {
			return exporter.NewArrowExporter(s.paths).ExportFile(entry.tbl, path)
		}

	case domain.ExportFormatJSON:
		switch target {
		case domain.ExportTargetSummary, domain.ExportTargetReport:
			return reports.ExportSummaryJSON(entry.summary, path)
		}
	}

	return apperrors.NewAppValidationError(fmt.Sprintf("format %s cannot export target %s", format, target))
}

// maskFor returns the cached mask for an entry, computing it under the
// registry lock on first use.
func (s *DatasetService) maskFor(entry *datasetEntry) nullity.NullityMask {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.mask == nil {
		mask := nullity.ComputeMask(entry.tbl)
		entry.mask = &mask
	}
	return *entry.mask
}

// Count returns the number of registered datasets.
func (s *DatasetService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *DatasetService) entry(id string) (*datasetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("dataset")
	}
	return entry, nil
}

func (s *DatasetService) broadcastUpdate(meta domain.Dataset, action string) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(string(events.MessageTypeDatasetUpdate), events.DatasetUpdate{
		DatasetID:    meta.ID,
		Name:         meta.Name,
		Action:       action,
		Rows:         meta.Rows,
		Columns:      meta.Columns,
		MissingCells: meta.MissingCells,
		SourceID:     meta.ParentID,
	})
}

// applyShape copies table shape and summary facts onto the metadata.
func applyShape(meta *domain.Dataset, tbl *table.Table, summary nullity.Summary) {
	meta.Rows = tbl.NumRows()
	meta.Columns = tbl.NumCols()
	meta.Labeled = tbl.HasLabels()
	meta.MissingCells = summary.MissingCells

	dtypes := make(map[string]string, tbl.NumCols())
	for _, col := range tbl.Columns() {
		dtypes[col.Name()] = col.DType().String()
	}
	meta.DTypes = dtypes
}

// summaryToDomain lifts an engine summary into its wire shape.
func summaryToDomain(datasetID, scanID string, sum nullity.Summary) domain.ScanSummary {
	profiles := make([]domain.ColumnProfile, len(sum.Profiles))
	for i, p := range sum.Profiles {
		profiles[i] = domain.ColumnProfile{
			Name:            p.Name,
			DType:           p.DType,
			Rows:            p.Rows,
			MissingCount:    p.MissingCount,
			MissingRatio:    p.MissingRatio,
			FirstMissingRow: p.FirstMissingRow,
		}
	}
	return domain.ScanSummary{
		DatasetID:    datasetID,
		ScanID:       scanID,
		Table:        sum.Table,
		Rows:         sum.Rows,
		Columns:      sum.Columns,
		TotalCells:   sum.TotalCells,
		MissingCells: sum.MissingCells,
		MissingRatio: sum.MissingRatio,
		Profiles:     profiles,
		GeneratedAt:  time.Now().UTC(),
	}
}

func datasetName(requested, parsed string) string {
	if requested != "" {
		return requested
	}
	return parsed
}

func sourceFromRequest(req api.DatasetLoadRequest) domain.DatasetSource {
	return domain.DatasetSource{
		Type:          domain.SourceType(req.SourceType),
		Path:          req.Path,
		URL:           req.URL,
		SpreadsheetID: req.SpreadsheetID,
		ReadRange:     req.ReadRange,
		Sheet:         req.Sheet,
	}
}
