package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "tabscan"
	ServiceVersion = "v1.0.0"
	MeterName      = "tabscan"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
	PrometheusPort string
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		TraceExporter:  "stdout",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0, // Sample all traces in development
		PrometheusPort: "9090",
	}
}

// InitializeOTel initializes tracing and metrics for the service
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger: logger,
	}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	// Set up global propagators for trace context
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "OpenTelemetry initialization complete",
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
		)
	case "none":
		// No exporter - tracing disabled
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))

	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics sets up OpenTelemetry metrics
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		// Each provider gets its own registry so repeated
		// initialization never collides on the default registerer.
		registry := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

		otel.SetMeterProvider(mp)

	case "none":
		// No exporter - metrics disabled
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))

	return nil
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	// HTTP metrics
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	// Dataset metrics
	datasetLoadsTotal, err := meter.Int64Counter(
		"dataset_loads_total",
		metric.WithDescription("Total number of dataset load attempts"),
	)
	if err != nil {
		return nil, err
	}

	datasetLoadDuration, err := meter.Float64Histogram(
		"dataset_load_duration_seconds",
		metric.WithDescription("Dataset load duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	datasetRowsLoaded, err := meter.Int64Counter(
		"dataset_rows_loaded_total",
		metric.WithDescription("Total number of rows loaded into datasets"),
	)
	if err != nil {
		return nil, err
	}

	datasetBytesRead, err := meter.Int64Counter(
		"dataset_bytes_read_total",
		metric.WithDescription("Total bytes read while loading datasets"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	datasetsRegistered, err := meter.Int64UpDownCounter(
		"datasets_registered",
		metric.WithDescription("Number of datasets currently held in memory"),
	)
	if err != nil {
		return nil, err
	}

	// Scan metrics
	scanExecutionsTotal, err := meter.Int64Counter(
		"scan_executions_total",
		metric.WithDescription("Total number of scan executions"),
	)
	if err != nil {
		return nil, err
	}

	scanDuration, err := meter.Float64Histogram(
		"scan_duration_seconds",
		metric.WithDescription("Scan execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	scanStepsTotal, err := meter.Int64Counter(
		"scan_steps_total",
		metric.WithDescription("Total number of scan steps executed"),
	)
	if err != nil {
		return nil, err
	}

	scanStepDuration, err := meter.Float64Histogram(
		"scan_step_duration_seconds",
		metric.WithDescription("Scan step execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeScans, err := meter.Int64UpDownCounter(
		"scan_active_scans",
		metric.WithDescription("Number of scans currently running"),
	)
	if err != nil {
		return nil, err
	}

	scanErrors, err := meter.Int64Counter(
		"scan_errors_total",
		metric.WithDescription("Total number of scan errors"),
	)
	if err != nil {
		return nil, err
	}

	scanCancellations, err := meter.Int64Counter(
		"scan_cancellations_total",
		metric.WithDescription("Total number of scan cancellations"),
	)
	if err != nil {
		return nil, err
	}

	cellsClassified, err := meter.Int64Counter(
		"scan_cells_classified_total",
		metric.WithDescription("Total number of cells classified by scans"),
	)
	if err != nil {
		return nil, err
	}

	missingCellsFound, err := meter.Int64Counter(
		"scan_missing_cells_total",
		metric.WithDescription("Total number of missing cells found by scans"),
	)
	if err != nil {
		return nil, err
	}

	// Reduction metrics
	rowsDropped, err := meter.Int64Counter(
		"reduction_rows_dropped_total",
		metric.WithDescription("Total number of rows removed by drop operations"),
	)
	if err != nil {
		return nil, err
	}

	columnsDropped, err := meter.Int64Counter(
		"reduction_columns_dropped_total",
		metric.WithDescription("Total number of columns removed by drop operations"),
	)
	if err != nil {
		return nil, err
	}

	cellsFilled, err := meter.Int64Counter(
		"reduction_cells_filled_total",
		metric.WithDescription("Total number of cells resolved by fill operations"),
	)
	if err != nil {
		return nil, err
	}

	// Export metrics
	exportsTotal, err := meter.Int64Counter(
		"export_operations_total",
		metric.WithDescription("Total number of export operations"),
	)
	if err != nil {
		return nil, err
	}

	exportDuration, err := meter.Float64Histogram(
		"export_duration_seconds",
		metric.WithDescription("Export operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	exportBytesWritten, err := meter.Int64Counter(
		"export_bytes_written_total",
		metric.WithDescription("Total bytes written by export operations"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	// System metrics
	systemErrors, err := meter.Int64Counter(
		"system_errors_total",
		metric.WithDescription("Total number of system errors"),
	)
	if err != nil {
		return nil, err
	}

	systemUptime, err := meter.Float64UpDownCounter(
		"system_uptime_seconds",
		metric.WithDescription("System uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		HTTPActiveRequests:  httpActiveRequests,

		DatasetLoadsTotal:   datasetLoadsTotal,
		DatasetLoadDuration: datasetLoadDuration,
		DatasetRowsLoaded:   datasetRowsLoaded,
		DatasetBytesRead:    datasetBytesRead,
		DatasetsRegistered:  datasetsRegistered,

		ScanExecutionsTotal: scanExecutionsTotal,
		ScanDuration:        scanDuration,
		ScanStepsTotal:      scanStepsTotal,
		ScanStepDuration:    scanStepDuration,
		ActiveScans:         activeScans,
		ScanErrors:          scanErrors,
		ScanCancellations:   scanCancellations,
		CellsClassified:     cellsClassified,
		MissingCellsFound:   missingCellsFound,

		RowsDropped:    rowsDropped,
		ColumnsDropped: columnsDropped,
		CellsFilled:    cellsFilled,

		ExportsTotal:       exportsTotal,
		ExportDuration:     exportDuration,
		ExportBytesWritten: exportBytesWritten,

		SystemErrors: systemErrors,
		SystemUptime: systemUptime,
	}, nil
}

// BusinessMetrics holds all application-specific metrics
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Dataset metrics
	DatasetLoadsTotal   metric.Int64Counter
	DatasetLoadDuration metric.Float64Histogram
	DatasetRowsLoaded   metric.Int64Counter
	DatasetBytesRead    metric.Int64Counter
	DatasetsRegistered  metric.Int64UpDownCounter

	// Scan metrics
	ScanExecutionsTotal metric.Int64Counter
	ScanDuration        metric.Float64Histogram
	ScanStepsTotal      metric.Int64Counter
	ScanStepDuration    metric.Float64Histogram
	ActiveScans         metric.Int64UpDownCounter
	ScanErrors          metric.Int64Counter
	ScanCancellations   metric.Int64Counter
	CellsClassified     metric.Int64Counter
	MissingCellsFound   metric.Int64Counter

	// Reduction metrics
	RowsDropped    metric.Int64Counter
	ColumnsDropped metric.Int64Counter
	CellsFilled    metric.Int64Counter

	// Export metrics
	ExportsTotal       metric.Int64Counter
	ExportDuration     metric.Float64Histogram
	ExportBytesWritten metric.Int64Counter

	// System metrics
	SystemErrors metric.Int64Counter
	SystemUptime metric.Float64UpDownCounter
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// SpanFromContext returns the current span from context
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}

	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}

// RecordScanMetrics records metrics for a completed scan
func RecordScanMetrics(ctx context.Context, metrics *BusinessMetrics, scanID, datasetID string, duration time.Duration, success bool, err error) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("scan.id", scanID),
		attribute.String("dataset.id", datasetID),
	}

	metrics.ScanExecutionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	statusAttr := attribute.String("status", "success")
	if !success {
		statusAttr = attribute.String("status", "failure")
	}
	durationAttrs := append(attrs, statusAttr)
	metrics.ScanDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(durationAttrs...))

	if err != nil {
		errorAttrs := append(attrs, attribute.String("error.type", fmt.Sprintf("%T", err)))
		metrics.ScanErrors.Add(ctx, 1, metric.WithAttributes(errorAttrs...))
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("scan.metrics_recorded",
			trace.WithAttributes(
				attribute.String("scan.id", scanID),
				attribute.Bool("success", success),
				attribute.Float64("duration_seconds", duration.Seconds()),
			),
		)
	}
}

// RecordScanStepMetrics records metrics for one step of a scan
func RecordScanStepMetrics(ctx context.Context, metrics *BusinessMetrics, scanID, stepID, stepType string, duration time.Duration, success bool) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("scan.id", scanID),
		attribute.String("step.id", stepID),
		attribute.String("step.type", stepType),
	}

	metrics.ScanStepsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	statusAttr := attribute.String("status", "success")
	if !success {
		statusAttr = attribute.String("status", "failure")
	}
	durationAttrs := append(attrs, statusAttr)
	metrics.ScanStepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(durationAttrs...))
}

// RecordActiveScanChange records changes in the running scan count
func RecordActiveScanChange(ctx context.Context, metrics *BusinessMetrics, delta int64, scanType string) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("scan.type", scanType),
	}

	metrics.ActiveScans.Add(ctx, delta, metric.WithAttributes(attrs...))
}

// RecordScanCancellation records a scan cancellation
func RecordScanCancellation(ctx context.Context, metrics *BusinessMetrics, scanID, scanType, reason string) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("scan.id", scanID),
		attribute.String("scan.type", scanType),
		attribute.String("reason", reason),
	}

	metrics.ScanCancellations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDatasetLoadMetrics records metrics for a dataset load attempt
func RecordDatasetLoadMetrics(ctx context.Context, metrics *BusinessMetrics, source string, rows, bytes int64, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	statusAttr := attribute.String("status", "success")
	if err != nil {
		statusAttr = attribute.String("status", "failure")
	}
	attrs := []attribute.KeyValue{
		attribute.String("source", source),
		statusAttr,
	}

	metrics.DatasetLoadsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.DatasetLoadDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if err == nil {
		sourceAttr := metric.WithAttributes(attribute.String("source", source))
		metrics.DatasetRowsLoaded.Add(ctx, rows, sourceAttr)
		metrics.DatasetBytesRead.Add(ctx, bytes, sourceAttr)
	}
}

// RecordReductionMetrics records the effect of a drop or fill operation
func RecordReductionMetrics(ctx context.Context, metrics *BusinessMetrics, datasetID, operation string, rowsDropped, columnsDropped, cellsFilled int64) {
	if metrics == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("dataset.id", datasetID),
		attribute.String("operation", operation),
	)

	if rowsDropped > 0 {
		metrics.RowsDropped.Add(ctx, rowsDropped, attrs)
	}
	if columnsDropped > 0 {
		metrics.ColumnsDropped.Add(ctx, columnsDropped, attrs)
	}
	if cellsFilled > 0 {
		metrics.CellsFilled.Add(ctx, cellsFilled, attrs)
	}
}

// RecordExportMetrics records metrics for an export operation
func RecordExportMetrics(ctx context.Context, metrics *BusinessMetrics, format string, bytes int64, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	statusAttr := attribute.String("status", "success")
	if err != nil {
		statusAttr = attribute.String("status", "failure")
	}
	attrs := []attribute.KeyValue{
		attribute.String("format", format),
		statusAttr,
	}

	metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.ExportDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if err == nil && bytes > 0 {
		metrics.ExportBytesWritten.Add(ctx, bytes, metric.WithAttributes(attribute.String("format", format)))
	}
}
