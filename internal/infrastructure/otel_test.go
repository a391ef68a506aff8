package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestOTelInitialization covers the full prometheus-backed setup. Each
// call builds its own prometheus registry, so repeated initialization in
// one process never collides at gather time.
func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, testLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)

	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)

	assert.NotNil(t, providers.PrometheusHTTP)

	// Scrape the metrics endpoint while the provider is live
	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = providers.Shutdown(ctx)
	assert.NoError(t, err)
}

// TestTraceCorrelation tests trace ID correlation
func TestTraceCorrelation(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	tracer := tp.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "test-scan")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)

	expectedTraceID := span.SpanContext().TraceID().String()
	assert.Equal(t, expectedTraceID, traceID)

	ctx = WithTraceID(ctx, traceID)
	retrievedTraceID := GetTraceID(ctx)
	assert.Equal(t, traceID, retrievedTraceID)
}

// TestBusinessMetrics tests business metrics creation
func TestBusinessMetrics(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	defer mp.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)
	require.NotNil(t, metrics)

	// HTTP metrics
	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.NotNil(t, metrics.HTTPRequestDuration)
	assert.NotNil(t, metrics.HTTPActiveRequests)

	// Dataset metrics
	assert.NotNil(t, metrics.DatasetLoadsTotal)
	assert.NotNil(t, metrics.DatasetLoadDuration)
	assert.NotNil(t, metrics.DatasetRowsLoaded)
	assert.NotNil(t, metrics.DatasetBytesRead)
	assert.NotNil(t, metrics.DatasetsRegistered)

	// Scan metrics
	assert.NotNil(t, metrics.ScanExecutionsTotal)
	assert.NotNil(t, metrics.ScanDuration)
	assert.NotNil(t, metrics.ScanStepsTotal)
	assert.NotNil(t, metrics.ActiveScans)
	assert.NotNil(t, metrics.CellsClassified)
	assert.NotNil(t, metrics.MissingCellsFound)

	// Reduction and export metrics
	assert.NotNil(t, metrics.RowsDropped)
	assert.NotNil(t, metrics.ColumnsDropped)
	assert.NotNil(t, metrics.CellsFilled)
	assert.NotNil(t, metrics.ExportsTotal)
	assert.NotNil(t, metrics.ExportBytesWritten)

	// System metrics
	assert.NotNil(t, metrics.SystemErrors)
	assert.NotNil(t, metrics.SystemUptime)
}

// TestRecordingHelpers exercises the nil guards and attribute paths
func TestRecordingHelpers(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	defer mp.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()

	// All helpers must tolerate a nil metrics struct
	RecordScanMetrics(ctx, nil, "s1", "d1", time.Second, true, nil)
	RecordScanStepMetrics(ctx, nil, "s1", "step1", "classify", time.Second, true)
	RecordActiveScanChange(ctx, nil, 1, "full")
	RecordScanCancellation(ctx, nil, "s1", "full", "shutdown")
	RecordDatasetLoadMetrics(ctx, nil, "csv", 10, 100, time.Second, nil)
	RecordReductionMetrics(ctx, nil, "d1", "dropna", 1, 0, 0)
	RecordExportMetrics(ctx, nil, "csv", 100, time.Second, nil)

	// And must not panic with real instruments
	RecordScanMetrics(ctx, metrics, "s1", "d1", 250*time.Millisecond, true, nil)
	RecordScanMetrics(ctx, metrics, "s2", "d1", time.Second, false, assert.AnError)
	RecordScanStepMetrics(ctx, metrics, "s1", "step1", "classify", 50*time.Millisecond, true)
	RecordActiveScanChange(ctx, metrics, 1, "full")
	RecordActiveScanChange(ctx, metrics, -1, "full")
	RecordScanCancellation(ctx, metrics, "s1", "full", "client_disconnect")
	RecordDatasetLoadMetrics(ctx, metrics, "csv", 1000, 4096, time.Second, nil)
	RecordDatasetLoadMetrics(ctx, metrics, "xlsx", 0, 0, time.Second, assert.AnError)
	RecordReductionMetrics(ctx, metrics, "d1", "dropna", 3, 1, 0)
	RecordReductionMetrics(ctx, metrics, "d1", "fillna", 0, 0, 12)
	RecordExportMetrics(ctx, metrics, "arrow", 8192, time.Second, nil)
}

// TestSpanOperations tests span operations and attributes
func TestSpanOperations(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	tracer := tp.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "test-span")
	defer span.End()

	attributes := map[string]interface{}{
		"string_attr": "test_value",
		"int_attr":    42,
		"int64_attr":  int64(7),
		"float_attr":  3.14,
		"bool_attr":   true,
		"other_attr":  []string{"stringified"},
	}

	SetSpanAttributes(ctx, attributes)

	AddSpanEvent(ctx, "test.event", map[string]interface{}{
		"event_data": "test_event_value",
		"timestamp":  time.Now().Unix(),
	})

	RecordError(ctx, assert.AnError)

	assert.True(t, span.IsRecording())
	assert.Equal(t, span, SpanFromContext(ctx))
}

// TestOTelConfiguration tests different configuration options
func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		config *OTelConfig
	}{
		{
			name: "disabled_exporters",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "none",
				MetricExporter: "none",
				EnableMetrics:  true,
				EnableTracing:  true,
				SampleRatio:    1.0,
			},
		},
		{
			name: "disabled_tracing",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "none",
				MetricExporter: "none",
				EnableMetrics:  false,
				EnableTracing:  false,
				SampleRatio:    0.0,
			},
		},
		{
			name: "stdout_tracing",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "stdout",
				MetricExporter: "none",
				EnableMetrics:  false,
				EnableTracing:  true,
				SampleRatio:    0.0, // Sample nothing so shutdown flushes no spans
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.config, testLogger())
			require.NoError(t, err)
			require.NotNil(t, providers)

			if tt.config.EnableTracing && tt.config.TraceExporter != "none" {
				assert.NotNil(t, providers.TracerProvider)
				assert.NotNil(t, providers.Tracer)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			err = providers.Shutdown(ctx)
			assert.NoError(t, err)
		})
	}
}

func TestOTelConfiguration_UnsupportedExporters(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{
		TraceExporter: "otlp",
		EnableTracing: true,
	}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")

	_, err = InitializeOTel(&OTelConfig{
		TraceExporter:  "none",
		MetricExporter: "statsd",
		EnableTracing:  true,
		EnableMetrics:  true,
	}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported metric exporter")
}

// TestSystemMetricsCollector verifies runtime stats collection
func TestSystemMetricsCollector(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	defer mp.Shutdown(context.Background())

	collector, err := NewSystemMetricsCollector(mp.Meter("test"), time.Minute)
	require.NoError(t, err)

	stats := collector.GetCurrentStats(context.Background())
	require.NotNil(t, stats)

	assert.Greater(t, stats.GoRoutines, int64(0))
	assert.Greater(t, stats.MemoryUsage, int64(0))
	assert.Greater(t, stats.CPUCount, 0)
	assert.False(t, stats.Timestamp.IsZero())

	formatted := stats.FormatStats()
	assert.Contains(t, formatted, "runtime")
	assert.Contains(t, formatted, "system")
	assert.Contains(t, formatted, "timestamp")

	assert.NotNil(t, collector.GetMetrics())
}

// TestResourceMonitor verifies health scoring and threshold alerts
func TestResourceMonitor(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	defer mp.Shutdown(context.Background())

	collector, err := NewSystemMetricsCollector(mp.Meter("test"), time.Minute)
	require.NoError(t, err)

	monitor := NewResourceMonitor(testLogger(), collector)
	ctx := context.Background()

	report := monitor.Analyze(ctx)
	require.NotNil(t, report)
	assert.GreaterOrEqual(t, report.OverallScore, 0)
	assert.LessOrEqual(t, report.OverallScore, 100)
	assert.NotEmpty(t, report.Health.Status)

	// Each analysis leaves an observation behind
	obs := monitor.GetObservations(0)
	require.NotEmpty(t, obs)
	assert.Equal(t, "health_analysis", obs[len(obs)-1].Type)

	// A goroutine threshold of 1 is always exceeded inside a test binary
	monitor.SetThresholds(ResourceThresholds{
		MemoryUsageMB:  1 << 30,
		GoroutineCount: 1,
		GCPauseMS:      1 << 30,
	})

	report = monitor.Analyze(ctx)
	require.NotEmpty(t, report.Bottlenecks)
	assert.Equal(t, "goroutines", report.Bottlenecks[0].Type)
	require.NotEmpty(t, report.Alerts)
	assert.Equal(t, "goroutine_count", report.Alerts[0].Type)
	assert.Less(t, report.OverallScore, 100)

	// ReclaimMemory records a warning for the exceeded goroutine threshold
	monitor.ReclaimMemory(ctx)
	obs = monitor.GetObservations(1)
	require.Len(t, obs, 1)
	assert.Equal(t, "memory_reclaim", obs[0].Type)
}

// BenchmarkTraceOperations benchmarks span creation and annotation
func BenchmarkTraceOperations(b *testing.B) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	tracer := tp.Tracer("benchmark")

	b.ResetTimer()
	b.ReportAllocs()

	b.Run("span_creation", func(b *testing.B) {
		ctx := context.Background()
		for i := 0; i < b.N; i++ {
			_, span := tracer.Start(ctx, "benchmark-span")
			span.End()
		}
	})

	b.Run("span_attributes", func(b *testing.B) {
		ctx, span := tracer.Start(context.Background(), "benchmark-span")
		defer span.End()

		attributes := map[string]interface{}{
			"operation": "benchmark",
			"iteration": 0,
			"success":   true,
		}

		for i := 0; i < b.N; i++ {
			attributes["iteration"] = i
			SetSpanAttributes(ctx, attributes)
		}
	})

	b.Run("span_events", func(b *testing.B) {
		ctx, span := tracer.Start(context.Background(), "benchmark-span")
		defer span.End()

		for i := 0; i < b.N; i++ {
			AddSpanEvent(ctx, "benchmark.event", map[string]interface{}{
				"iteration": i,
			})
		}
	})
}

// BenchmarkMetricOperations benchmarks metric recording
func BenchmarkMetricOperations(b *testing.B) {
	mp := sdkmetric.NewMeterProvider()
	defer mp.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(mp.Meter("benchmark"))
	require.NoError(b, err)

	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	b.Run("counter_increment", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			metrics.HTTPRequestsTotal.Add(ctx, 1)
		}
	})

	b.Run("histogram_record", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			metrics.ScanDuration.Record(ctx, float64(i)*0.001)
		}
	})

	b.Run("updown_counter", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if i%2 == 0 {
				metrics.ActiveScans.Add(ctx, 1)
			} else {
				metrics.ActiveScans.Add(ctx, -1)
			}
		}
	})
}
