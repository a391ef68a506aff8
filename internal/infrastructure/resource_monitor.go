package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// ResourceMonitor watches runtime resource usage and scores overall health.
// Every registered dataset is resident in memory, so the interesting failure
// mode is allocation creeping toward the ceiling as tables accumulate.
type ResourceMonitor struct {
	logger          *slog.Logger
	systemCollector *SystemMetricsCollector
	observations    []ResourceObservation
	mu              sync.RWMutex
	thresholds      ResourceThresholds
}

// ResourceThresholds defines resource alerting thresholds
type ResourceThresholds struct {
	MemoryUsageMB  int64   // MB
	GoroutineCount int64   // Number of goroutines
	GCPauseMS      int64   // Milliseconds
	ErrorRatePct   float64 // Percentage
}

// ResourceObservation represents a recorded resource event
type ResourceObservation struct {
	Timestamp  time.Time
	Type       string
	Severity   string
	Message    string
	Metrics    map[string]interface{}
	Suggestion string
}

// ResourceReport contains the result of a health analysis
type ResourceReport struct {
	Timestamp    time.Time            `json:"timestamp"`
	OverallScore int                  `json:"overall_score"`
	Health       SystemHealthStatus   `json:"health"`
	Bottlenecks  []ResourceBottleneck `json:"bottlenecks"`
	Alerts       []ResourceAlert      `json:"alerts"`
}

// SystemHealthStatus represents the overall system health
type SystemHealthStatus struct {
	Status         string  `json:"status"`
	Score          int     `json:"score"`
	MemoryUsage    int64   `json:"memory_usage_mb"`
	GoroutineCount int64   `json:"goroutine_count"`
	Uptime         float64 `json:"uptime_seconds"`
}

// ResourceBottleneck describes a resource under pressure
type ResourceBottleneck struct {
	Type        string                 `json:"type"`
	Severity    string                 `json:"severity"`
	Description string                 `json:"description"`
	Impact      string                 `json:"impact"`
	Metrics     map[string]interface{} `json:"metrics"`
}

// ResourceAlert represents a threshold crossing
type ResourceAlert struct {
	Type         string    `json:"type"`
	Severity     string    `json:"severity"`
	Message      string    `json:"message"`
	Threshold    string    `json:"threshold"`
	CurrentValue string    `json:"current_value"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewResourceMonitor creates a new resource monitor
func NewResourceMonitor(logger *slog.Logger, systemCollector *SystemMetricsCollector) *ResourceMonitor {
	return &ResourceMonitor{
		logger:          logger.With(slog.String("component", "resource_monitor")),
		systemCollector: systemCollector,
		observations:    make([]ResourceObservation, 0),
		thresholds:      DefaultResourceThresholds(),
	}
}

// DefaultResourceThresholds returns default resource thresholds
func DefaultResourceThresholds() ResourceThresholds {
	return ResourceThresholds{
		MemoryUsageMB:  2048, // 2GB of resident tables
		GoroutineCount: 1000,
		GCPauseMS:      100,
		ErrorRatePct:   5.0,
	}
}

// Analyze collects current stats and produces a health report
func (rm *ResourceMonitor) Analyze(ctx context.Context) *ResourceReport {
	stats := rm.systemCollector.GetCurrentStats(ctx)

	report := &ResourceReport{
		Timestamp:   time.Now(),
		Health:      rm.analyzeHealth(stats),
		Bottlenecks: rm.identifyBottlenecks(stats),
		Alerts:      rm.checkAlerts(stats),
	}

	report.OverallScore = rm.calculateScore(report)

	rm.recordObservation("health_analysis", "info",
		fmt.Sprintf("Health analysis completed with score %d", report.OverallScore),
		map[string]interface{}{
			"score":             report.OverallScore,
			"bottlenecks_count": len(report.Bottlenecks),
			"alerts_count":      len(report.Alerts),
		}, "")

	rm.logger.InfoContext(ctx, "Resource analysis completed",
		slog.Int("overall_score", report.OverallScore),
		slog.Int("bottlenecks", len(report.Bottlenecks)),
		slog.Int("alerts", len(report.Alerts)))

	return report
}

// analyzeHealth scores current resource usage against the thresholds
func (rm *ResourceMonitor) analyzeHealth(stats *SystemStats) SystemHealthStatus {
	memUsageMB := stats.MemoryUsage / 1024 / 1024

	score := 100
	status := "healthy"

	if memUsageMB > rm.thresholds.MemoryUsageMB {
		score -= 30
		status = "degraded"
	} else if memUsageMB > rm.thresholds.MemoryUsageMB/2 {
		score -= 15
	}

	if stats.GoRoutines > rm.thresholds.GoroutineCount {
		score -= 25
		status = "degraded"
	} else if stats.GoRoutines > rm.thresholds.GoroutineCount/2 {
		score -= 10
	}

	if stats.LastGCPause > time.Duration(rm.thresholds.GCPauseMS)*time.Millisecond {
		score -= 20
		if status == "healthy" {
			status = "warning"
		}
	}

	if score < 70 {
		status = "critical"
	} else if score < 85 && status == "healthy" {
		status = "warning"
	}

	return SystemHealthStatus{
		Status:         status,
		Score:          max(0, score),
		MemoryUsage:    memUsageMB,
		GoroutineCount: stats.GoRoutines,
		Uptime:         stats.ProcessUptime.Seconds(),
	}
}

// identifyBottlenecks flags resources under pressure
func (rm *ResourceMonitor) identifyBottlenecks(stats *SystemStats) []ResourceBottleneck {
	var bottlenecks []ResourceBottleneck

	memUsageMB := stats.MemoryUsage / 1024 / 1024

	if memUsageMB > rm.thresholds.MemoryUsageMB {
		bottlenecks = append(bottlenecks, ResourceBottleneck{
			Type:        "memory",
			Severity:    "high",
			Description: "Resident dataset memory exceeds the configured ceiling",
			Impact:      "Further dataset loads may fail and scans will slow down under GC pressure",
			Metrics: map[string]interface{}{
				"current_mb":    memUsageMB,
				"threshold_mb":  rm.thresholds.MemoryUsageMB,
				"usage_percent": float64(memUsageMB) / float64(rm.thresholds.MemoryUsageMB) * 100,
			},
		})
	}

	if stats.GoRoutines > rm.thresholds.GoroutineCount {
		bottlenecks = append(bottlenecks, ResourceBottleneck{
			Type:        "goroutines",
			Severity:    "medium",
			Description: "High goroutine count detected",
			Impact:      "May indicate leaked scan workers or stuck websocket clients",
			Metrics: map[string]interface{}{
				"current_count": stats.GoRoutines,
				"threshold":     rm.thresholds.GoroutineCount,
				"ratio":         float64(stats.GoRoutines) / float64(rm.thresholds.GoroutineCount),
			},
		})
	}

	if stats.LastGCPause > time.Duration(rm.thresholds.GCPauseMS)*time.Millisecond {
		bottlenecks = append(bottlenecks, ResourceBottleneck{
			Type:        "garbage_collection",
			Severity:    "medium",
			Description: "Long garbage collection pauses detected",
			Impact:      "Scan and request latencies will spike while the collector runs",
			Metrics: map[string]interface{}{
				"current_pause_ms": stats.LastGCPause.Milliseconds(),
				"threshold_ms":     rm.thresholds.GCPauseMS,
				"ratio":            float64(stats.LastGCPause.Milliseconds()) / float64(rm.thresholds.GCPauseMS),
			},
		})
	}

	return bottlenecks
}

// checkAlerts reports threshold crossings
func (rm *ResourceMonitor) checkAlerts(stats *SystemStats) []ResourceAlert {
	var alerts []ResourceAlert
	now := time.Now()

	memUsageMB := stats.MemoryUsage / 1024 / 1024

	if memUsageMB > rm.thresholds.MemoryUsageMB {
		alerts = append(alerts, ResourceAlert{
			Type:         "memory_usage",
			Severity:     "warning",
			Message:      "Memory usage exceeds threshold",
			Threshold:    fmt.Sprintf("%d MB", rm.thresholds.MemoryUsageMB),
			CurrentValue: fmt.Sprintf("%d MB", memUsageMB),
			Timestamp:    now,
		})
	}

	if stats.GoRoutines > rm.thresholds.GoroutineCount {
		alerts = append(alerts, ResourceAlert{
			Type:         "goroutine_count",
			Severity:     "warning",
			Message:      "Goroutine count exceeds threshold",
			Threshold:    fmt.Sprintf("%d", rm.thresholds.GoroutineCount),
			CurrentValue: fmt.Sprintf("%d", stats.GoRoutines),
			Timestamp:    now,
		})
	}

	if stats.LastGCPause > time.Duration(rm.thresholds.GCPauseMS)*time.Millisecond {
		alerts = append(alerts, ResourceAlert{
			Type:         "gc_pause",
			Severity:     "warning",
			Message:      "GC pause duration exceeds threshold",
			Threshold:    fmt.Sprintf("%d ms", rm.thresholds.GCPauseMS),
			CurrentValue: fmt.Sprintf("%d ms", stats.LastGCPause.Milliseconds()),
			Timestamp:    now,
		})
	}

	return alerts
}

// calculateScore combines the health score with bottleneck and alert penalties
func (rm *ResourceMonitor) calculateScore(report *ResourceReport) int {
	score := report.Health.Score

	for _, bottleneck := range report.Bottlenecks {
		switch bottleneck.Severity {
		case "high":
			score -= 15
		case "medium":
			score -= 10
		case "low":
			score -= 5
		}
	}

	for _, alert := range report.Alerts {
		switch alert.Severity {
		case "critical":
			score -= 20
		case "warning":
			score -= 10
		case "info":
			score -= 2
		}
	}

	return max(0, min(100, score))
}

// recordObservation appends to the bounded observation history
func (rm *ResourceMonitor) recordObservation(obsType, severity, message string, metrics map[string]interface{}, suggestion string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.observations = append(rm.observations, ResourceObservation{
		Timestamp:  time.Now(),
		Type:       obsType,
		Severity:   severity,
		Message:    message,
		Metrics:    metrics,
		Suggestion: suggestion,
	})

	// Keep only last 1000 observations
	if len(rm.observations) > 1000 {
		rm.observations = rm.observations[len(rm.observations)-1000:]
	}
}

// GetObservations returns recent resource observations, newest last
func (rm *ResourceMonitor) GetObservations(limit int) []ResourceObservation {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	if limit <= 0 || limit > len(rm.observations) {
		limit = len(rm.observations)
	}

	start := len(rm.observations) - limit
	observations := make([]ResourceObservation, limit)
	copy(observations, rm.observations[start:])

	return observations
}

// SetThresholds updates resource thresholds
func (rm *ResourceMonitor) SetThresholds(thresholds ResourceThresholds) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.thresholds = thresholds

	rm.logger.Info("Resource thresholds updated",
		slog.Int64("memory_mb", thresholds.MemoryUsageMB),
		slog.Int64("goroutines", thresholds.GoroutineCount),
		slog.Int64("gc_pause_ms", thresholds.GCPauseMS))
}

// ReclaimMemory forces a garbage collection when allocation approaches the
// ceiling. Called after unloading a dataset so the freed table is returned
// before the next large load starts.
func (rm *ResourceMonitor) ReclaimMemory(ctx context.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	memUsageMB := memStats.Alloc / 1024 / 1024
	if memUsageMB > uint64(rm.thresholds.MemoryUsageMB)*3/4 {
		rm.logger.InfoContext(ctx, "Forcing garbage collection",
			slog.Uint64("memory_mb", memUsageMB))
		runtime.GC()

		rm.recordObservation("memory_reclaim", "info",
			"Forced garbage collection near memory ceiling",
			map[string]interface{}{
				"memory_before_mb": memUsageMB,
			}, "Consider unloading datasets that are no longer scanned")
	}

	goroutines := runtime.NumGoroutine()
	if int64(goroutines) > rm.thresholds.GoroutineCount*3/4 {
		rm.logger.WarnContext(ctx, "High goroutine count detected",
			slog.Int("goroutines", goroutines))

		rm.recordObservation("memory_reclaim", "warning",
			"High goroutine count detected",
			map[string]interface{}{
				"goroutine_count": goroutines,
			}, "Check for scans that never complete")
	}
}
