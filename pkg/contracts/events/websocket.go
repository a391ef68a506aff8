// Package events contains event contract definitions for WebSocket
// communication in the TabScan missing data analyzer.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Core scan message - the primary event type
	MessageTypeScanSnapshot MessageType = "scan:snapshot"

	// Batch scan per-file progress
	MessageTypeScanBatch MessageType = "scan:batch"

	// Dataset lifecycle messages
	MessageTypeDatasetUpdate MessageType = "dataset:update"

	// System messages
	MessageTypeSystemStatus  MessageType = "system:status"
	MessageTypeSystemMetrics MessageType = "system:metrics"

	// Connection messages
	MessageTypeConnect    MessageType = "connect"
	MessageTypeDisconnect MessageType = "disconnect"
	MessageTypeError      MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`       // Unique message ID
	Type      MessageType `json:"type"`               // Message type
	Timestamp time.Time   `json:"timestamp"`          // Message timestamp
	TraceID   string      `json:"trace_id,omitempty"` // Request trace ID
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"` // Message payload
}

// ScanSnapshot is the primary message type for all scan updates. Every
// state change in a running scan broadcasts the full snapshot, so
// clients never need to stitch deltas together.
type ScanSnapshot struct {
	ScanID      string         `json:"scan_id"`
	DatasetID   string         `json:"dataset_id"`
	Status      string         `json:"status"`       // pending|running|completed|failed|cancelled
	Progress    int            `json:"progress"`     // 0-100
	CurrentStep string         `json:"current_step"` // Current active step name
	Steps       []StepSnapshot `json:"steps"`        // All steps with their status
	StartedAt   time.Time      `json:"started_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Error       string         `json:"error,omitempty"`
	Message     string         `json:"message,omitempty"`
}

// StepSnapshot represents the state of a single scan step
type StepSnapshot struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Status   string                 `json:"status"`   // pending|running|completed|failed|skipped
	Progress int                    `json:"progress"` // 0-100
	Message  string                 `json:"message,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"` // Per-step detail, e.g. column counts
}

// DatasetUpdate announces a dataset entering or leaving the registry,
// or gaining a reduced successor.
type DatasetUpdate struct {
	DatasetID    string `json:"dataset_id"`
	Name         string `json:"name"`
	Action       string `json:"action"` // loaded|deleted|reduced
	Rows         int    `json:"rows,omitempty"`
	Columns      int    `json:"columns,omitempty"`
	MissingCells int    `json:"missing_cells,omitempty"`
	SourceID     string `json:"source_id,omitempty"` // Parent dataset for reduced results
}

// SubscriptionOptions represents subscription options
type SubscriptionOptions struct {
	BufferSize     int    `json:"buffer_size,omitempty"`
	MaxFrequency   int    `json:"max_frequency,omitempty"` // Max messages per second
	IncludeHistory bool   `json:"include_history,omitempty"`
	HistoryLimit   int    `json:"history_limit,omitempty"`
	Quality        string `json:"quality,omitempty"` // realtime, delayed, snapshot
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	BaseMessage
	Data struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
		Retry   bool        `json:"retry"`
		Fatal   bool        `json:"fatal"`
	} `json:"data"`
}

// SystemStatusEvent represents a system status event
type SystemStatusEvent struct {
	BaseMessage
	Data struct {
		Status     string            `json:"status"` // healthy|degraded|unhealthy
		Components map[string]string `json:"components"`
		Uptime     string            `json:"uptime"`
		Version    string            `json:"version"`
	} `json:"data"`
}

// SystemMetricsEvent represents system metrics event
type SystemMetricsEvent struct {
	BaseMessage
	Data struct {
		CPU         float64   `json:"cpu_percent"`
		Memory      float64   `json:"memory_percent"`
		Goroutines  int       `json:"goroutines"`
		Connections int       `json:"active_connections"`
		Datasets    int       `json:"loaded_datasets"`
		Timestamp   time.Time `json:"timestamp"`
	} `json:"data"`
}
