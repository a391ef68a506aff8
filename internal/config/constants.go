package config

import "time"

// Application constants - all hardcoded values for the TabScan system
const (
	// Application Info
	AppName    = "TabScan"
	AppVersion = "1.0.0"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per minute
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultHTTPTimeout  = 30 * time.Second
	SheetsFetchTimeout  = 45 * time.Second
	PageFetchTimeout    = 45 * time.Second
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// File Paths (relative to executable)
	DefaultDataDir     = "data"
	DefaultLogsDir     = "logs"
	DefaultWebDir      = "web"
	DefaultDatasetsDir = "data/datasets"
	DefaultReportsDir  = "data/reports"
	DefaultExportsDir  = "data/exports"

	// Cache Settings
	DatasetCacheDuration = 15 * time.Minute
	ReportCacheDuration  = 1 * time.Hour

	// Operation Timeouts
	DefaultScanTimeout     = 30 * time.Minute
	LoadTimeout            = 10 * time.Minute
	ExportTimeout          = 15 * time.Minute
	FetchOperationTimeout  = 5 * time.Minute

	// WebSocket Buffer Sizes
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	// Log Settings
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	MaxLogFileSize    = 100 * 1024 * 1024 // 100MB
	MaxLogFileAge     = 30                // days
	MaxLogFileBackups = 10

	// Source File Patterns
	CSVFilePattern   = ".*\\.(csv|tsv|txt)$"
	ExcelFilePattern = ".*\\.xlsx?$"
	ArrowFilePattern = ".*\\.(arrow|feather)$"

	// Error Messages
	ErrDatasetNotLoaded = "Dataset not loaded. Load a table before scanning it."
	ErrScanInProgress   = "A scan is already running for this dataset."
	ErrUploadTooLarge   = "Uploaded file exceeds the configured size limit."
	ErrNetworkError     = "Network error. Please check your internet connection."

	// Success Messages
	MsgDatasetLoaded    = "Dataset loaded successfully."
	MsgScanComplete     = "Scan completed successfully."
	MsgOperationSuccess = "Operation completed successfully."
)

// Feature Flags - compile-time configuration
const (
	// Core Features
	FeatureWebSocketEnabled   = true
	FeatureMetricsEnabled     = true
	FeatureHealthCheckEnabled = true
	FeatureSheetsEnabled      = true
	FeaturePageFetchEnabled   = true

	// Security Features
	FeatureRateLimitingEnabled = true

	// Development Features
	FeatureDebugLoggingEnabled = false
	FeatureVerboseModeEnabled  = false
	FeatureMockDataEnabled     = false
)

// URLs and Endpoints (all embedded)
const (
	// Google Sheets API
	SheetsAPIBaseURL = "https://sheets.googleapis.com"
	SheetsAPIDomain  = "sheets.googleapis.com"

	// API Endpoints (internal)
	APIBasePath      = "/api/v1"
	DatasetsEndpoint = "/api/v1/datasets"
	ScansEndpoint    = "/api/v1/scans"
	HealthEndpoint   = "/health"
	MetricsEndpoint  = "/metrics"

	// WebSocket Endpoints
	WebSocketEndpoint = "/ws"
)

// GetFeatureFlag returns the value of a feature flag
func GetFeatureFlag(flag string) bool {
	switch flag {
	case "websocket":
		return FeatureWebSocketEnabled
	case "metrics":
		return FeatureMetricsEnabled
	case "health_check":
		return FeatureHealthCheckEnabled
	case "sheets":
		return FeatureSheetsEnabled
	case "page_fetch":
		return FeaturePageFetchEnabled
	case "rate_limiting":
		return FeatureRateLimitingEnabled
	case "debug_logging":
		return FeatureDebugLoggingEnabled
	case "verbose_mode":
		return FeatureVerboseModeEnabled
	case "mock_data":
		return FeatureMockDataEnabled
	default:
		return false
	}
}
