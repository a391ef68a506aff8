// Package api contains API contract definitions for the TabScan
// missing data analyzer. Version v1 represents the current stable API
// version.
package api

// Common request parameters

// PaginationRequest represents common pagination parameters
type PaginationRequest struct {
	Page     int    `json:"page" query:"page" validate:"min=1"`
	PageSize int    `json:"page_size" query:"page_size" validate:"min=1,max=100"`
	Sort     string `json:"sort" query:"sort" validate:"omitempty,oneof=asc desc"`
	SortBy   string `json:"sort_by" query:"sort_by"`
}

// DateRangeRequest represents a date range in requests
type DateRangeRequest struct {
	From string `json:"from" query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// Dataset API Requests

// DatasetLoadRequest represents a request to load a dataset into the
// registry. Exactly one locator is used depending on SourceType: Path
// for csv, xlsx and html files, URL for rendered pages, SpreadsheetID
// plus ReadRange for sheets. The handler rejects requests whose
// locator does not match the source type.
type DatasetLoadRequest struct {
	SourceType    string            `json:"source_type" validate:"required,oneof=csv xlsx html sheets url"`
	Path          string            `json:"path,omitempty"`
	URL           string            `json:"url,omitempty" validate:"omitempty,url"`
	SpreadsheetID string            `json:"spreadsheet_id,omitempty"`
	ReadRange     string            `json:"read_range,omitempty"`
	Name          string            `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Sheet         string            `json:"sheet,omitempty"`
	TableIndex    int               `json:"table_index,omitempty" validate:"min=0"`
	Delimiter     string            `json:"delimiter,omitempty" validate:"omitempty,len=1"`
	NAValues      []string          `json:"na_values,omitempty"`
	TypeHints     map[string]string `json:"type_hints,omitempty" validate:"omitempty,dive,dtype"`
	LabelColumn   string            `json:"label_column,omitempty"`
	MaxRows       int               `json:"max_rows,omitempty" validate:"min=0"`
}

// DatasetListRequest represents a request to list datasets
type DatasetListRequest struct {
	PaginationRequest
	Status       string `json:"status" query:"status" validate:"omitempty,oneof=loading ready failed"`
	Source       string `json:"source" query:"source" validate:"omitempty,oneof=csv xlsx html sheets url"`
	NameContains string `json:"name_contains" query:"name_contains"`
}

// DatasetGetRequest represents a request for dataset details
type DatasetGetRequest struct {
	DatasetID       string `json:"dataset_id" param:"id" validate:"required,uuid"`
	IncludeProfiles bool   `json:"include_profiles" query:"include_profiles"`
}

// DatasetDeleteRequest represents a request to unload a dataset
type DatasetDeleteRequest struct {
	DatasetID string `json:"dataset_id" param:"id" validate:"required,uuid"`
}

// Scan API Requests

// ScanStartRequest represents a request to start a nullity scan
type ScanStartRequest struct {
	DatasetID       string    `json:"dataset_id" validate:"required,uuid"`
	StringSentinels []string  `json:"string_sentinels,omitempty" validate:"omitempty,dive,min=1"`
	NumberSentinels []float64 `json:"number_sentinels,omitempty"`
	CaseInsensitive bool      `json:"case_insensitive"`
	ComputeMask     bool      `json:"compute_mask"`
	ExportReport    bool      `json:"export_report"`
}

// ScanStatusRequest represents a request for scan status
type ScanStatusRequest struct {
	ScanID string `json:"scan_id" param:"id" validate:"required,uuid"`
}

// ScanListRequest represents a request to list scans
type ScanListRequest struct {
	PaginationRequest
	DatasetID string `json:"dataset_id" query:"dataset_id" validate:"omitempty,uuid"`
	Status    string `json:"status" query:"status" validate:"omitempty,oneof=pending running completed failed cancelled"`
}

// Reduction API Requests

// DropRequest represents a request to drop rows or columns with
// missing cells. Thresh, when present, replaces How: a slice survives
// with at least Thresh non-missing cells. Columns narrows the scan for
// row drops, Rows narrows it for column drops.
type DropRequest struct {
	DatasetID string   `json:"dataset_id" param:"id" validate:"required,uuid"`
	Axis      string   `json:"axis" validate:"omitempty,axis"`
	How       string   `json:"how" validate:"omitempty,how"`
	Thresh    *int     `json:"thresh,omitempty" validate:"omitempty,min=0"`
	Columns   []string `json:"columns,omitempty" validate:"omitempty,dive,min=1"`
	Rows      []int    `json:"rows,omitempty" validate:"omitempty,dive,min=0"`
	Name      string   `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
}

// FillRequest represents a request to impute missing cells. Strategy
// applies to the whole table; PerColumn overrides it for the named
// columns. Value carries the constant fill payload as text, parsed
// against each target column's dtype.
type FillRequest struct {
	DatasetID string                       `json:"dataset_id" param:"id" validate:"required,uuid"`
	Strategy  string                       `json:"strategy,omitempty" validate:"omitempty,fillstrategy"`
	Value     string                       `json:"value,omitempty"`
	PerColumn map[string]FillStrategyInput `json:"per_column,omitempty" validate:"omitempty,dive"`
	Axis      string                       `json:"axis,omitempty" validate:"omitempty,axis"`
	Name      string                       `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
}

// FillStrategyInput represents a per-column fill strategy override
type FillStrategyInput struct {
	Strategy string `json:"strategy" validate:"required,fillstrategy"`
	Value    string `json:"value,omitempty"`
}

// Export API Requests

// ExportRequest represents a request to export a dataset or one of
// its scan artifacts to disk
type ExportRequest struct {
	DatasetID string `json:"dataset_id" param:"id" validate:"required,uuid"`
	Format    string `json:"format" validate:"required,oneof=csv xlsx arrow json"`
	Target    string `json:"target,omitempty" validate:"omitempty,oneof=table summary mask report"`
	Path      string `json:"path,omitempty"`
}

// WebSocket API Requests

// WebSocketSubscribeRequest represents a WebSocket subscription request
type WebSocketSubscribeRequest struct {
	Type     string                 `json:"type" validate:"required,oneof=scan dataset system all"`
	Channels []string               `json:"channels" validate:"required,min=1"`
	Filters  map[string]interface{} `json:"filters,omitempty"`
}

// WebSocketUnsubscribeRequest represents a WebSocket unsubscription request
type WebSocketUnsubscribeRequest struct {
	Type     string   `json:"type" validate:"required,oneof=scan dataset system all"`
	Channels []string `json:"channels,omitempty"`
}

// Health API Requests

// HealthCheckRequest represents a health check request
type HealthCheckRequest struct {
	Verbose bool     `json:"verbose" query:"verbose"`
	Include []string `json:"include" query:"include" validate:"omitempty,dive,oneof=datasets websocket services storage"`
}

// System API Requests

// SystemConfigRequest represents a system configuration request
type SystemConfigRequest struct {
	Section string `json:"section" query:"section" validate:"omitempty,oneof=general logging paths sentinels"`
}

// SystemLogsRequest represents a system logs request
type SystemLogsRequest struct {
	PaginationRequest
	Level     string           `json:"level" query:"level" validate:"omitempty,oneof=debug info warn error"`
	DateRange DateRangeRequest `json:"date_range,omitempty"`
	Component string           `json:"component" query:"component"`
	TraceID   string           `json:"trace_id" query:"trace_id"`
}
