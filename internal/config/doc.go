// Package config provides centralized configuration management for the TabScan system.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern TABSCAN_* for namespacing:
//
//	TABSCAN_SERVER_PORT=8080
//	TABSCAN_LOGGING_LEVEL=info
//	TABSCAN_SCAN_WORKERS=8
//	TABSCAN_SENTINELS_NULL_TOKENS=NA,null,-
//
// # Sentinel Policy
//
// The Sentinels section carries the default missing-value policy: the
// literal tokens the loaders map to null at parse time, plus the
// string and numeric sentinels the classifier matches by value. A
// request-level policy always overrides these defaults.
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, _ := config.GetPaths()
//	datasetPath := paths.GetDatasetPath("survey.csv")
//	exportPath := paths.GetExportPath("survey_cleaned.csv")
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Required fields are present
//	- Values are within acceptable ranges
//	- File paths are accessible
//	- Sentinel tokens are non-empty
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
