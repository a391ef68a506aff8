package config

import (
	"os"
	"strconv"
)

// SheetsSettings contains runtime settings for the Google Sheets loader
// Values are read from environment variables with sensible defaults
type SheetsSettings struct {
	// Google Sheets API Configuration
	CredentialsPath string
	APIKey          string

	// Feature Flags
	EnableSheets bool

	// Fetch Settings
	MaxFetchRows    int
	FetchTimeoutSec int
	AllowPublicOnly bool
}

// getEnvBool returns a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvInt returns an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// getEnvString returns a string environment variable with a default value
func getEnvString(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetSheetsSettings returns the Sheets loader settings from environment variables
// All sensitive values must be set via environment variables in production
func GetSheetsSettings() *SheetsSettings {
	return &SheetsSettings{
		// Set SHEETS_CREDENTIALS_PATH or SHEETS_API_KEY in your environment
		CredentialsPath: getEnvString("SHEETS_CREDENTIALS_PATH", ""),
		APIKey:          getEnvString("SHEETS_API_KEY", ""),

		EnableSheets: getEnvBool("ENABLE_SHEETS", true),

		MaxFetchRows:    getEnvInt("SHEETS_MAX_FETCH_ROWS", 100000),
		FetchTimeoutSec: getEnvInt("SHEETS_FETCH_TIMEOUT_SEC", 45),
		AllowPublicOnly: getEnvBool("SHEETS_ALLOW_PUBLIC_ONLY", false),
	}
}

// Singleton instance for easy access
var sheetsSettings *SheetsSettings

// GetSheets returns the singleton Sheets settings instance
func GetSheets() *SheetsSettings {
	if sheetsSettings == nil {
		sheetsSettings = GetSheetsSettings()
	}
	return sheetsSettings
}
