package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	WebDir        string
	StaticDir     string
	DataDir       string
	DatasetsDir   string
	ReportsDir    string
	ExportsDir    string
	CacheDir      string
	LogsDir       string

	// Config files
	CredentialsFile  string
	SheetsConfigFile string

	// Well-known report files
	SummaryJSON string
	SummaryCSV  string
}

// GetPaths returns the application paths relative to the executable location
// All paths are ALWAYS relative to the executable directory, never the current working directory
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)

	// Directory structure:
	// dist/
	//   ├── credentials.json
	//   ├── sheets-config.json
	//   ├── data/
	//   │   ├── datasets/   (uploaded and fetched source tables)
	//   │   ├── reports/    (generated nullity reports)
	//   │   ├── exports/    (CSV/XLSX/Arrow export output)
	//   │   └── cache/      (temporary files)
	//   ├── logs/           (application logs)
	//   └── web/            (frontend assets)

	dataDir := filepath.Join(exeDir, "data")
	reportsDir := filepath.Join(dataDir, "reports")

	paths := &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		WebDir:        filepath.Join(exeDir, "web"),
		StaticDir:     filepath.Join(exeDir, "web", "static"),
		DatasetsDir:   filepath.Join(dataDir, "datasets"),
		ReportsDir:    reportsDir,
		ExportsDir:    filepath.Join(dataDir, "exports"),
		CacheDir:      filepath.Join(dataDir, "cache"),
		LogsDir:       filepath.Join(exeDir, "logs"),

		// Configuration files (root of executable directory)
		CredentialsFile:  filepath.Join(exeDir, "credentials.json"),
		SheetsConfigFile: filepath.Join(exeDir, "sheets-config.json"),

		// Well-known report files
		SummaryJSON: filepath.Join(reportsDir, "scan_summary.json"),
		SummaryCSV:  filepath.Join(reportsDir, "scan_summary.csv"),
	}

	return paths, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.DatasetsDir,
		p.ReportsDir,
		p.ExportsDir,
		p.CacheDir,
		p.LogsDir,
		p.WebDir,
		p.StaticDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetRelativePath returns a path relative to the executable directory
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetWebFilePath returns the path to a web file
func (p *Paths) GetWebFilePath(filename string) string {
	return filepath.Join(p.WebDir, filename)
}

// GetStaticFilePath returns the path to a static file
func (p *Paths) GetStaticFilePath(filename string) string {
	return filepath.Join(p.StaticDir, filename)
}

// GetDatasetPath returns the path for a stored dataset source file
func (p *Paths) GetDatasetPath(filename string) string {
	return filepath.Join(p.DatasetsDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetExportPath returns the path for an export file
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetCachePath returns the path for a cache file
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// GetCredentialsPath returns the path for the Google Sheets credentials file
func (p *Paths) GetCredentialsPath() string {
	path := p.CredentialsFile
	logger := slog.Default()
	if logger != nil {
		logger.Debug("Credentials path resolved",
			slog.String("path", path),
			slog.Bool("exists", FileExists(path)))
	}
	return path
}

// GetSheetsConfigPath returns the path for the sheets configuration file
func (p *Paths) GetSheetsConfigPath() string {
	path := p.SheetsConfigFile
	logger := slog.Default()
	if logger != nil {
		logger.Debug("Sheets config path resolved",
			slog.String("path", path),
			slog.Bool("exists", FileExists(path)))
	}
	return path
}

// GetSummaryJSONPath returns the path for the scan_summary.json file
func (p *Paths) GetSummaryJSONPath() string {
	return p.SummaryJSON
}

// GetSummaryCSVPath returns the path for the scan_summary.csv file
func (p *Paths) GetSummaryCSVPath() string {
	return p.SummaryCSV
}

// GetScanReportPath returns the path for a dated scan report
// (e.g. scan_report_20240115.csv)
func (p *Paths) GetScanReportPath(date time.Time) string {
	filename := fmt.Sprintf("scan_report_%s.csv", date.Format("20060102"))
	return filepath.Join(p.ReportsDir, filename)
}

// GetDatasetExportPath returns the export path for one dataset in the
// given format (e.g. 7f3a_cleaned.csv)
func (p *Paths) GetDatasetExportPath(datasetID, suffix, ext string) string {
	filename := fmt.Sprintf("%s_%s.%s", datasetID, suffix, ext)
	return filepath.Join(p.ExportsDir, filename)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("datasets", p.DatasetsDir),
			slog.String("reports", p.ReportsDir),
			slog.String("exports", p.ExportsDir),
			slog.String("cache", p.CacheDir),
			slog.String("logs", p.LogsDir),
			slog.String("web", p.WebDir),
		),
		slog.Group("config_files",
			slog.String("credentials", p.CredentialsFile),
			slog.String("sheets_config", p.SheetsConfigFile),
		),
		slog.Group("report_files",
			slog.String("summary_json", p.SummaryJSON),
			slog.String("summary_csv", p.SummaryCSV),
		))
}

// ValidateRequiredFiles checks if critical files exist and returns detailed error information
// Only the Sheets credentials are required, and only when the Sheets
// loader is in use; callers decide whether a failure is fatal.
func (p *Paths) ValidateRequiredFiles() error {
	requiredFiles := map[string]string{
		"Credentials": p.CredentialsFile,
	}

	var missingFiles []string
	for name, path := range requiredFiles {
		if !FileExists(path) {
			missingFiles = append(missingFiles, fmt.Sprintf("%s (%s)", name, path))
		}
	}

	if len(missingFiles) > 0 {
		return fmt.Errorf("required files missing: %s", strings.Join(missingFiles, ", "))
	}

	return nil
}
