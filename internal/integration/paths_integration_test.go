package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabscan/internal/config"
)

// TestPathConsistencyAcrossAllComponents verifies that all components
// resolve files through the same centralized paths.
func TestPathConsistencyAcrossAllComponents(t *testing.T) {
	paths, err := config.GetPaths()
	require.NoError(t, err)

	t.Run("config paths match centralized paths", func(t *testing.T) {
		cfg := config.Default()

		assert.Equal(t, paths.DataDir, cfg.GetDataDir())
		assert.Equal(t, paths.WebDir, cfg.GetWebDir())
		assert.Equal(t, paths.LogsDir, cfg.GetLogsDir())
	})

	t.Run("report paths stay under the reports directory", func(t *testing.T) {
		reportPath := paths.GetReportPath("batch_summary.csv")

		assert.True(t, pathHasPrefix(reportPath, paths.ReportsDir))
		assert.Equal(t, "batch_summary.csv", filepath.Base(reportPath))
	})

	t.Run("dataset export paths encode id and suffix", func(t *testing.T) {
		exportPath := paths.GetDatasetExportPath("7f3a", "cleaned", "csv")

		assert.True(t, pathHasPrefix(exportPath, paths.ExportsDir))
		assert.Equal(t, "7f3a_cleaned.csv", filepath.Base(exportPath))
	})

	t.Run("well-known summary files live in reports", func(t *testing.T) {
		assert.True(t, pathHasPrefix(paths.GetSummaryJSONPath(), paths.ReportsDir))
		assert.True(t, pathHasPrefix(paths.GetSummaryCSVPath(), paths.ReportsDir))
		assert.Equal(t, "scan_summary.json", filepath.Base(paths.GetSummaryJSONPath()))
		assert.Equal(t, "scan_summary.csv", filepath.Base(paths.GetSummaryCSVPath()))
	})
}

// TestCrossComponentFileSharing verifies files saved by one component
// can be read by another through the shared path layout.
func TestCrossComponentFileSharing(t *testing.T) {
	tempDir := t.TempDir()

	testPaths := &config.Paths{
		ExecutableDir:   tempDir,
		DataDir:         filepath.Join(tempDir, "data"),
		WebDir:          filepath.Join(tempDir, "web"),
		StaticDir:       filepath.Join(tempDir, "web", "static"),
		DatasetsDir:     filepath.Join(tempDir, "data", "datasets"),
		ReportsDir:      filepath.Join(tempDir, "data", "reports"),
		ExportsDir:      filepath.Join(tempDir, "data", "exports"),
		CacheDir:        filepath.Join(tempDir, "data", "cache"),
		LogsDir:         filepath.Join(tempDir, "logs"),
		CredentialsFile: filepath.Join(tempDir, "credentials.json"),
	}

	require.NoError(t, testPaths.EnsureDirectories())

	t.Run("report file sharing", func(t *testing.T) {
		// Scan side writes a summary
		reportData := map[string]interface{}{
			"table":         "readings",
			"missing_ratio": 0.25,
		}

		reportPath := testPaths.GetReportPath("shared_summary.json")
		data, err := json.Marshal(reportData)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(reportPath, data, 0644))

		// Export side reads it back
		readData, err := os.ReadFile(reportPath)
		require.NoError(t, err)

		var loadedReport map[string]interface{}
		require.NoError(t, json.Unmarshal(readData, &loadedReport))

		assert.Equal(t, "readings", loadedReport["table"])
		assert.InDelta(t, 0.25, loadedReport["missing_ratio"], 1e-9)
	})

	t.Run("dataset to export operation", func(t *testing.T) {
		// Simulate a stored source table
		datasetPath := testPaths.GetDatasetPath("readings.csv")
		require.NoError(t, os.WriteFile(datasetPath, []byte("id,temp\n1,20.5\n"), 0644))

		// Clean it and write the result to exports
		data, err := os.ReadFile(datasetPath)
		require.NoError(t, err)

		exportPath := testPaths.GetExportPath("readings_cleaned.csv")
		require.NoError(t, os.WriteFile(exportPath, data, 0644))

		// Verify both files exist in correct locations
		assert.True(t, config.FileExists(datasetPath))
		assert.True(t, config.FileExists(exportPath))
		assert.Contains(t, datasetPath, "datasets")
		assert.Contains(t, exportPath, "exports")
	})
}

// TestPathResolutionFromDifferentWorkingDirectories tests path
// consistency when run from different dirs.
func TestPathResolutionFromDifferentWorkingDirectories(t *testing.T) {
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalWd)

	paths1, err := config.GetPaths()
	require.NoError(t, err)

	t.Run("paths remain consistent from different working directories", func(t *testing.T) {
		tempDir := t.TempDir()
		require.NoError(t, os.Chdir(tempDir))

		paths2, err := config.GetPaths()
		require.NoError(t, err)

		// Paths are executable-relative, not cwd-relative
		assert.Equal(t, paths1.ExecutableDir, paths2.ExecutableDir)
		assert.Equal(t, paths1.DataDir, paths2.DataDir)
		assert.Equal(t, paths1.DatasetsDir, paths2.DatasetsDir)

		require.NoError(t, os.Chdir(os.TempDir()))

		paths3, err := config.GetPaths()
		require.NoError(t, err)

		assert.Equal(t, paths1.ExecutableDir, paths3.ExecutableDir)
		assert.Equal(t, paths1.DataDir, paths3.DataDir)
		assert.Equal(t, paths1.DatasetsDir, paths3.DatasetsDir)
	})
}

// TestConcurrentPathAccess tests that multiple goroutines can safely
// resolve and use paths.
func TestConcurrentPathAccess(t *testing.T) {
	const numGoroutines = 20
	const numIterations = 100

	t.Run("concurrent GetPaths calls", func(t *testing.T) {
		var wg sync.WaitGroup
		errors := make(chan error, numGoroutines*numIterations)

		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()

				for j := 0; j < numIterations; j++ {
					paths, err := config.GetPaths()
					if err != nil {
						errors <- fmt.Errorf("goroutine %d iteration %d: %v", id, j, err)
						continue
					}

					if paths.ExecutableDir == "" {
						errors <- fmt.Errorf("goroutine %d iteration %d: empty ExecutableDir", id, j)
					}
				}
			}(i)
		}

		wg.Wait()
		close(errors)

		var allErrors []error
		for err := range errors {
			allErrors = append(allErrors, err)
		}

		assert.Empty(t, allErrors, "Concurrent access should not produce errors")
	})

	t.Run("concurrent file operations", func(t *testing.T) {
		paths, err := config.GetPaths()
		require.NoError(t, err)
		require.NoError(t, paths.EnsureDirectories())

		var wg sync.WaitGroup
		errors := make(chan error, numGoroutines)

		// Each goroutine writes and reads its own cache file
		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()

				filename := fmt.Sprintf("concurrent_test_%d.txt", id)
				cachePath := paths.GetCachePath(filename)

				data := fmt.Sprintf("goroutine %d data", id)
				if err := os.WriteFile(cachePath, []byte(data), 0644); err != nil {
					errors <- fmt.Errorf("goroutine %d write error: %v", id, err)
					return
				}

				readData, err := os.ReadFile(cachePath)
				if err != nil {
					errors <- fmt.Errorf("goroutine %d read error: %v", id, err)
					return
				}

				if string(readData) != data {
					errors <- fmt.Errorf("goroutine %d data mismatch", id)
				}

				os.Remove(cachePath)
			}(i)
		}

		wg.Wait()
		close(errors)

		var allErrors []error
		for err := range errors {
			allErrors = append(allErrors, err)
		}

		assert.Empty(t, allErrors, "Concurrent file operations should not produce errors")
	})
}

// TestDateBasedPathConsistency tests that dated report paths work
// correctly.
func TestDateBasedPathConsistency(t *testing.T) {
	paths, err := config.GetPaths()
	require.NoError(t, err)

	testDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("dated scan report paths", func(t *testing.T) {
		path1 := paths.GetScanReportPath(testDate)
		path2 := paths.GetScanReportPath(testDate)

		// Same date should produce same path
		assert.Equal(t, path1, path2)
		assert.Contains(t, path1, "20240115")
		assert.Contains(t, path1, "reports")
	})

	t.Run("different dates produce different paths", func(t *testing.T) {
		date1 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		date2 := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

		path1 := paths.GetScanReportPath(date1)
		path2 := paths.GetScanReportPath(date2)

		assert.NotEqual(t, path1, path2)
		assert.Contains(t, path1, "20240115")
		assert.Contains(t, path2, "20240116")
	})

	t.Run("different formats produce different export paths", func(t *testing.T) {
		csvPath := paths.GetDatasetExportPath("7f3a", "cleaned", "csv")
		xlsxPath := paths.GetDatasetExportPath("7f3a", "cleaned", "xlsx")

		assert.NotEqual(t, csvPath, xlsxPath)
	})
}

// TestEnvironmentVariableOverrides tests that env vars override the
// configured directory names.
func TestEnvironmentVariableOverrides(t *testing.T) {
	t.Run("env vars override default paths", func(t *testing.T) {
		customDataDir := "/custom/data"
		customWebDir := "/custom/web"

		t.Setenv("TABSCAN_PATHS_DATA_DIR", customDataDir)
		t.Setenv("TABSCAN_PATHS_WEB_DIR", customWebDir)

		cfg, err := config.Load()
		if err != nil {
			t.Logf("Config load error (expected in bare environments): %v", err)
		}

		if cfg != nil {
			assert.Equal(t, customDataDir, cfg.Paths.DataDir)
			assert.Equal(t, customWebDir, cfg.Paths.WebDir)
		}
	})
}

// TestPathNormalization tests that paths are properly normalized.
func TestPathNormalization(t *testing.T) {
	paths, err := config.GetPaths()
	require.NoError(t, err)

	t.Run("paths are absolute and clean", func(t *testing.T) {
		assert.True(t, filepath.IsAbs(paths.DataDir))
		assert.Equal(t, filepath.Clean(paths.DataDir), paths.DataDir)
		assert.NotContains(t, filepath.ToSlash(paths.DataDir), "\\")
	})

	t.Run("path joining works correctly", func(t *testing.T) {
		testCases := []struct {
			name     string
			method   func(string) string
			input    string
			contains string
		}{
			{
				name:     "web file",
				method:   paths.GetWebFilePath,
				input:    "index.html",
				contains: "web",
			},
			{
				name:     "nested static file",
				method:   paths.GetStaticFilePath,
				input:    filepath.Join("css", "main.css"),
				contains: "static",
			},
			{
				name:     "report with subdirectory",
				method:   paths.GetReportPath,
				input:    filepath.Join("2024", "01", "scan.csv"),
				contains: "reports",
			},
			{
				name:     "dataset file",
				method:   paths.GetDatasetPath,
				input:    "survey.xlsx",
				contains: "datasets",
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				result := tc.method(tc.input)

				assert.True(t, filepath.IsAbs(result))
				assert.Contains(t, result, tc.contains)
				assert.Equal(t, filepath.Clean(result), result)
			})
		}
	})
}

// BenchmarkPathOperations benchmarks various path operations
func BenchmarkPathOperations(b *testing.B) {
	b.Run("GetPaths", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := config.GetPaths()
			if err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Concurrent GetPaths", func(b *testing.B) {
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_, err := config.GetPaths()
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	})

	b.Run("Path construction", func(b *testing.B) {
		paths, err := config.GetPaths()
		if err != nil {
			b.Fatal(err)
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = paths.GetReportPath("benchmark_summary.csv")
			_ = paths.GetDatasetPath("benchmark.csv")
			_ = paths.GetExportPath("benchmark_cleaned.csv")
		}
	})
}

// Helper to check if a path has a prefix (handles volume names on Windows)
func pathHasPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)

	pathVol := filepath.VolumeName(path)
	prefixVol := filepath.VolumeName(prefix)

	if pathVol != prefixVol {
		return false
	}

	return strings.HasPrefix(path[len(pathVol):], prefix[len(prefixVol):])
}
