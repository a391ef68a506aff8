package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"tabscan/internal/config"
	"tabscan/internal/dataload"
	"tabscan/internal/exporter"
	"tabscan/internal/files"
	"tabscan/internal/infrastructure"
	"tabscan/internal/services"
	"tabscan/internal/validation"
)

func main() {
	in := flag.String("in", "", "input directory or single table file (defaults to data/datasets relative to executable)")
	outDir := flag.String("out", "", "output directory for nullity reports (defaults to data/reports relative to executable)")
	pattern := flag.String("pattern", "", "restrict directory scans to file names matching a glob pattern")
	naList := flag.String("na", "", "comma-separated cell texts treated as null (defaults to the configured token list)")
	sheet := flag.String("sheet", "", "worksheet name for .xlsx files (defaults to the first sheet)")
	delimiter := flag.String("delimiter", "", "field separator for .csv files (defaults to comma)")
	flag.Parse()

	// Initialize paths first to get default directories
	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	// Use centralized directories as defaults if not specified
	if *in == "" {
		*in = paths.DatasetsDir
	}
	if *outDir == "" {
		*outDir = paths.ReportsDir
	} else if abs, err := filepath.Abs(*outDir); err == nil {
		*outDir = abs
	}

	// Ensure all required directories exist
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("scan.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	logger.Info("Starting batch nullity scan",
		slog.String("input", *in),
		slog.String("output_dir", *outDir),
		slog.Int("workers", cfg.Scan.Workers))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateOutputDirectory(*outDir); err != nil {
		logger.Error("Output directory is not usable", slog.String("error", err.Error()))
		os.Exit(1)
	}

	inputs, err := collectInputs(validator, *in, *pattern)
	if err != nil {
		logger.Error("Failed to resolve scan inputs", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Table files discovered", slog.Int("count", len(inputs)))
	fmt.Printf("Found %d table files\n", len(inputs))

	writer := exporter.NewCSVWriter(paths)
	summaryPath := filepath.Join(*outDir, "scan_summary.csv")

	// Graceful exit if no table files found
	if len(inputs) == 0 {
		logger.Warn("No table files found in input directory",
			slog.String("input", *in),
			slog.String("extensions", ".csv .tsv .xlsx .xlsm .html .htm"))

		if err := writer.WriteCSV(summaryPath, exporter.WriteOptions{Headers: summaryHeaders()}); err != nil {
			logger.Error("Failed to create empty summary", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Println("Scan complete: 0 files")
		return
	}

	datasets, err := services.NewDatasetServiceWithPaths(cfg, paths, logger)
	if err != nil {
		logger.Error("Failed to initialize dataset service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scans, err := services.NewScanServiceWithPaths(cfg, paths, datasets, logger)
	if err != nil {
		logger.Error("Failed to initialize scan service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	opts := dataload.Options{Sheet: *sheet}
	if *naList != "" {
		opts.NAValues = strings.Split(*naList, ",")
	}
	if *delimiter != "" {
		opts.Delimiter = []rune(*delimiter)[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := scans.ScanFiles(ctx, inputs, opts)

	reporter := exporter.NewReportExporter(paths)
	rows := make([][]string, 0, len(results))
	failed := 0

	for i, res := range results {
		base := filepath.Base(res.Path)

		if res.Err != nil {
			failed++
			fmt.Printf("Scan failed %d of %d: %s (%v)\n", i+1, len(results), base, res.Err)
			rows = append(rows, []string{base, "", "", "", "", "", "", res.Err.Error()})
			continue
		}

		fmt.Printf("Scanned %d of %d: %s (%.1f%% missing)\n",
			i+1, len(results), base, res.Summary.MissingRatio*100)

		reportPath := filepath.Join(*outDir, reportName(base))
		if err := reporter.ExportSummaryJSON(*res.Summary, reportPath); err != nil {
			logger.Error("Failed to write nullity report",
				slog.String("file", base),
				slog.String("error", err.Error()))
		}

		rows = append(rows, []string{
			base,
			res.Table,
			strconv.Itoa(res.Summary.Rows),
			strconv.Itoa(res.Summary.Columns),
			strconv.Itoa(res.Summary.TotalCells),
			strconv.Itoa(res.Summary.MissingCells),
			strconv.FormatFloat(res.Summary.MissingRatio, 'f', 4, 64),
			"",
		})
	}

	if err := writer.WriteCSV(summaryPath, exporter.WriteOptions{Headers: summaryHeaders(), Records: rows}); err != nil {
		logger.Error("Failed to write scan summary", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Batch scan complete",
		slog.Int("files", len(results)),
		slog.Int("failed", failed),
		slog.String("summary", summaryPath))
	fmt.Printf("Scan complete: %d files, %d failed\n", len(results), failed)

	if failed > 0 {
		os.Exit(1)
	}
}

// collectInputs resolves the -in argument to the list of files to scan.
// A single file is validated directly; a directory goes through table
// file discovery with the optional name pattern.
func collectInputs(validator *validation.FileValidator, in, pattern string) ([]string, error) {
	if info, err := os.Stat(in); err == nil && !info.IsDir() {
		if err := validator.ValidateTableFile(in); err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(in)
		if err != nil {
			return nil, err
		}
		return []string{abs}, nil
	}

	if err := validator.ValidateInputDirectory(in, pattern); err != nil {
		return nil, err
	}

	found, err := files.NewDiscovery(in).FindTableFiles(".", pattern)
	if err != nil {
		return nil, err
	}
	inputs := make([]string, 0, len(found))
	for _, f := range found {
		inputs = append(inputs, f.Path)
	}
	return inputs, nil
}

func reportName(base string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".nullity.json"
}

func summaryHeaders() []string {
	return []string{"file", "table", "rows", "columns", "total_cells", "missing_cells", "missing_ratio", "error"}
}
