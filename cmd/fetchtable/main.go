package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"tabscan/internal/config"
	"tabscan/internal/dataload"
	"tabscan/internal/exporter"
	"tabscan/internal/infrastructure"
	"tabscan/internal/nullity"
	"tabscan/internal/validation"
	"tabscan/internal/webfetch"
)

func main() {
	// Panic recovery covers browser crashes inside chromedp
	var logger *slog.Logger
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("PANIC RECOVERED: %v\n", r)
			fmt.Printf("Stack trace:\n%s\n", debug.Stack())
			if logger != nil {
				logger.Error("Fetch panicked",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
			}
			os.Exit(1)
		}
	}()

	pageURL := flag.String("url", "", "page URL to fetch the table from (required)")
	outPath := flag.String("out", "", "output CSV path (defaults to data/exports/<name>.csv)")
	tableIndex := flag.Int("table", 0, "which table on the page to read, counting from zero")
	name := flag.String("name", "", "table name override (defaults to the last URL path segment)")
	timeout := flag.Duration("timeout", 45*time.Second, "page render timeout")
	headless := flag.Bool("headless", true, "run browser headless")
	report := flag.Bool("report", true, "also write a nullity summary JSON next to the CSV")
	flag.Parse()

	if *pageURL == "" {
		fmt.Println("Error: -url is required")
		flag.Usage()
		os.Exit(1)
	}

	paths, err := config.GetPaths()
	if err != nil {
		fmt.Printf("Error: Failed to initialize paths: %v\n", err)
		os.Exit(1)
	}

	if err := paths.EnsureDirectories(); err != nil {
		fmt.Printf("Error: Failed to create required directories: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Warning: Failed to load config, using defaults: %v\n", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("fetchtable.log")
	}

	logger, err = infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Warning: Failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}

	tableName := *name
	if tableName == "" {
		tableName = webfetch.TableNameFromURL(*pageURL)
	}
	if *outPath == "" {
		*outPath = paths.GetExportPath(safeFileName(tableName) + ".csv")
	} else if abs, err := filepath.Abs(*outPath); err == nil {
		*outPath = abs
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateOutputDirectory(filepath.Dir(*outPath)); err != nil {
		logger.Error("Output directory is not usable", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Fetching table",
		slog.String("url", *pageURL),
		slog.Int("table_index", *tableIndex),
		slog.String("output", *outPath),
		slog.Duration("timeout", *timeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := webfetch.NewFetcher(logger).
		WithTimeout(*timeout).
		WithHeadless(*headless)

	raw, err := fetcher.FetchTable(ctx, *pageURL, dataload.Options{
		Name:       tableName,
		TableIndex: *tableIndex,
		NAValues:   cfg.Sentinels.NullTokens,
	})
	if err != nil {
		logger.Error("Fetch failed", slog.String("error", err.Error()))
		fmt.Printf("Error: fetch failed: %v\n", err)
		os.Exit(1)
	}

	classifier, err := nullity.NewClassifier(nullity.Policy{
		StringSentinels: cfg.Sentinels.StringSentinels,
		NumberSentinels: cfg.Sentinels.NumberSentinels,
		CaseInsensitive: cfg.Sentinels.CaseInsensitive,
	})
	if err != nil {
		logger.Error("Invalid sentinel policy", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tbl, err := classifier.ClassifyTable(raw)
	if err != nil {
		logger.Error("Classification failed", slog.String("error", err.Error()))
		fmt.Printf("Error: classification failed: %v\n", err)
		os.Exit(1)
	}

	summary := nullity.Summarize(tbl)
	fmt.Printf("Fetched table %q: %d rows x %d columns (%.1f%% missing)\n",
		tbl.Name(), summary.Rows, summary.Columns, summary.MissingRatio*100)

	reporter := exporter.NewReportExporter(paths)
	if err := reporter.ExportTableCSV(tbl, *outPath); err != nil {
		logger.Error("CSV export failed", slog.String("error", err.Error()))
		fmt.Printf("Error: CSV export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved table to %s\n", *outPath)

	if *report {
		reportPath := strings.TrimSuffix(*outPath, filepath.Ext(*outPath)) + ".nullity.json"
		if err := reporter.ExportSummaryJSON(summary, reportPath); err != nil {
			logger.Error("Summary export failed", slog.String("error", err.Error()))
			fmt.Printf("Error: summary export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Saved nullity report to %s\n", reportPath)
	}

	logger.Info("Fetch complete",
		slog.String("table", tbl.Name()),
		slog.Int("rows", summary.Rows),
		slog.Int("columns", summary.Columns),
		slog.Int("missing_cells", summary.MissingCells))
}

// safeFileName replaces path separators and spaces so a derived table
// name is usable as a file name.
func safeFileName(name string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")
	out := r.Replace(name)
	if out == "" {
		return "table"
	}
	return out
}
