// Package webfetch renders pages in headless Chrome and hands their HTML
// to the dataload package. It exists for sites that build their tables
// with JavaScript; static pages are cheaper to fetch over plain HTTP.
package webfetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"tabscan/internal/dataload"
	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

// DefaultTimeout bounds a whole render, navigation included. Script
// heavy pages are slow but anything past this is a hung site.
const DefaultTimeout = 60 * time.Second

// Fetcher drives a headless browser. One Fetcher is safe for concurrent
// use; every fetch gets its own browser context.
type Fetcher struct {
	logger   *slog.Logger
	timeout  time.Duration
	headless bool
}

// NewFetcher builds a headless fetcher with the default timeout.
func NewFetcher(logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		logger:   logger,
		timeout:  DefaultTimeout,
		headless: true,
	}
}

// WithTimeout overrides the per-fetch deadline.
func (f *Fetcher) WithTimeout(d time.Duration) *Fetcher {
	f.timeout = d
	return f
}

// WithHeadless toggles the browser window, which helps when debugging a
// selector against a live site.
func (f *Fetcher) WithHeadless(headless bool) *Fetcher {
	f.headless = headless
	return f
}

// FetchHTML navigates to pageURL and returns the rendered document. When
// waitSelector is non-empty the fetch blocks until that selector is
// visible, so script-built content has appeared before the snapshot.
func (f *Fetcher) FetchHTML(ctx context.Context, pageURL, waitSelector string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts, chromedp.Flag("headless", f.headless))

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	f.logger.InfoContext(ctx, "Fetching rendered page",
		slog.String("url", pageURL),
		slog.String("wait_selector", waitSelector),
	)

	actions := []chromedp.Action{chromedp.Navigate(pageURL)}
	if waitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
	}
	var rendered string
	actions = append(actions, chromedp.OuterHTML("html", &rendered, chromedp.ByQuery))

	start := time.Now()
	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return "", apperrors.NewNetworkError(fmt.Sprintf("render page %s", pageURL), err)
	}

	f.logger.InfoContext(ctx, "Page rendered",
		slog.String("url", pageURL),
		slog.Duration("duration", time.Since(start)),
		slog.Int("bytes", len(rendered)),
	)
	return rendered, nil
}

// FetchTable renders the page and extracts one table from the result. The
// fetch waits for a table element so the snapshot is taken after the site
// has built it.
func (f *Fetcher) FetchTable(ctx context.Context, pageURL string, opts dataload.Options) (table.RawTable, error) {
	rendered, err := f.FetchHTML(ctx, pageURL, "table")
	if err != nil {
		return table.RawTable{}, err
	}
	if opts.Name == "" {
		opts.Name = TableNameFromURL(pageURL)
	}
	return dataload.ReadHTML(strings.NewReader(rendered), opts)
}

// TableNameFromURL derives a table name from the last path segment of the
// URL, falling back to the host for bare roots.
func TableNameFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return u.Host
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
