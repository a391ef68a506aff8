package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tabscan/internal/dataload"
)

// FileInfo describes a discovered table file.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery locates table files under a base directory.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery instance rooted at basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// IsTableFile reports whether name has an extension one of the table
// loaders understands. Spreadsheet lock files ("~$...") and dotfiles
// are not table files even when the extension matches.
func IsTableFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	_, err := dataload.DetectFormat(base)
	return err == nil
}

// FindTableFiles returns the table files directly under dir, sorted by
// name so batch scans run in a stable order. A non-empty pattern
// restricts the result to matching file names. dir may be absolute or
// relative to the base path.
func (d *Discovery) FindTableFiles(dir string, pattern string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	if pattern != "" {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var found []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsTableFile(entry.Name()) {
			continue
		}
		if pattern != "" {
			if ok, _ := filepath.Match(pattern, entry.Name()); !ok {
				continue
			}
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found, nil
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}
