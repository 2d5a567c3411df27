// Package volume lists the contents of the data volume mounted into the
// container running envreport.
package volume

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// MarkerFile is touched on every report so the volume shows recent activity.
const MarkerFile = "touchme.txt"

// FileEntry describes one path under the volume root.
type FileEntry struct {
	Path    string    `json:"path" yaml:"path"`
	ModTime time.Time `json:"modTime" yaml:"modTime"`
	Size    int64     `json:"size" yaml:"size"`
	IsDir   bool      `json:"isDir" yaml:"isDir"`
}

// List walks root and returns every entry, root included, sorted by absolute
// path. A root that can not be walked yields an empty list.
func List(root string) []FileEntry {
	abs, err := filepath.Abs(root)
	if err != nil {
		slog.Error("unable to resolve volume path", slog.String("path", root), slog.String("error", err.Error()))
		return []FileEntry{}
	}

	entries := []FileEntry{}
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, FileEntry{
			Path:    path,
			ModTime: info.ModTime(),
			Size:    info.Size(),
			IsDir:   d.IsDir(),
		})
		return nil
	})
	if err != nil {
		slog.Error("error walking volume", slog.String("path", abs), slog.String("error", err.Error()))
		return []FileEntry{}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries
}

// Touch creates the marker file under root if needed and sets its access and
// modification times to now.
func Touch(root string, now time.Time) error {
	path := filepath.Join(root, MarkerFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("unable to touch %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to touch %s: %w", path, err)
	}
	if err := os.Chtimes(path, now, now); err != nil {
		return fmt.Errorf("unable to touch %s: %w", path, err)
	}
	return nil
}
