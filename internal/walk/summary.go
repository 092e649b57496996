package lazywalk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// StorageReport contains information about storage usage below a root
type StorageReport struct {
	TotalSize    int64                `json:"total_size"`
	FileCount    int                  `json:"files"`
	DirCount     int                  `json:"dirs"`
	OtherCount   int                  `json:"other"`
	TypeStats    map[string]TypeStats `json:"types"`
	LargestFiles []FileInfo           `json:"largest,omitempty"`
	Walk         Stats                `json:"walk"`
}

// TypeStats holds statistics for a file extension
type TypeStats struct {
	Count int   `json:"count"`
	Size  int64 `json:"size"`
}

// FileInfo holds information about a single file in a report
type FileInfo struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Summarize drains w and tallies what it produced. Entries whose metadata
// has vanished since listing are counted by kind but add no size. top bounds
// the number of largest files kept.
func Summarize(w *Walker, top int) StorageReport {
	report := StorageReport{TypeStats: make(map[string]TypeStats)}

	for e := range w.All() {
		switch e.Kind() {
		case KindDir:
			report.DirCount++
			continue
		case KindFile:
			report.FileCount++
		default:
			report.OtherCount++
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		size := info.Size()
		report.TotalSize += size

		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == "" {
			ext = "(none)"
		}
		ts := report.TypeStats[ext]
		ts.Count++
		ts.Size += size
		report.TypeStats[ext] = ts

		if top > 0 {
			report.LargestFiles = keepLargest(report.LargestFiles, FileInfo{Path: e.Path(), Size: size}, top)
		}
	}

	report.Walk = w.Stats()
	return report
}

// keepLargest inserts f into files, which is sorted by descending size, and
// trims it to n.
func keepLargest(files []FileInfo, f FileInfo, n int) []FileInfo {
	i := sort.Search(len(files), func(i int) bool { return files[i].Size < f.Size })
	if i >= n {
		return files
	}
	files = append(files, FileInfo{})
	copy(files[i+1:], files[i:])
	files[i] = f
	if len(files) > n {
		files = files[:n]
	}
	return files
}

// String renders the report as text
func (r StorageReport) String() string {
	var sb strings.Builder

	sb.WriteString("Storage Report:\n")
	sb.WriteString(fmt.Sprintf("Total Size: %d bytes\n", r.TotalSize))
	sb.WriteString(fmt.Sprintf("Files: %d\n", r.FileCount))
	sb.WriteString(fmt.Sprintf("Directories: %d\n", r.DirCount))
	if r.OtherCount > 0 {
		sb.WriteString(fmt.Sprintf("Other: %d\n", r.OtherCount))
	}

	if len(r.TypeStats) > 0 {
		exts := make([]string, 0, len(r.TypeStats))
		for ext := range r.TypeStats {
			exts = append(exts, ext)
		}
		sort.Slice(exts, func(i, j int) bool {
			a, b := r.TypeStats[exts[i]], r.TypeStats[exts[j]]
			if a.Size != b.Size {
				return a.Size > b.Size
			}
			return exts[i] < exts[j]
		})
		sb.WriteString("\nBy Type:\n")
		for _, ext := range exts {
			ts := r.TypeStats[ext]
			sb.WriteString(fmt.Sprintf("  %-10s %6d files %12d bytes\n", ext, ts.Count, ts.Size))
		}
	}

	if len(r.LargestFiles) > 0 {
		sb.WriteString("\nLargest Files:\n")
		for _, f := range r.LargestFiles {
			sb.WriteString(fmt.Sprintf("  %12d  %s\n", f.Size, f.Path))
		}
	}

	if r.Walk.ListErrors > 0 || r.Walk.ResolveErrors > 0 {
		sb.WriteString(fmt.Sprintf("\nUnreadable: %d directories, %d entries\n", r.Walk.ListErrors, r.Walk.ResolveErrors))
	}
	return sb.String()
}

// SaveToFile writes the report as indented JSON
func (r StorageReport) SaveToFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	return nil
}
