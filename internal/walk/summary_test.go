package lazywalk

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSummarize(t *testing.T) {
	root := t.TempDir()
	sizes := map[string]int{
		"a.go":          10,
		"b.go":          30,
		"notes.TXT":     5,
		"Makefile":      7,
		"sub/c.go":      100,
		"sub/deep/d.md": 1,
	}
	for p, n := range sizes {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(full, make([]byte, n), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}

	report := Summarize(New(root).Walker(), 2)

	if report.FileCount != 6 {
		t.Errorf("Expected 6 files, got %d", report.FileCount)
	}
	if report.DirCount != 2 {
		t.Errorf("Expected 2 directories, got %d", report.DirCount)
	}
	if report.TotalSize != 153 {
		t.Errorf("Expected 153 bytes, got %d", report.TotalSize)
	}
	if got := report.TypeStats[".go"]; got.Count != 3 || got.Size != 140 {
		t.Errorf("Unexpected .go stats: %+v", got)
	}
	if got := report.TypeStats[".txt"]; got.Count != 1 {
		t.Errorf("Extensions should be lower-cased: %+v", report.TypeStats)
	}
	if got := report.TypeStats["(none)"]; got.Count != 1 || got.Size != 7 {
		t.Errorf("Unexpected extensionless stats: %+v", got)
	}

	if len(report.LargestFiles) != 2 {
		t.Fatalf("Expected 2 largest files, got %d", len(report.LargestFiles))
	}
	if filepath.Base(report.LargestFiles[0].Path) != "c.go" || filepath.Base(report.LargestFiles[1].Path) != "b.go" {
		t.Errorf("Unexpected largest files: %+v", report.LargestFiles)
	}
	if report.Walk.DirsListed != 3 {
		t.Errorf("Expected 3 directories listed, got %d", report.Walk.DirsListed)
	}

	text := report.String()
	for _, want := range []string{"Total Size: 153 bytes", "Files: 6", "Directories: 2", ".go"} {
		if !strings.Contains(text, want) {
			t.Errorf("Report text missing %q:\n%s", want, text)
		}
	}
}

func TestSummarizeFilesOnlyStillDescends(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "x/y/z.txt")

	report := Summarize(New(root).FilesOnly().Walker(), 0)
	if report.FileCount != 1 || report.DirCount != 0 {
		t.Errorf("Expected only the nested file, got %d files and %d dirs", report.FileCount, report.DirCount)
	}
	if report.LargestFiles != nil {
		t.Errorf("Expected no largest files with top=0")
	}
}

func TestKeepLargest(t *testing.T) {
	var files []FileInfo
	for i, size := range []int64{5, 1, 9, 3, 9, 7} {
		files = keepLargest(files, FileInfo{Path: string(rune('a' + i)), Size: size}, 3)
	}
	want := []int64{9, 9, 7}
	if len(files) != len(want) {
		t.Fatalf("Expected %d files, got %d", len(want), len(files))
	}
	for i, f := range files {
		if f.Size != want[i] {
			t.Errorf("Position %d: expected %d, got %d", i, want[i], f.Size)
		}
	}
}

func TestSaveToFile(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "a.txt")
	report := Summarize(New(root).Walker(), 1)

	out := filepath.Join(t.TempDir(), "report.json")
	if err := report.SaveToFile(out); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Report is not JSON: %v", err)
	}
	if decoded["files"] != float64(1) {
		t.Errorf("Expected files=1, got %v", decoded["files"])
	}
}
