package lazywalk

import (
	"os"
	"path/filepath"
	"testing"

	krfs "github.com/kr/fs"
)

func BenchmarkWalkDirComparison(b *testing.B) {
	tmpDir := b.TempDir()
	createTestDirectoryStructure(b, tmpDir, 5, 10)

	b.ResetTimer()

	b.Run("filepath.WalkDir", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			count := 0
			err := filepath.WalkDir(tmpDir, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				count++
				return nil
			})
			if err != nil {
				b.Fatalf("Error walking directory: %v", err)
			}
			if count == 0 {
				b.Fatal("No files found")
			}
		}
	})

	b.Run("kr/fs.Walker", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			count := 0
			walker := krfs.Walk(tmpDir)
			for walker.Step() {
				if err := walker.Err(); err != nil {
					b.Fatalf("Error walking directory: %v", err)
				}
				count++
			}
			if count == 0 {
				b.Fatal("No files found")
			}
		}
	})

	b.Run("Walker", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			count := 0
			for range New(tmpDir).Walker().All() {
				count++
			}
			if count == 0 {
				b.Fatal("No files found")
			}
		}
	})

	b.Run("Walker/FirstEntry", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, ok := New(tmpDir).Walker().Next(); !ok {
				b.Fatal("No files found")
			}
		}
	})

	b.Run("Walker/FilesOnly", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			count := 0
			for range New(tmpDir).FilesOnly().Walker().All() {
				count++
			}
			if count == 0 {
				b.Fatal("No files found")
			}
		}
	})
}

// createTestDirectoryStructure creates a test directory structure with the specified depth and files per directory
func createTestDirectoryStructure(b *testing.B, root string, depth, filesPerDir int) {
	if depth <= 0 {
		return
	}

	for i := 0; i < filesPerDir; i++ {
		filename := filepath.Join(root, "file"+string(rune('a'+i))+".txt")
		if err := os.WriteFile(filename, []byte("test"), 0644); err != nil {
			b.Fatalf("Failed to create test file: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		subdir := filepath.Join(root, "dir"+string(rune('a'+i)))
		if err := os.Mkdir(subdir, 0755); err != nil {
			b.Fatalf("Failed to create test directory: %v", err)
		}
		createTestDirectoryStructure(b, subdir, depth-1, filesPerDir)
	}
}
