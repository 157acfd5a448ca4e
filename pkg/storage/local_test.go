package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// TestNewLocal tests the Local backend constructor
func TestNewLocal(t *testing.T) {
	t.Run("ValidDirectory", func(t *testing.T) {
		tempDir := t.TempDir()

		local, err := NewLocal(tempDir)
		if err != nil {
			t.Fatalf("NewLocal() error = %v", err)
		}
		if local == nil {
			t.Fatal("NewLocal() returned nil")
		}
		defer local.Close()

		if !filepath.IsAbs(local.Root()) {
			t.Errorf("Root() = %s, want absolute path", local.Root())
		}
	})

	t.Run("NonExistentPath", func(t *testing.T) {
		_, err := NewLocal(filepath.Join(t.TempDir(), "nonexistent"))
		if err == nil {
			t.Error("NewLocal() should fail for non-existent path")
		}
	})

	t.Run("FileNotDirectory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		_, err := NewLocal(file)
		if err == nil {
			t.Error("NewLocal() should fail for file path (not directory)")
		}
	})
}

func newTestLocal(t *testing.T, files map[string]string) *Local {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
	local, err := NewLocal(root)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	return local
}

// TestLocalStat tests the Stat method
func TestLocalStat(t *testing.T) {
	local := newTestLocal(t, map[string]string{"sub/file.txt": "hello"})
	ctx := context.Background()

	t.Run("ExistingFile", func(t *testing.T) {
		info, err := local.Stat(ctx, "sub/file.txt")
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if info.Size != 5 {
			t.Errorf("Size = %d, want 5", info.Size)
		}
		if !info.IsRegular || info.IsDir {
			t.Errorf("IsRegular = %v, IsDir = %v", info.IsRegular, info.IsDir)
		}
		if info.RelativePath != "sub/file.txt" {
			t.Errorf("RelativePath = %s, want sub/file.txt", info.RelativePath)
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := local.Stat(ctx, "missing.txt")
		var ioErr *models.IOError
		if !errors.As(err, &ioErr) {
			t.Fatalf("Stat() error = %v, want *models.IOError", err)
		}
		if ioErr.Op != "stat" || ioErr.Path != "missing.txt" {
			t.Errorf("IOError = %+v", ioErr)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Error("error should wrap fs.ErrNotExist")
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := local.Stat(cctx, "sub/file.txt"); !errors.Is(err, context.Canceled) {
			t.Errorf("Stat() error = %v, want context.Canceled", err)
		}
	})
}

// TestLocalRead tests the Read method
func TestLocalRead(t *testing.T) {
	local := newTestLocal(t, map[string]string{"file.txt": "test content"})
	ctx := context.Background()

	t.Run("ExistingFile", func(t *testing.T) {
		reader, err := local.Read(ctx, "file.txt")
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if string(data) != "test content" {
			t.Errorf("content = %q, want %q", data, "test content")
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := local.Read(ctx, "missing.txt")
		var ioErr *models.IOError
		if !errors.As(err, &ioErr) || ioErr.Op != "open" {
			t.Errorf("Read() error = %v, want open IOError", err)
		}
	})
}

// TestSameFile tests hard link detection on Stat results
func TestSameFile(t *testing.T) {
	local := newTestLocal(t, map[string]string{
		"a.txt": "same",
		"b.txt": "same",
	})
	ctx := context.Background()

	stat := func(path string) *FileInfo {
		t.Helper()
		info, err := local.Stat(ctx, path)
		if err != nil {
			t.Fatalf("Stat(%s) error = %v", path, err)
		}
		return info
	}

	if SameFile(stat("a.txt"), stat("b.txt")) {
		t.Error("distinct files with equal content should not be the same file")
	}
	if !SameFile(stat("a.txt"), stat("a.txt")) {
		t.Error("two stats of one path should be the same file")
	}

	if err := os.Link(filepath.Join(local.Root(), "a.txt"), filepath.Join(local.Root(), "link.txt")); err != nil {
		t.Skipf("hard links not supported: %v", err)
	}
	if !SameFile(stat("a.txt"), stat("link.txt")) {
		t.Error("hard link should be the same file")
	}
}

func TestSameFileNil(t *testing.T) {
	if SameFile(nil, &FileInfo{}) {
		t.Error("SameFile(nil, x) should be false")
	}
	if SameFile(&FileInfo{}, &FileInfo{}) {
		t.Error("SameFile() without platform info should be false")
	}
}
