package storage

import (
	"context"
	"io"
	"os"
	"time"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path         string
	RelativePath string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	IsRegular    bool

	// sys is the platform info, kept for identity checks
	sys os.FileInfo
}

// SameFile reports whether a and b describe the same underlying file
// (hard links or repeated stats of one path)
func SameFile(a, b *FileInfo) bool {
	if a == nil || b == nil || a.sys == nil || b.sys == nil {
		return false
	}
	return os.SameFile(a.sys, b.sys)
}

// Backend defines the read-only operations the duplicate finder needs.
// Paths are root-relative and '/'-separated.
type Backend interface {
	// Root returns the absolute root directory
	Root() string

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Close releases any resources held by the backend
	Close() error
}
