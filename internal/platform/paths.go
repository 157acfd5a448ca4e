package platform

import (
	"path/filepath"
	"runtime"
	"strings"
)

// Separator is the separator used in every root-relative path we emit
const Separator = "/"

// NormalizePath normalizes a path for the current platform
func NormalizePath(path string) string {
	// Convert to platform-specific separators
	normalized := filepath.Clean(path)

	// On Windows, ensure UNC paths are preserved
	if runtime.GOOS == "windows" {
		if strings.HasPrefix(path, "\\\\") && !strings.HasPrefix(normalized, "\\\\") {
			normalized = "\\\\" + normalized
		}
	}

	return normalized
}

// NormalizeSeparators rewrites platform separators to Separator
func NormalizeSeparators(path string) string {
	return filepath.ToSlash(path)
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, "\\\\") || strings.HasPrefix(path, "//")
}

// Join joins a root directory and a root-relative path
func Join(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

// Segments splits a path into its components.
// The volume name (if any) is kept as the first segment; empty and "."
// components are dropped so "/a//b/./c" and "/a/b/c" yield the same result.
func Segments(path string) []string {
	vol := filepath.VolumeName(path)
	rest := NormalizeSeparators(path[len(vol):])

	segs := make([]string, 0, strings.Count(rest, Separator)+1)
	if vol != "" {
		segs = append(segs, vol)
	}
	for _, s := range strings.Split(rest, Separator) {
		if s == "" || s == "." {
			continue
		}
		segs = append(segs, s)
	}
	return segs
}

// StripRoot removes root from the front of path, comparing whole segments.
// It reports false when path does not lie beneath root.
func StripRoot(root, path []string) ([]string, bool) {
	if len(path) < len(root) {
		return nil, false
	}
	for i := range root {
		if root[i] != path[i] {
			return nil, false
		}
	}
	return path[len(root):], true
}

// RelativePath joins segments with Separator; the result never starts with it
func RelativePath(segs []string) string {
	return strings.Join(segs, Separator)
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}
	if strings.ContainsRune(path, 0) {
		return &PathError{Path: path, Message: "path contains a NUL byte"}
	}

	// Check for invalid characters based on OS
	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(path, char) && !IsUNCPath(path) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
