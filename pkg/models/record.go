package models

import (
	"time"
)

// FileRecord is a cataloged file joined with its attributes
type FileRecord struct {
	// Path is the root-relative, '/'-separated path
	Path string

	// Size in bytes
	Size int64

	// ModTime is the last modification time
	ModTime time.Time

	// Index is the position of the file in the catalog.
	// It breaks ties between equal sizes and picks the representative.
	Index int
}

// DuplicateGroup is a set of files verified byte-identical to Representative
type DuplicateGroup struct {
	// Size shared by every member
	Size int64

	// Representative is the member every other member was compared against
	Representative string

	// Paths holds all members, representative first
	Paths []string
}

// Count returns the number of members
func (g DuplicateGroup) Count() int {
	return len(g.Paths)
}

// WastedBytes is the space that would be reclaimed by keeping a single copy
func (g DuplicateGroup) WastedBytes() int64 {
	if len(g.Paths) < 2 {
		return 0
	}
	return g.Size * int64(len(g.Paths)-1)
}
