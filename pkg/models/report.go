package models

import (
	"sync/atomic"
	"time"
)

// ScanReport represents the results of one duplicate scan
type ScanReport struct {
	// Run details
	RunID     string
	Root      string
	Recursive bool
	Strategy  Strategy

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats Statistics

	// Groups found, ordered by size then representative catalog order
	Groups []DuplicateGroup

	// Overall status
	Status ScanStatus
}

// Statistics holds scan metrics
type Statistics struct {
	// Catalog
	FilesCataloged int
	BytesCataloged int64

	// Files left after size and expression filters
	FilesConsidered int

	// Size buckets
	Buckets          int
	CandidateBuckets int // Buckets holding at least two files

	// Verification, updated concurrently by bucket workers
	Comparisons   atomic.Int64
	FilesHashed   atomic.Int64
	BytesCompared atomic.Int64

	// Results
	DuplicateGroups int
	DuplicateFiles  int
	WastedBytes     int64
}

// ScanStatus represents the overall result
type ScanStatus string

const (
	// StatusClean indicates no duplicates were found
	StatusClean ScanStatus = "clean"
	// StatusDuplicates indicates at least one duplicate group was found
	StatusDuplicates ScanStatus = "duplicates"
	// StatusFailed indicates the scan failed
	StatusFailed ScanStatus = "failed"
	// StatusCancelled indicates the scan was cancelled
	StatusCancelled ScanStatus = "cancelled"
)

// ExitCode returns the appropriate exit code for the scan status
func (s ScanStatus) ExitCode() int {
	switch s {
	case StatusClean:
		return 0
	case StatusDuplicates:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}

// SetGroups stores the groups and derives the result statistics and status
func (r *ScanReport) SetGroups(groups []DuplicateGroup) {
	r.Groups = groups
	r.Stats.DuplicateGroups = len(groups)
	r.Stats.DuplicateFiles = 0
	r.Stats.WastedBytes = 0
	for _, g := range groups {
		r.Stats.DuplicateFiles += g.Count()
		r.Stats.WastedBytes += g.WastedBytes()
	}

	if len(groups) > 0 {
		r.Status = StatusDuplicates
	} else {
		r.Status = StatusClean
	}
}

// PathGroups returns the groups as plain path lists
func (r *ScanReport) PathGroups() [][]string {
	out := make([][]string, 0, len(r.Groups))
	for _, g := range r.Groups {
		paths := make([]string, len(g.Paths))
		copy(paths, g.Paths)
		out = append(out, paths)
	}
	return out
}
