package output

import (
	"io"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// ProgressUpdate represents a progress notification during a scan
type ProgressUpdate struct {
	Type          string // "bucket_complete"
	Size          int64  // Size shared by the bucket's files
	Files         int    // Files in the bucket
	GroupsFound   int    // Duplicate groups the bucket produced
	CurrentBucket int    // Buckets finished so far
	TotalBuckets  int
	Error         error
}

// Formatter defines the interface for output formatting.
// Progress may be called from several goroutines at once.
type Formatter interface {
	// Start initializes the formatter once buckets are known.
	// A nil writer keeps the writer of a previous Start, or stdout.
	Start(writer io.Writer, totalFiles int, totalBytes int64, totalBuckets int) error

	// Progress reports one verified bucket
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays the groups and summary
	Complete(report *models.ScanReport) error

	// Error reports a scan failure
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for format ("human", "json" or "progress").
// quiet limits human output to the group listing.
func New(format string, quiet bool) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	case "progress":
		return NewProgressFormatter()
	default:
		f := NewHumanFormatter()
		f.Quiet = quiet
		return f
	}
}
