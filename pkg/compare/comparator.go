package compare

import (
	"context"

	"github.com/sdejongh/dupnorris/pkg/storage"
)

// Result represents the outcome of comparing two files
type Result string

const (
	// Same indicates files are identical
	Same Result = "same"
	// Different indicates files differ
	Different Result = "different"
	// Error indicates comparison failed
	Error Result = "error"
)

// Comparison holds the result of comparing two files
type Comparison struct {
	PathA         string
	PathB         string
	Result        Result
	Reason        string
	BytesCompared int64
	Error         error
}

// Comparator decides whether two files of one backend have equal content
type Comparator interface {
	// Compare compares two files and returns the result.
	// A non-nil error means the files could not be read.
	Compare(ctx context.Context, backend storage.Backend, pathA, pathB string) (*Comparison, error)

	// Name returns the name of the comparison method
	Name() string
}
