package dupes

import (
	"sort"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// Bucket is a maximal run of records sharing one size
type Bucket struct {
	Size    int64
	Records []models.FileRecord
}

// Candidate reports whether the bucket can hold a duplicate
func (b Bucket) Candidate() bool {
	return len(b.Records) >= 2
}

// OrderBySize returns a copy of records sorted by ascending size.
// Records of equal size keep their relative order.
func OrderBySize(records []models.FileRecord) []models.FileRecord {
	ordered := make([]models.FileRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Size < ordered[j].Size
	})
	return ordered
}

// Buckets partitions a size-ordered sequence into equal-size runs
func Buckets(ordered []models.FileRecord) []Bucket {
	var buckets []Bucket
	for start := 0; start < len(ordered); {
		end := start + 1
		for end < len(ordered) && ordered[end].Size == ordered[start].Size {
			end++
		}
		buckets = append(buckets, Bucket{
			Size:    ordered[start].Size,
			Records: ordered[start:end:end],
		})
		start = end
	}
	return buckets
}
