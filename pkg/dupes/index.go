package dupes

import (
	"context"
	"fmt"

	"github.com/sdejongh/dupnorris/pkg/catalog"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/storage"
)

// AttributesOf stats every entry through the backend.
// The first failure aborts the lookup and no partial map is returned.
func AttributesOf(ctx context.Context, backend storage.Backend, entries []catalog.Entry) (map[catalog.Entry]*storage.FileInfo, error) {
	attrs := make(map[catalog.Entry]*storage.FileInfo, len(entries))

	for _, entry := range entries {
		info, err := backend.Stat(ctx, entry.String())
		if err != nil {
			return nil, err
		}
		// Replaced by a directory or device since cataloging
		if !info.IsRegular {
			return nil, &models.IOError{
				Op:   "stat",
				Path: entry.String(),
				Err:  fmt.Errorf("no longer a regular file"),
			}
		}
		attrs[entry] = info
	}

	return attrs, nil
}

// Records joins entries with their attributes, in catalog order
func Records(entries []catalog.Entry, attrs map[catalog.Entry]*storage.FileInfo) []models.FileRecord {
	records := make([]models.FileRecord, 0, len(entries))
	for i, entry := range entries {
		info, ok := attrs[entry]
		if !ok {
			continue
		}
		records = append(records, models.FileRecord{
			Path:    entry.String(),
			Size:    info.Size,
			ModTime: info.ModTime,
			Index:   i,
		})
	}
	return records
}
