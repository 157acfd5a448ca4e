// Package dupes finds groups of byte-identical files beneath a directory.
//
// A scan catalogs the tree, looks up each file's size, orders the files by
// size and verifies every run of equal-size files by content. Only files of
// equal size are ever read.
package dupes

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/dupnorris/pkg/catalog"
	"github.com/sdejongh/dupnorris/pkg/compare"
	"github.com/sdejongh/dupnorris/pkg/filter"
	"github.com/sdejongh/dupnorris/pkg/logging"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/output"
	"github.com/sdejongh/dupnorris/pkg/ratelimit"
	"github.com/sdejongh/dupnorris/pkg/storage"
)

// DefaultMaxWorkers is used when Options.MaxWorkers is not positive
const DefaultMaxWorkers = 5

// DefaultBufferSize is the read buffer used for comparisons and hashing (64KB)
const DefaultBufferSize = 64 * 1024

// Options configures a scan
type Options struct {
	// Catalog controls the traversal
	Catalog catalog.Options

	// Strategy selects how equal-size files are verified
	Strategy models.Strategy

	// MaxWorkers bounds concurrent bucket verification
	MaxWorkers int

	// MinSize drops files smaller than this many bytes before bucketing
	MinSize int64

	// Filter drops records it does not match before bucketing
	Filter *filter.Filter

	// BufferSize for reads
	BufferSize int

	// HashAlgorithm used by the hash strategy
	HashAlgorithm compare.Algorithm

	// BandwidthLimit caps content reads in bytes per second (0 = unlimited)
	BandwidthLimit int64
}

// Finder runs duplicate scans over one root
type Finder struct {
	root      string
	opts      Options
	formatter output.Formatter
	logger    logging.Logger

	openBackend func(root string) (storage.Backend, error)
}

// NewFinder creates a finder. formatter and logger may be nil.
func NewFinder(root string, opts Options, formatter output.Formatter, logger logging.Logger) *Finder {
	if opts.Strategy == "" {
		opts.Strategy = models.StrategyRepresentative
	}
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = DefaultMaxWorkers
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.HashAlgorithm == "" {
		opts.HashAlgorithm = compare.SHA256
	}

	return &Finder{
		root:      root,
		opts:      opts,
		formatter: formatter,
		logger:    logger,
		openBackend: func(root string) (storage.Backend, error) {
			return storage.NewLocal(root)
		},
	}
}

// FindDuplicates returns the duplicate groups beneath root as plain path
// lists. Each group has at least two members, representative first.
func FindDuplicates(ctx context.Context, root string, recursive bool) ([][]string, error) {
	finder := NewFinder(root, Options{
		Catalog: catalog.Options{Recursive: recursive},
	}, nil, nil)

	report, err := finder.Find(ctx)
	if err != nil {
		return nil, err
	}
	return report.PathGroups(), nil
}

// Find runs one scan. On failure the returned report carries the failed or
// cancelled status and no groups.
func (f *Finder) Find(ctx context.Context) (*models.ScanReport, error) {
	report := &models.ScanReport{
		RunID:     uuid.NewString(),
		Root:      f.root,
		Recursive: f.opts.Catalog.Recursive,
		Strategy:  f.opts.Strategy,
		StartTime: time.Now(),
	}

	logger := f.logger
	if logger != nil {
		logger = logger.WithFields(logging.Fields{"run_id": report.RunID})
		logger.Info(ctx, "Starting duplicate scan", logging.Fields{
			"root":        f.root,
			"recursive":   f.opts.Catalog.Recursive,
			"strategy":    f.opts.Strategy,
			"max_workers": f.opts.MaxWorkers,
		})
	}

	if err := f.opts.Strategy.Validate(); err != nil {
		return f.fail(ctx, report, logger, err)
	}

	groups, err := f.scan(ctx, report, logger)
	if err != nil {
		return f.fail(ctx, report, logger, err)
	}

	report.SetGroups(groups)
	f.finish(report)

	if f.formatter != nil {
		f.formatter.Complete(report)
	}

	if logger != nil {
		logger.Info(ctx, "Duplicate scan completed", logging.Fields{
			"duration":         report.Duration.String(),
			"status":           report.Status,
			"files_cataloged":  report.Stats.FilesCataloged,
			"buckets":          report.Stats.Buckets,
			"comparisons":      report.Stats.Comparisons.Load(),
			"duplicate_groups": report.Stats.DuplicateGroups,
			"wasted_bytes":     report.Stats.WastedBytes,
		})
	}

	return report, nil
}

func (f *Finder) scan(ctx context.Context, report *models.ScanReport, logger logging.Logger) ([]models.DuplicateGroup, error) {
	// Phase 1: catalog
	entries, err := catalog.Catalog(ctx, f.root, f.opts.Catalog)
	if err != nil {
		return nil, err
	}
	report.Stats.FilesCataloged = len(entries)

	if len(entries) == 0 {
		if f.formatter != nil {
			f.formatter.Start(nil, 0, 0, 0)
		}
		return nil, nil
	}

	backend, err := f.openBackend(f.root)
	if err != nil {
		return nil, fmt.Errorf("failed to open root: %w", err)
	}
	defer backend.Close()
	backend = storage.NewThrottled(backend, ratelimit.NewLimiter(f.opts.BandwidthLimit))

	// Phase 2: sizes
	attrs, err := AttributesOf(ctx, backend, entries)
	if err != nil {
		return nil, err
	}
	records := Records(entries, attrs)
	for _, rec := range records {
		report.Stats.BytesCataloged += rec.Size
	}

	records, err = f.selectRecords(records)
	if err != nil {
		return nil, err
	}
	report.Stats.FilesConsidered = len(records)

	// Phase 3: buckets
	buckets := Buckets(OrderBySize(records))
	report.Stats.Buckets = len(buckets)

	var candidates []Bucket
	var candidateBytes int64
	for _, b := range buckets {
		if b.Candidate() {
			candidates = append(candidates, b)
			candidateBytes += b.Size * int64(len(b.Records))
		}
	}
	report.Stats.CandidateBuckets = len(candidates)

	if logger != nil {
		logger.Debug(ctx, "Size buckets built", logging.Fields{
			"files":             len(records),
			"buckets":           len(buckets),
			"candidate_buckets": len(candidates),
		})
	}

	if f.formatter != nil {
		f.formatter.Start(nil, len(records), candidateBytes, len(candidates))
	}

	// Phase 4: verify buckets concurrently, results keyed by bucket index
	hasher, err := compare.NewHasher(f.opts.HashAlgorithm, f.opts.BufferSize)
	if err != nil {
		return nil, err
	}
	v := &verifier{
		backend:    backend,
		comparator: compare.NewBinaryComparator(f.opts.BufferSize),
		hasher:     hasher,
		limit:      f.opts.MaxWorkers,
		stats:      &report.Stats,
	}

	results := make([][]found, len(candidates))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.MaxWorkers)
	for k, bucket := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			groups, err := v.verify(gctx, f.opts.Strategy, bucket.Records)
			if err != nil {
				return err
			}
			results[k] = groups

			if f.formatter != nil {
				f.formatter.Progress(output.ProgressUpdate{
					Type:          "bucket_complete",
					Size:          bucket.Size,
					Files:         len(bucket.Records),
					GroupsFound:   len(groups),
					CurrentBucket: int(done.Add(1)),
					TotalBuckets:  len(candidates),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var groups []models.DuplicateGroup
	for _, bucketGroups := range results {
		for _, g := range bucketGroups {
			if logger != nil {
				logger.Debug(ctx, "Duplicate group", logging.Fields{
					"size":           g.group.Size,
					"representative": g.group.Representative,
					"members":        g.group.Count(),
				})
			}
			groups = append(groups, g.group)
		}
	}

	return groups, nil
}

// selectRecords applies the size and expression filters, keeping order
func (f *Finder) selectRecords(records []models.FileRecord) ([]models.FileRecord, error) {
	if f.opts.MinSize <= 0 && f.opts.Filter == nil {
		return records, nil
	}

	selected := records[:0:0]
	for _, rec := range records {
		if rec.Size < f.opts.MinSize {
			continue
		}
		ok, err := f.opts.Filter.Match(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			selected = append(selected, rec)
		}
	}
	return selected, nil
}

func (f *Finder) fail(ctx context.Context, report *models.ScanReport, logger logging.Logger, err error) (*models.ScanReport, error) {
	report.Groups = nil
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		report.Status = models.StatusCancelled
	} else {
		report.Status = models.StatusFailed
	}
	f.finish(report)

	if f.formatter != nil {
		f.formatter.Error(err)
	}
	if logger != nil {
		logger.Error(ctx, "Duplicate scan failed", err, logging.Fields{
			"status": report.Status,
		})
	}

	return report, err
}

func (f *Finder) finish(report *models.ScanReport) {
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
}
