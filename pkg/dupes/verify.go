package dupes

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/dupnorris/pkg/compare"
	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/storage"
)

// found is a group together with its representative's catalog index
type found struct {
	index int
	group models.DuplicateGroup
}

// verifier turns one size bucket into duplicate groups
type verifier struct {
	backend    storage.Backend
	comparator compare.Comparator
	hasher     *compare.Hasher
	limit      int
	stats      *models.Statistics
}

// verify dispatches on strategy. records share one size and are in catalog order.
func (v *verifier) verify(ctx context.Context, strategy models.Strategy, records []models.FileRecord) ([]found, error) {
	if strategy == models.StrategyHash {
		return v.hashed(ctx, records)
	}
	return v.representative(ctx, records)
}

// representative scans records in order. Each unclaimed record is compared
// against every later unclaimed record; its matches form a group and are
// claimed. A representative without matches starts no group, and the
// records it did not match stay eligible as later representatives.
func (v *verifier) representative(ctx context.Context, records []models.FileRecord) ([]found, error) {
	claimed := make([]bool, len(records))
	var groups []found

	for i := range records {
		if claimed[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var candidates []int
		for j := i + 1; j < len(records); j++ {
			if !claimed[j] {
				candidates = append(candidates, j)
			}
		}
		if len(candidates) == 0 {
			break
		}

		matched, err := v.matchRepresentative(ctx, records[i], records, candidates)
		if err != nil {
			return nil, err
		}

		group := models.DuplicateGroup{
			Size:           records[i].Size,
			Representative: records[i].Path,
			Paths:          []string{records[i].Path},
		}
		for k, j := range candidates {
			if matched[k] {
				claimed[j] = true
				group.Paths = append(group.Paths, records[j].Path)
			}
		}
		if len(group.Paths) < 2 {
			continue
		}

		claimed[i] = true
		groups = append(groups, found{index: records[i].Index, group: group})
	}

	return groups, nil
}

// matchRepresentative compares rep against each candidate concurrently.
// matched[k] reports whether records[candidates[k]] equals rep.
func (v *verifier) matchRepresentative(ctx context.Context, rep models.FileRecord, records []models.FileRecord, candidates []int) ([]bool, error) {
	matched := make([]bool, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.limit)
	for k, c := range candidates {
		other := records[c]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := v.comparator.Compare(ctx, v.backend, rep.Path, other.Path)
			if err != nil {
				return err
			}

			v.stats.Comparisons.Add(1)
			v.stats.BytesCompared.Add(result.BytesCompared)
			matched[k] = result.Result == compare.Same
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return matched, nil
}

// hashed narrows the bucket by digest before confirming byte-for-byte.
// Large files are first split on a digest of their head so that only
// files sharing a prefix are read in full.
func (v *verifier) hashed(ctx context.Context, records []models.FileRecord) ([]found, error) {
	candidates := [][]models.FileRecord{records}

	if compare.NeedsPartial(records[0].Size) {
		split, err := v.splitByDigest(ctx, records, true)
		if err != nil {
			return nil, err
		}
		candidates = split
	}

	var groups []found
	for _, c := range candidates {
		split, err := v.splitByDigest(ctx, c, false)
		if err != nil {
			return nil, err
		}
		for _, same := range split {
			confirmed, err := v.representative(ctx, same)
			if err != nil {
				return nil, err
			}
			groups = append(groups, confirmed...)
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].index < groups[j].index
	})
	return groups, nil
}

// splitByDigest hashes every record and returns the digest classes holding
// at least two records. Classes and their members keep catalog order.
func (v *verifier) splitByDigest(ctx context.Context, records []models.FileRecord, partial bool) ([][]models.FileRecord, error) {
	digests := make([]string, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.limit)
	for k, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var digest string
			var err error
			if partial {
				digest, _, err = v.hasher.PartialDigest(gctx, v.backend, rec.Path)
			} else {
				digest, _, err = v.hasher.Digest(gctx, v.backend, rec.Path)
			}
			if err != nil {
				return err
			}

			v.stats.FilesHashed.Add(1)
			digests[k] = digest
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var order []string
	classes := make(map[string][]models.FileRecord)
	for k, rec := range records {
		d := digests[k]
		if _, ok := classes[d]; !ok {
			order = append(order, d)
		}
		classes[d] = append(classes[d], rec)
	}

	var out [][]models.FileRecord
	for _, d := range order {
		if len(classes[d]) >= 2 {
			out = append(out, classes[d])
		}
	}
	return out, nil
}
