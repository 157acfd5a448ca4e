package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/sdejongh/dupnorris/internal/platform"
	"github.com/sdejongh/dupnorris/pkg/models"
)

// ErrNotADirectory is returned in strict mode when the root is missing or
// is not a directory
var ErrNotADirectory = errors.New("catalog root is not a directory")

// Entry is a root-relative path of a regular file, '/'-separated.
// It never starts with a separator.
type Entry string

// String returns the path
func (e Entry) String() string {
	return string(e)
}

// Segments returns the path components
func (e Entry) Segments() []string {
	return strings.Split(string(e), platform.Separator)
}

// Walker selects the traversal implementation
type Walker string

const (
	// WalkerSequential lists directories one at a time in listing order
	WalkerSequential Walker = "sequential"
	// WalkerParallel traverses with concurrent directory readers; its
	// result is sorted by path
	WalkerParallel Walker = "parallel"
)

// Options configures a catalog pass
type Options struct {
	// Recursive descends into subdirectories
	Recursive bool

	// SkipHidden drops entries whose name starts with '.'
	SkipHidden bool

	// Exclude holds glob patterns; excluded directories are not descended
	Exclude []string

	// Walker selects the traversal (default sequential)
	Walker Walker

	// Strict fails with ErrNotADirectory instead of returning an empty catalog
	Strict bool
}

// Catalog enumerates the regular files beneath root.
// Paths are relative to root and '/'-separated. Symlinks, devices, pipes and
// sockets are skipped. A missing root or a root that is not a directory
// yields an empty catalog unless opts.Strict is set.
func Catalog(ctx context.Context, root string, opts Options) ([]Entry, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	info, err := os.Stat(absRoot)
	switch {
	case err != nil && errors.Is(err, fs.ErrPermission):
		return nil, &models.IOError{Op: "stat", Path: root, Err: err}
	case err != nil || !info.IsDir():
		if opts.Strict {
			return nil, fmt.Errorf("%w: %s", ErrNotADirectory, root)
		}
		return nil, nil
	}

	w := &walker{
		opts:     opts,
		exclude:  newExcludeSet(opts.Exclude),
		rootSegs: platform.Segments(absRoot),
	}

	if opts.Walker == WalkerParallel {
		return w.walkParallel(ctx, absRoot)
	}

	if err := w.walk(ctx, absRoot, w.rootSegs); err != nil {
		return nil, err
	}
	return w.entries, nil
}

// Paths converts entries to plain strings
func Paths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = string(e)
	}
	return out
}

type walker struct {
	opts     Options
	exclude  excludeSet
	rootSegs []string

	mu      sync.Mutex
	entries []Entry
}

// skip applies the hidden and exclude filters to one entry
func (w *walker) skip(name, rel string, isDir bool) bool {
	if w.opts.SkipHidden && strings.HasPrefix(name, ".") {
		return true
	}
	return w.exclude.match(rel, isDir)
}

// walk lists dir, whose components are segs, and recurses into subdirectories.
// The root segments are never modified; every emitted path is the suffix of
// its segments beyond them.
func (w *walker) walk(ctx context.Context, dir string, segs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return &models.IOError{Op: "readdir", Path: dir, Err: err}
	}

	for _, d := range dirEntries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		childSegs := append(segs[:len(segs):len(segs)], name)
		rel := platform.RelativePath(childSegs[len(w.rootSegs):])

		switch {
		case d.IsDir():
			if !w.opts.Recursive || w.skip(name, rel, true) {
				continue
			}
			if err := w.walk(ctx, filepath.Join(dir, name), childSegs); err != nil {
				return err
			}

		case d.Type().IsRegular():
			if w.skip(name, rel, false) {
				continue
			}
			w.entries = append(w.entries, Entry(rel))
		}
	}

	return nil
}

// walkParallel catalogs with fastwalk. The callback runs on several
// goroutines, so entries are collected under a mutex and sorted at the end.
func (w *walker) walkParallel(ctx context.Context, absRoot string) ([]Entry, error) {
	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	err := fastwalk.Walk(conf, absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return &models.IOError{Op: "walk", Path: p, Err: err}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if p == absRoot {
			return nil
		}

		relSegs, ok := platform.StripRoot(w.rootSegs, platform.Segments(p))
		if !ok {
			return fmt.Errorf("walked path %s is outside root %s", p, absRoot)
		}
		rel := platform.RelativePath(relSegs)

		if d.IsDir() {
			if !w.opts.Recursive || w.skip(d.Name(), rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || w.skip(d.Name(), rel, false) {
			return nil
		}

		w.mu.Lock()
		w.entries = append(w.entries, Entry(rel))
		w.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(w.entries, func(i, j int) bool {
		return w.entries[i] < w.entries[j]
	})
	return w.entries, nil
}
