package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

// createTree writes files (root-relative, '/'-separated) beneath root
func createTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
}

func sortedPaths(entries []Entry) []string {
	paths := Paths(entries)
	sort.Strings(paths)
	return paths
}

var sampleTree = map[string]string{
	"file1.txt":             "content1",
	"file2.txt":             "content2",
	"subdir/file3.txt":      "content3",
	"subdir/deep/file4.txt": "content4",
	"other/file5.txt":       "content5",
}

func TestCatalogRecursive(t *testing.T) {
	for _, walker := range []Walker{WalkerSequential, WalkerParallel} {
		t.Run(string(walker), func(t *testing.T) {
			root := t.TempDir()
			createTree(t, root, sampleTree)

			entries, err := Catalog(context.Background(), root, Options{Recursive: true, Walker: walker})
			if err != nil {
				t.Fatalf("Catalog() error = %v", err)
			}

			want := []string{
				"file1.txt",
				"file2.txt",
				"other/file5.txt",
				"subdir/deep/file4.txt",
				"subdir/file3.txt",
			}
			if got := sortedPaths(entries); !reflect.DeepEqual(got, want) {
				t.Errorf("Catalog() = %v, want %v", got, want)
			}
		})
	}
}

func TestCatalogShallow(t *testing.T) {
	for _, walker := range []Walker{WalkerSequential, WalkerParallel} {
		t.Run(string(walker), func(t *testing.T) {
			root := t.TempDir()
			createTree(t, root, sampleTree)

			entries, err := Catalog(context.Background(), root, Options{Recursive: false, Walker: walker})
			if err != nil {
				t.Fatalf("Catalog() error = %v", err)
			}

			want := []string{"file1.txt", "file2.txt"}
			if got := sortedPaths(entries); !reflect.DeepEqual(got, want) {
				t.Errorf("Catalog() = %v, want %v", got, want)
			}
		})
	}
}

func TestCatalogPathsAreNormalized(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, sampleTree)

	// A root spelled with a trailing separator and a "." component must
	// produce the same relative paths.
	spelled := root + string(filepath.Separator) + "." + string(filepath.Separator)
	entries, err := Catalog(context.Background(), spelled, Options{Recursive: true})
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}

	for _, e := range entries {
		s := e.String()
		if s == "" || s[0] == '/' || s[0] == '\\' {
			t.Errorf("entry %q should be relative without leading separator", s)
		}
		for _, c := range s {
			if c == '\\' {
				t.Errorf("entry %q contains a backslash separator", s)
			}
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(s))); err != nil {
			t.Errorf("entry %q does not resolve beneath root: %v", s, err)
		}
	}
	if len(entries) != len(sampleTree) {
		t.Errorf("Catalog() returned %d entries, want %d", len(entries), len(sampleTree))
	}
}

func TestCatalogRootWithPatternCharacters(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "a+b[1]", "(x)$^")
	createTree(t, root, map[string]string{
		"one.txt":     "1",
		"sub/two.txt": "2",
	})

	entries, err := Catalog(context.Background(), root, Options{Recursive: true})
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}

	want := []string{"one.txt", "sub/two.txt"}
	if got := sortedPaths(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("Catalog() = %v, want %v", got, want)
	}
}

func TestCatalogEmptyDirectory(t *testing.T) {
	entries, err := Catalog(context.Background(), t.TempDir(), Options{Recursive: true})
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Catalog() = %v, want empty", entries)
	}
}

func TestCatalogMissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does", "not", "exist")

	t.Run("Lenient", func(t *testing.T) {
		for _, recursive := range []bool{true, false} {
			entries, err := Catalog(context.Background(), missing, Options{Recursive: recursive})
			if err != nil {
				t.Fatalf("Catalog() error = %v, want nil", err)
			}
			if len(entries) != 0 {
				t.Errorf("Catalog() = %v, want empty", entries)
			}
		}
	})

	t.Run("Strict", func(t *testing.T) {
		_, err := Catalog(context.Background(), missing, Options{Strict: true})
		if !errors.Is(err, ErrNotADirectory) {
			t.Errorf("Catalog() error = %v, want ErrNotADirectory", err)
		}
	})

	t.Run("RootIsFile", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		entries, err := Catalog(context.Background(), file, Options{Recursive: true})
		if err != nil || len(entries) != 0 {
			t.Errorf("Catalog() = %v, %v, want empty, nil", entries, err)
		}

		_, err = Catalog(context.Background(), file, Options{Strict: true})
		if !errors.Is(err, ErrNotADirectory) {
			t.Errorf("Catalog() strict error = %v, want ErrNotADirectory", err)
		}
	})
}

func TestCatalogSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, map[string]string{
		"real.txt":     "data",
		"dir/file.txt": "data",
	})

	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "linkdir")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	for _, walker := range []Walker{WalkerSequential, WalkerParallel} {
		t.Run(string(walker), func(t *testing.T) {
			entries, err := Catalog(context.Background(), root, Options{Recursive: true, Walker: walker})
			if err != nil {
				t.Fatalf("Catalog() error = %v", err)
			}

			want := []string{"dir/file.txt", "real.txt"}
			if got := sortedPaths(entries); !reflect.DeepEqual(got, want) {
				t.Errorf("Catalog() = %v, want %v", got, want)
			}
		})
	}
}

func TestCatalogHiddenFiles(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, map[string]string{
		".hidden":          "h",
		"visible.txt":      "v",
		".cache/entry.bin": "c",
	})

	t.Run("IncludedByDefault", func(t *testing.T) {
		entries, err := Catalog(context.Background(), root, Options{Recursive: true})
		if err != nil {
			t.Fatalf("Catalog() error = %v", err)
		}
		want := []string{".cache/entry.bin", ".hidden", "visible.txt"}
		if got := sortedPaths(entries); !reflect.DeepEqual(got, want) {
			t.Errorf("Catalog() = %v, want %v", got, want)
		}
	})

	t.Run("Skipped", func(t *testing.T) {
		entries, err := Catalog(context.Background(), root, Options{Recursive: true, SkipHidden: true})
		if err != nil {
			t.Fatalf("Catalog() error = %v", err)
		}
		want := []string{"visible.txt"}
		if got := sortedPaths(entries); !reflect.DeepEqual(got, want) {
			t.Errorf("Catalog() = %v, want %v", got, want)
		}
	})
}

func TestCatalogExclude(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, map[string]string{
		"keep.txt":              "k",
		"skip.tmp":              "s",
		".git/config":           "g",
		"src/main.go":           "m",
		"src/node_modules/x.js": "x",
		"build/out.bin":         "b",
	})

	for _, walker := range []Walker{WalkerSequential, WalkerParallel} {
		t.Run(string(walker), func(t *testing.T) {
			entries, err := Catalog(context.Background(), root, Options{
				Recursive: true,
				Walker:    walker,
				Exclude:   []string{"*.tmp", ".git/", "node_modules/", "build/*"},
			})
			if err != nil {
				t.Fatalf("Catalog() error = %v", err)
			}

			want := []string{"keep.txt", "src/main.go"}
			if got := sortedPaths(entries); !reflect.DeepEqual(got, want) {
				t.Errorf("Catalog() = %v, want %v", got, want)
			}
		})
	}
}

func TestCatalogIdempotent(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, sampleTree)

	first, err := Catalog(context.Background(), root, Options{Recursive: true})
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	second, err := Catalog(context.Background(), root, Options{Recursive: true, Walker: WalkerParallel})
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}

	if !reflect.DeepEqual(sortedPaths(first), sortedPaths(second)) {
		t.Errorf("repeated catalog differs: %v vs %v", sortedPaths(first), sortedPaths(second))
	}
}

func TestCatalogCancelled(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, sampleTree)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, walker := range []Walker{WalkerSequential, WalkerParallel} {
		t.Run(string(walker), func(t *testing.T) {
			entries, err := Catalog(ctx, root, Options{Recursive: true, Walker: walker})
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Catalog() error = %v, want context.Canceled", err)
			}
			if entries != nil {
				t.Errorf("Catalog() returned partial result %v", entries)
			}
		})
	}
}

func TestEntrySegments(t *testing.T) {
	e := Entry("a/b/c.txt")
	if got := e.Segments(); !reflect.DeepEqual(got, []string{"a", "b", "c.txt"}) {
		t.Errorf("Segments() = %v", got)
	}
}
