package catalog

import "testing"

func TestExcludeSetMatch(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		isDir    bool
		want     bool
	}{
		{"NoPatterns", nil, "a.txt", false, false},
		{"BasenameGlob", []string{"*.tmp"}, "dir/x.tmp", false, true},
		{"BasenameGlobMiss", []string{"*.tmp"}, "dir/x.txt", false, false},
		{"DirPatternOnDir", []string{".git/"}, ".git", true, true},
		{"DirPatternNested", []string{"node_modules/"}, "src/node_modules", true, true},
		{"DirPatternOnFile", []string{"cache/"}, "cache", false, false},
		{"PathPattern", []string{"build/*"}, "build/out.bin", false, true},
		{"PathPatternOtherDir", []string{"build/*"}, "src/out.bin", false, false},
		{"AnyDepthName", []string{"**/*.bak"}, "a/b/c.bak", false, true},
		{"AnyDepthPath", []string{"**/cache/*.bin"}, "x/y/cache/z.bin", false, true},
		{"AnyDepthPathMiss", []string{"**/cache/*.bin"}, "x/y/z.bin", false, false},
		{"BackslashPattern", []string{`build\*`}, "build/out.bin", false, true},
		{"EmptyPattern", []string{"", "  "}, "a.txt", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := newExcludeSet(tt.patterns)
			if got := set.match(tt.path, tt.isDir); got != tt.want {
				t.Errorf("match(%q, %v) = %v, want %v", tt.path, tt.isDir, got, tt.want)
			}
		})
	}
}
