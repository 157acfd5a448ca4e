package catalog

import (
	"path"
	"strings"
)

// excludeRule is one normalized exclude pattern
type excludeRule struct {
	pattern  string
	dirOnly  bool // pattern ended with '/'
	anyDepth bool // pattern started with "**/"
	hasSlash bool
}

// excludeSet matches root-relative, '/'-separated paths against glob patterns.
// Patterns support:
//   - Simple glob patterns: *.tmp, *.log
//   - Directory patterns: .git/, node_modules/
//   - Path patterns: build/*, docs/*.md
//   - Any depth: **/cache, **/*.bak
type excludeSet []excludeRule

func newExcludeSet(patterns []string) excludeSet {
	set := make(excludeSet, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
		if p == "" {
			continue
		}

		rule := excludeRule{}
		if strings.HasSuffix(p, "/") {
			rule.dirOnly = true
			p = strings.TrimSuffix(p, "/")
		}
		if strings.HasPrefix(p, "**/") {
			rule.anyDepth = true
			p = strings.TrimPrefix(p, "**/")
		}
		rule.pattern = p
		rule.hasSlash = strings.Contains(p, "/")
		set = append(set, rule)
	}
	return set
}

// match reports whether rel (a file or directory) is excluded
func (s excludeSet) match(rel string, isDir bool) bool {
	if len(s) == 0 {
		return false
	}

	base := path.Base(rel)
	for _, r := range s {
		if r.dirOnly {
			// Directories are pruned during the walk, so only the directory
			// itself needs matching; files never match a directory rule.
			if isDir && (globMatch(r.pattern, base) || globMatch(r.pattern, rel)) {
				return true
			}
			continue
		}

		switch {
		case r.anyDepth && r.hasSlash:
			if matchSuffix(rel, r.pattern) {
				return true
			}
		case r.anyDepth || !r.hasSlash:
			if globMatch(r.pattern, base) {
				return true
			}
		default:
			if globMatch(r.pattern, rel) {
				return true
			}
		}
	}

	return false
}

// matchSuffix checks the trailing components of rel against a multi-segment pattern
func matchSuffix(rel, pattern string) bool {
	want := strings.Count(pattern, "/") + 1
	parts := strings.Split(rel, "/")
	if len(parts) < want {
		return false
	}
	return globMatch(pattern, strings.Join(parts[len(parts)-want:], "/"))
}

func globMatch(pattern, name string) bool {
	matched, _ := path.Match(pattern, name)
	return matched
}
