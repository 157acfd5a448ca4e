// Package filter narrows the set of cataloged files considered for
// duplicate detection using a boolean expression, e.g.
//
//	size > 1024 && ext != ".log"
package filter

import (
	"fmt"
	"path"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// Env is the set of variables visible to a filter expression
type Env struct {
	Path  string    `expr:"path"`
	Name  string    `expr:"name"`
	Ext   string    `expr:"ext"`
	Dir   string    `expr:"dir"`
	Size  int64     `expr:"size"`
	MTime time.Time `expr:"mtime"`
}

// Filter is a compiled filter expression
type Filter struct {
	source  string
	program *vm.Program
}

// Compile parses and type-checks a filter expression.
// An empty source yields a nil filter that matches everything.
func Compile(source string) (*Filter, error) {
	if source == "" {
		return nil, nil
	}

	program, err := expr.Compile(source, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, &models.ValidationError{Field: "filter", Message: err.Error()}
	}

	return &Filter{source: source, program: program}, nil
}

// EnvFor builds the expression environment for a record
func EnvFor(rec models.FileRecord) Env {
	dir := path.Dir(rec.Path)
	if dir == "." {
		dir = ""
	}
	return Env{
		Path:  rec.Path,
		Name:  path.Base(rec.Path),
		Ext:   path.Ext(rec.Path),
		Dir:   dir,
		Size:  rec.Size,
		MTime: rec.ModTime,
	}
}

// Match reports whether the record satisfies the filter
func (f *Filter) Match(rec models.FileRecord) (bool, error) {
	if f == nil {
		return true, nil
	}

	res, err := expr.Run(f.program, EnvFor(rec))
	if err != nil {
		return false, fmt.Errorf("filter %q on %s: %w", f.source, rec.Path, err)
	}

	ok, isBool := res.(bool)
	if !isBool {
		return false, fmt.Errorf("filter %q returned %T, want bool", f.source, res)
	}
	return ok, nil
}

// String returns the expression source
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}
