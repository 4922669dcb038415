// Package testgap reports source files that have no test file in any of the
// conventional pytest locations.
package testgap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer"
	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/models"
)

// Name is the stage name of the detector.
const Name = "testing"

// Ensure Analyzer implements analyzer.Detector.
var _ analyzer.Detector = (*Analyzer)(nil)

// Analyzer looks for test files next to and mirroring each source file.
type Analyzer struct {
	fsys fs.FS
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithFS checks candidates against fsys instead of the input root.
func WithFS(fsys fs.FS) Option {
	return func(a *Analyzer) {
		a.fsys = fsys
	}
}

// New creates a testing-gap analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements analyzer.Detector.
func (a *Analyzer) Name() string { return Name }

// IsTestFile reports whether p is itself a test or pytest support file.
func IsTestFile(p string) bool {
	base := path.Base(p)
	return strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.py") || base == "conftest.py"
}

// Candidates returns the test paths that would cover src, most conventional first.
func Candidates(src string) []string {
	name := ir.Stem(src)
	dir := path.Dir(src)
	raw := []string{
		path.Join("tests", "test_"+name+".py"),
		path.Join("tests", dir, "test_"+name+".py"),
		path.Join("tests", name+"_test.py"),
		path.Join("tests", dir, name+"_test.py"),
		path.Join(dir, "test_"+name+".py"),
		path.Join(dir, name+"_test.py"),
	}
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Detect implements analyzer.Detector. Only fully supported languages are checked.
func (a *Analyzer) Detect(ctx context.Context, in analyzer.Input) (analyzer.Result, error) {
	fsys := a.fsys
	if fsys == nil {
		if in.Root == "" {
			return analyzer.Result{}, errors.New("testgap: no root to check against")
		}
		fsys = os.DirFS(in.Root)
	}

	var findings []models.Finding
	for _, rec := range in.Files {
		if err := ctx.Err(); err != nil {
			return analyzer.Result{}, err
		}
		if !rec.Language.FullySupported() || IsTestFile(rec.Path) {
			continue
		}
		cands := Candidates(rec.Path)
		if anyExists(fsys, cands) {
			continue
		}
		findings = append(findings, models.TestGapFinding{
			Base: models.Base{
				ID:      rec.Path + "::testgap",
				Message: fmt.Sprintf("No test file found for %s", rec.Path),
				Span:    ir.NewSpan(rec.Path, 1, max(rec.Lines, 1)),
			},
			ExpectedTest: cands[0],
			Candidates:   cands,
		})
	}
	return analyzer.Result{Findings: findings}, nil
}

func anyExists(fsys fs.FS, paths []string) bool {
	for _, p := range paths {
		if info, err := fs.Stat(fsys, p); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
