// Package complexity flags functions whose cyclomatic complexity reaches a
// configured threshold.
package complexity

import (
	"context"
	"fmt"
	"sort"

	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer"
	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/models"
)

// Name is the stage name of the detector.
const Name = "complexity"

// DefaultWarnAt is the complexity at which a function is reported.
const DefaultWarnAt = 10

// Ensure Analyzer implements analyzer.Detector.
var _ analyzer.Detector = (*Analyzer)(nil)

// Analyzer computes cyclomatic complexity from the branch counts recorded in the IR.
type Analyzer struct {
	warnAt int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithWarnAt sets the reporting threshold. Values below 1 are ignored.
func WithWarnAt(n int) Option {
	return func(a *Analyzer) {
		if n >= 1 {
			a.warnAt = n
		}
	}
}

// New creates a new complexity analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{warnAt: DefaultWarnAt}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements analyzer.Detector.
func (a *Analyzer) Name() string { return Name }

// WarnAt returns the active threshold.
func (a *Analyzer) WarnAt() int { return a.warnAt }

// Cyclomatic returns 1 + the number of decision points of fn.
func Cyclomatic(fn ir.FunctionUnit) int {
	return 1 + fn.BranchCount()
}

// Detect implements analyzer.Detector.
func (a *Analyzer) Detect(ctx context.Context, in analyzer.Input) (analyzer.Result, error) {
	var findings []models.Finding
	for _, mod := range in.Modules {
		if err := ctx.Err(); err != nil {
			return analyzer.Result{}, err
		}
		for _, fn := range mod.Functions {
			cc := Cyclomatic(fn)
			if cc < a.warnAt {
				continue
			}
			findings = append(findings, models.ComplexityFinding{
				Base: models.Base{
					ID:      fn.ID + "#complexity",
					Message: fmt.Sprintf("High cyclomatic complexity: %d (≥ %d)", cc, a.warnAt),
					Span:    fn.Span,
				},
				Function:  fn.Name,
				Value:     cc,
				Threshold: a.warnAt,
			})
		}
	}
	return analyzer.Result{Findings: findings}, nil
}

// Summary aggregates complexity over every function of a run.
type Summary struct {
	Functions int     `json:"functions"`
	Max       int     `json:"max"`
	Average   float64 `json:"average"`
	P50       int     `json:"p50"`
	P90       int     `json:"p90"`
}

// Summarize computes the complexity distribution of fns.
func Summarize(fns []ir.FunctionUnit) Summary {
	if len(fns) == 0 {
		return Summary{}
	}
	values := make([]int, len(fns))
	total := 0
	for i, fn := range fns {
		values[i] = Cyclomatic(fn)
		total += values[i]
	}
	sort.Ints(values)
	return Summary{
		Functions: len(fns),
		Max:       values[len(values)-1],
		Average:   float64(total) / float64(len(values)),
		P50:       percentile(values, 50),
		P90:       percentile(values, 90),
	}
}

func percentile(sorted []int, p int) int {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
