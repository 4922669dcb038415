// Package duplicates finds near-duplicate functions across files by
// comparing sets of normalized token shingles.
package duplicates

import (
	"context"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer"
	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/models"
)

// Name is the stage name of the detector.
const Name = "duplication"

// Defaults.
const (
	DefaultShingleSize         = 7
	DefaultSimilarityThreshold = 0.90
	DefaultMaxFunctions        = 400
	DefaultMaxChars            = 2000
	DefaultTimeBudget          = 8 * time.Second
)

// Ensure Analyzer implements analyzer.Detector.
var _ analyzer.Detector = (*Analyzer)(nil)

// Analyzer detects near-duplicate functions.
type Analyzer struct {
	k            int
	threshold    float64
	maxFunctions int
	maxChars     int
	budget       time.Duration
	now          func() time.Time
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithShingleSize sets the number of tokens per shingle.
func WithShingleSize(k int) Option {
	return func(a *Analyzer) {
		if k > 0 {
			a.k = k
		}
	}
}

// WithSimilarityThreshold sets the minimum Jaccard similarity reported.
func WithSimilarityThreshold(threshold float64) Option {
	return func(a *Analyzer) {
		if threshold > 0 && threshold <= 1 {
			a.threshold = threshold
		}
	}
}

// WithMaxFunctions caps the candidate pool.
func WithMaxFunctions(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxFunctions = n
		}
	}
}

// WithMaxChars excludes functions whose text is longer than n characters.
func WithMaxChars(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxChars = n
		}
	}
}

// WithTimeBudget bounds the wall-clock time spent comparing pairs.
func WithTimeBudget(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.budget = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates a new duplication analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		k:            DefaultShingleSize,
		threshold:    DefaultSimilarityThreshold,
		maxFunctions: DefaultMaxFunctions,
		maxChars:     DefaultMaxChars,
		budget:       DefaultTimeBudget,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements analyzer.Detector.
func (a *Analyzer) Name() string { return Name }

type candidate struct {
	fn       ir.FunctionUnit
	shingles *roaring64.Bitmap
	digest   [32]byte
}

// Candidates applies the size filters and returns the functions that will be compared.
func (a *Analyzer) Candidates(fns []ir.FunctionUnit) []ir.FunctionUnit {
	out := make([]ir.FunctionUnit, 0, min(len(fns), a.maxFunctions))
	for _, fn := range fns {
		if len(out) >= a.maxFunctions {
			break
		}
		if len([]rune(fn.Text)) <= a.maxChars {
			out = append(out, fn)
		}
	}
	return out
}

// Detect implements analyzer.Detector. Running out of time or being
// canceled is not an error: the pairs found so far are returned and the
// result is marked partial.
func (a *Analyzer) Detect(ctx context.Context, in analyzer.Input) (analyzer.Result, error) {
	start := a.now()
	fns := a.Candidates(in.Functions())

	cands := make([]candidate, len(fns))
	for i, fn := range fns {
		tokens := Normalize(fn.Text)
		cands[i] = candidate{fn: fn, shingles: Shingles(tokens, a.k), digest: digest(tokens)}
	}

	var res analyzer.Result
	for i := range cands {
		if a.now().Sub(start) > a.budget {
			res.Partial = true
			res.Note = fmt.Sprintf("time budget %s exceeded after %d of %d functions", a.budget, i, len(cands))
			break
		}
		if ctx.Err() != nil {
			res.Partial = true
			res.Note = fmt.Sprintf("canceled after %d of %d functions", i, len(cands))
			break
		}
		ci := cands[i]
		if ci.shingles.IsEmpty() {
			continue
		}
		for j := i + 1; j < len(cands); j++ {
			cj := cands[j]
			if ci.fn.Language != cj.fn.Language || ci.fn.Span.Path == cj.fn.Span.Path || cj.shingles.IsEmpty() {
				continue
			}
			exact := ci.digest == cj.digest
			sim := 1.0
			if !exact {
				sim = Jaccard(ci.shingles, cj.shingles)
			}
			if sim < a.threshold {
				continue
			}
			res.Findings = append(res.Findings, newFinding(ci.fn, cj.fn, sim, exact))
		}
	}
	return res, nil
}

func newFinding(a, b ir.FunctionUnit, sim float64, exact bool) models.DuplicationFinding {
	return models.DuplicationFinding{
		Base: models.Base{
			ID:      a.ID + "~" + b.ID + "#dup",
			Message: fmt.Sprintf("Near-duplicate functions (Jaccard %.2f)", sim),
			Span:    a.Span,
		},
		Language:      a.Language,
		Function:      a.ID,
		Other:         b.Span,
		OtherFunction: b.ID,
		Similarity:    sim,
		Exact:         exact,
	}
}
