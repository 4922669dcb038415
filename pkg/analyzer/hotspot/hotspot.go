// Package hotspot ranks files where high fan-in meets high complexity.
package hotspot

import (
	"sort"

	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/models"
)

// Analyzer joins per-file complexity totals with dependency fan-in.
type Analyzer struct {
	keyFn func(path string) string
	limit int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithKeyFunc sets how a file path maps onto a dependency graph node.
// The default is the file stem.
func WithKeyFunc(fn func(path string) string) Option {
	return func(a *Analyzer) {
		if fn != nil {
			a.keyFn = fn
		}
	}
}

// WithLimit caps the number of returned entries (0 = no limit).
func WithLimit(n int) Option {
	return func(a *Analyzer) {
		a.limit = n
	}
}

// New creates a new hotspot analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{keyFn: ir.Stem}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Rank sums complexity-finding values per file, looks up each file's fan-in
// and orders files by norm(fan_in) * norm(complexity), where norm divides by
// the maximum over all files (0 when the maximum is 0).
// Ties fall back to fan-in, then complexity, then path.
func (a *Analyzer) Rank(findings []models.ComplexityFinding, fanIn map[string]int) []models.HotspotEntry {
	totals := make(map[string]int)
	for _, f := range findings {
		totals[f.Span.Path] += f.Value
	}
	if len(totals) == 0 {
		return []models.HotspotEntry{}
	}

	entries := make([]models.HotspotEntry, 0, len(totals))
	maxFanIn, maxComplexity := 0, 0
	for p, cc := range totals {
		fi := fanIn[a.keyFn(p)]
		maxFanIn = max(maxFanIn, fi)
		maxComplexity = max(maxComplexity, cc)
		entries = append(entries, models.HotspotEntry{Path: p, FanIn: fi, Complexity: cc})
	}

	for i := range entries {
		entries[i].Score = normalize(entries[i].FanIn, maxFanIn) * normalize(entries[i].Complexity, maxComplexity)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.FanIn != b.FanIn {
			return a.FanIn > b.FanIn
		}
		if a.Complexity != b.Complexity {
			return a.Complexity > b.Complexity
		}
		return a.Path < b.Path
	})

	if a.limit > 0 && len(entries) > a.limit {
		entries = entries[:a.limit]
	}
	return entries
}

func normalize(v, maxV int) float64 {
	if maxV <= 0 {
		return 0
	}
	return float64(v) / float64(maxV)
}
