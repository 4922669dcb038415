// Package score turns raw findings into prioritized, explained findings
// and ranks files into hotspots.
package score

import (
	"fmt"
	"sort"

	"github.com/AmanS2501/Syntax-Guardian/pkg/models"
)

// Severity tier cut-offs on the final score.
const (
	P0Cutoff = 0.80
	P1Cutoff = 0.60
	P2Cutoff = 0.40
)

// DefaultWarnAt is the complexity threshold used when none is configured.
const DefaultWarnAt = 10

// Scorer assigns a score, a severity tier and remediation text to findings.
type Scorer struct {
	weights Weights
	warnAt  int
}

// Option is a functional option for configuring Scorer.
type Option func(*Scorer)

// WithWeights sets the category weights.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		if w != nil {
			s.weights = w
		}
	}
}

// WithWarnAt sets the complexity threshold the complexity score is relative to.
func WithWarnAt(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.warnAt = n
		}
	}
}

// New creates a Scorer with default weights.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		weights: DefaultWeights(),
		warnAt:  DefaultWarnAt,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the weights in use.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Raw computes the clamped score of a single finding.
func (s *Scorer) Raw(f models.Finding) float64 {
	w := s.weights.For(f.Category())
	switch v := f.(type) {
	case models.ComplexityFinding:
		warn := float64(s.warnAt)
		norm := max(0, (float64(v.Value)-warn)/(2*warn))
		return clamp01(norm * w)
	case models.DuplicationFinding:
		return clamp01(v.Similarity * w)
	default:
		return clamp01(w)
	}
}

// Score produces the scored view of f.
func (s *Scorer) Score(f models.Finding) models.ScoredFinding {
	raw := s.Raw(f)
	loc := f.Location()
	extra := f.Extra()
	return models.ScoredFinding{
		ID:       f.Ident(),
		Category: f.Category(),
		Severity: SeverityFor(raw),
		Score:    raw,
		Title:    f.Title(),
		File:     loc.Path,
		Span:     loc,
		Why:      Explain(f.Category()),
		Fix:      FixHint(f.Category(), extra),
		Extra:    extra,
	}
}

// ScoreAll scores every finding, drops mirrored duplication pairs and
// returns the result ordered by score, then category, file, line and id.
func (s *Scorer) ScoreAll(findings []models.Finding) []models.ScoredFinding {
	out := make([]models.ScoredFinding, 0, len(findings))
	seenPairs := make(map[string]bool)
	for _, f := range findings {
		if d, ok := f.(models.DuplicationFinding); ok {
			key := pairKey(d)
			if seenPairs[key] {
				continue
			}
			seenPairs[key] = true
		}
		out = append(out, s.Score(f))
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Span.StartLine != b.Span.StartLine {
			return a.Span.StartLine < b.Span.StartLine
		}
		return a.ID < b.ID
	})
	return out
}

// SeverityFor maps a score to its tier.
func SeverityFor(score float64) models.Severity {
	switch {
	case score >= P0Cutoff:
		return models.SeverityP0
	case score >= P1Cutoff:
		return models.SeverityP1
	case score >= P2Cutoff:
		return models.SeverityP2
	default:
		return models.SeverityP3
	}
}

func pairKey(d models.DuplicationFinding) string {
	a, b := d.Function, d.OtherFunction
	if a == "" || b == "" {
		a = fmt.Sprintf("%s:%d", d.Span.Path, d.Span.StartLine)
		b = fmt.Sprintf("%s:%d", d.Other.Path, d.Other.StartLine)
	}
	if b < a {
		a, b = b, a
	}
	return a + "~" + b
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
