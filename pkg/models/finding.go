package models

import (
	"fmt"

	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
)

// Category groups findings by the detector that produced them.
type Category string

const (
	CategorySecurity      Category = "security"
	CategoryComplexity    Category = "complexity"
	CategoryDuplication   Category = "duplication"
	CategoryPerformance   Category = "performance"
	CategoryDocumentation Category = "documentation"
	CategoryTesting       Category = "testing"
)

// Categories lists every category in report order.
var Categories = []Category{
	CategorySecurity,
	CategoryComplexity,
	CategoryDuplication,
	CategoryPerformance,
	CategoryDocumentation,
	CategoryTesting,
}

// Finding is the common view over every per-category finding type.
type Finding interface {
	Category() Category
	Ident() string
	Title() string
	Location() ir.Span
	Extra() map[string]any
}

// Base holds the fields shared by all findings.
type Base struct {
	ID      string  `json:"id"`
	Message string  `json:"message"`
	Span    ir.Span `json:"span"`
}

func (b Base) Ident() string     { return b.ID }
func (b Base) Title() string     { return b.Message }
func (b Base) Location() ir.Span { return b.Span }

// ComplexityFinding flags a function whose cyclomatic complexity reached the threshold.
type ComplexityFinding struct {
	Base
	Function  string `json:"function"`
	Value     int    `json:"value"`
	Threshold int    `json:"threshold"`
}

func (ComplexityFinding) Category() Category { return CategoryComplexity }

func (f ComplexityFinding) Extra() map[string]any {
	return map[string]any{"function": f.Function, "value": f.Value, "threshold": f.Threshold}
}

// DuplicationFinding pairs two near-identical functions from different files.
// Span is the first function, Other the second. Function and OtherFunction
// carry their function ids. Exact is set when both normalize to the same
// token stream.
type DuplicationFinding struct {
	Base
	Language      ir.Language `json:"language"`
	Function      string      `json:"function"`
	Other         ir.Span     `json:"other"`
	OtherFunction string      `json:"other_function"`
	Similarity    float64     `json:"similarity"`
	Exact         bool        `json:"exact"`
}

func (DuplicationFinding) Category() Category { return CategoryDuplication }

func (f DuplicationFinding) Extra() map[string]any {
	return map[string]any{
		"other_function":   f.OtherFunction,
		"other_file":       f.Other.Path,
		"other_start_line": f.Other.StartLine,
		"other_end_line":   f.Other.EndLine,
		"similarity":       f.Similarity,
		"exact":            f.Exact,
	}
}

// SecurityFinding is a risky call site.
type SecurityFinding struct {
	Base
	Rule string `json:"rule"`
	Hint string `json:"hint"`
}

func (SecurityFinding) Category() Category { return CategorySecurity }

func (f SecurityFinding) Extra() map[string]any {
	return map[string]any{"rule": f.Rule, "hint": f.Hint}
}

// PerfKind names the anti-pattern found inside a loop.
type PerfKind string

const (
	PerfRequestsInLoop     PerfKind = "requests_in_loop"
	PerfIOInLoop           PerfKind = "io_in_loop"
	PerfStringConcatInLoop PerfKind = "string_concat_in_loop"
)

// PerformanceFinding is an expensive operation executed inside a loop.
type PerformanceFinding struct {
	Base
	Kind     PerfKind `json:"kind"`
	Function string   `json:"function"`
	Hint     string   `json:"hint"`
}

func (PerformanceFinding) Category() Category { return CategoryPerformance }

func (f PerformanceFinding) Extra() map[string]any {
	return map[string]any{"kind": string(f.Kind), "function": f.Function, "hint": f.Hint}
}

// DocKind is the construct missing documentation.
type DocKind string

const (
	DocModule   DocKind = "module"
	DocClass    DocKind = "class"
	DocFunction DocKind = "function"
)

// DocumentationFinding is a module, class or function without a docstring.
type DocumentationFinding struct {
	Base
	Kind DocKind `json:"kind"`
	Name string  `json:"name,omitempty"`
}

func (DocumentationFinding) Category() Category { return CategoryDocumentation }

func (f DocumentationFinding) Extra() map[string]any {
	return map[string]any{"kind": string(f.Kind), "name": f.Name}
}

// TestGapFinding is a source file with no test file in any conventional location.
type TestGapFinding struct {
	Base
	ExpectedTest string   `json:"expected_test"`
	Candidates   []string `json:"candidates"`
}

func (TestGapFinding) Category() Category { return CategoryTesting }

func (f TestGapFinding) Extra() map[string]any {
	return map[string]any{"expected_test": f.ExpectedTest, "candidates": f.Candidates}
}

var (
	_ Finding = ComplexityFinding{}
	_ Finding = DuplicationFinding{}
	_ Finding = SecurityFinding{}
	_ Finding = PerformanceFinding{}
	_ Finding = DocumentationFinding{}
	_ Finding = TestGapFinding{}
)

// FindingSet keeps the raw findings of one run, one typed list per category.
type FindingSet struct {
	Security      []SecurityFinding      `json:"security"`
	Complexity    []ComplexityFinding    `json:"complexity"`
	Duplication   []DuplicationFinding   `json:"duplication"`
	Performance   []PerformanceFinding   `json:"performance"`
	Documentation []DocumentationFinding `json:"documentation"`
	Testing       []TestGapFinding       `json:"testing"`
}

// NewFindingSet returns a set with empty, non-nil lists so that
// serialized reports always carry every category.
func NewFindingSet() *FindingSet {
	return &FindingSet{
		Security:      []SecurityFinding{},
		Complexity:    []ComplexityFinding{},
		Duplication:   []DuplicationFinding{},
		Performance:   []PerformanceFinding{},
		Documentation: []DocumentationFinding{},
		Testing:       []TestGapFinding{},
	}
}

// Add files f under its category.
func (s *FindingSet) Add(f Finding) error {
	switch v := f.(type) {
	case SecurityFinding:
		s.Security = append(s.Security, v)
	case ComplexityFinding:
		s.Complexity = append(s.Complexity, v)
	case DuplicationFinding:
		s.Duplication = append(s.Duplication, v)
	case PerformanceFinding:
		s.Performance = append(s.Performance, v)
	case DocumentationFinding:
		s.Documentation = append(s.Documentation, v)
	case TestGapFinding:
		s.Testing = append(s.Testing, v)
	default:
		return fmt.Errorf("unknown finding type %T", f)
	}
	return nil
}

// All returns every finding in category order.
func (s *FindingSet) All() []Finding {
	out := make([]Finding, 0, s.Len())
	for _, f := range s.Security {
		out = append(out, f)
	}
	for _, f := range s.Complexity {
		out = append(out, f)
	}
	for _, f := range s.Duplication {
		out = append(out, f)
	}
	for _, f := range s.Performance {
		out = append(out, f)
	}
	for _, f := range s.Documentation {
		out = append(out, f)
	}
	for _, f := range s.Testing {
		out = append(out, f)
	}
	return out
}

// Counts returns the number of findings per category, with every category present.
func (s *FindingSet) Counts() map[Category]int {
	return map[Category]int{
		CategorySecurity:      len(s.Security),
		CategoryComplexity:    len(s.Complexity),
		CategoryDuplication:   len(s.Duplication),
		CategoryPerformance:   len(s.Performance),
		CategoryDocumentation: len(s.Documentation),
		CategoryTesting:       len(s.Testing),
	}
}

// Len returns the total number of findings.
func (s *FindingSet) Len() int {
	return len(s.Security) + len(s.Complexity) + len(s.Duplication) +
		len(s.Performance) + len(s.Documentation) + len(s.Testing)
}
