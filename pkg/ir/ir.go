// Package ir defines the intermediate representation shared by the
// extractor and every detector: file records, spans, functions and modules.
package ir

import (
	"fmt"
	"path"
	"strings"
)

// MetricBranchCount is the FunctionUnit metric holding the number of
// decision points found in the function body.
const MetricBranchCount = "complexity_branch_count"

// FileRecord describes one file selected by the walker.
type FileRecord struct {
	Path     string   `json:"path"`
	Size     int64    `json:"size"`
	Lines    int      `json:"lines"`
	Language Language `json:"language"`
}

// Span is an inclusive, 1-based line range inside a file.
type Span struct {
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// NewSpan builds a Span, clamping start to at least 1 and end to at least start.
func NewSpan(p string, start, end int) Span {
	if start < 1 {
		start = 1
	}
	if end < start {
		end = start
	}
	return Span{Path: p, StartLine: start, EndLine: end}
}

// Contains reports whether other lies entirely inside s in the same file.
func (s Span) Contains(other Span) bool {
	return s.Path == other.Path && s.StartLine <= other.StartLine && other.EndLine <= s.EndLine
}

// Lines returns the number of lines covered by the span.
func (s Span) Lines() int {
	return s.EndLine - s.StartLine + 1
}

func (s Span) String() string {
	if s.StartLine == s.EndLine {
		return fmt.Sprintf("%s:%d", s.Path, s.StartLine)
	}
	return fmt.Sprintf("%s:%d-%d", s.Path, s.StartLine, s.EndLine)
}

// FunctionUnit is a single function or method.
type FunctionUnit struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Language Language           `json:"language"`
	Span     Span               `json:"span"`
	Doc      string             `json:"doc,omitempty"`
	Text     string             `json:"-"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// FunctionID returns the stable identifier "<path>::<name>:<start_line>".
func FunctionID(p, name string, startLine int) string {
	return fmt.Sprintf("%s::%s:%d", p, name, startLine)
}

// BranchCount returns the recorded branch count, or 0 when absent.
func (f FunctionUnit) BranchCount() int {
	return int(f.Metrics[MetricBranchCount])
}

// HasDoc reports whether a docstring or doc comment was found.
func (f FunctionUnit) HasDoc() bool {
	return strings.TrimSpace(f.Doc) != ""
}

// ModuleUnit is the extracted view of one file.
// Partial is set when the parser recovered from syntax errors.
type ModuleUnit struct {
	Path      string         `json:"path"`
	Language  Language       `json:"language"`
	Functions []FunctionUnit `json:"functions"`
	Partial   bool           `json:"partial,omitempty"`
}

// Stem returns the file name without directory and extension.
func Stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
