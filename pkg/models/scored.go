package models

import "github.com/AmanS2501/Syntax-Guardian/pkg/ir"

// Severity is the priority tier of a scored finding, P0 being the most urgent.
type Severity string

const (
	SeverityP0 Severity = "P0"
	SeverityP1 Severity = "P1"
	SeverityP2 Severity = "P2"
	SeverityP3 Severity = "P3"
)

// Rank returns 0 for P0 through 3 for P3, and 4 for unknown values.
func (s Severity) Rank() int {
	switch s {
	case SeverityP0:
		return 0
	case SeverityP1:
		return 1
	case SeverityP2:
		return 2
	case SeverityP3:
		return 3
	default:
		return 4
	}
}

// ScoredFinding is a finding after severity scoring, ready for reporting.
type ScoredFinding struct {
	ID       string         `json:"id"`
	Category Category       `json:"category"`
	Severity Severity       `json:"severity"`
	Score    float64        `json:"score"`
	Title    string         `json:"title"`
	File     string         `json:"file"`
	Span     ir.Span        `json:"span"`
	Why      string         `json:"why"`
	Fix      string         `json:"fix"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// HotspotEntry ranks a file by how depended-upon and how complex it is.
type HotspotEntry struct {
	Path       string  `json:"path"`
	Score      float64 `json:"score"`
	FanIn      int     `json:"fan_in"`
	Complexity int     `json:"complexity"`
}
