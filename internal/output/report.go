package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AmanS2501/Syntax-Guardian/internal/service/analysis"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer/depgraph"
	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/models"
)

// DefaultTop is how many findings and hotspots the text view lists.
const DefaultTop = 20

// AnalysisView renders a full report. JSON and TOON carry the whole report;
// text lists at most top findings and hotspots (0 = DefaultTop).
func AnalysisView(r *analysis.Report, top int) *Report {
	if top <= 0 {
		top = DefaultTop
	}
	return &Report{
		Title: "Syntax Guardian: " + r.Root,
		Sections: []Renderable{
			summarySection(r),
			findingsTable(r.Findings, top),
			hotspotTable(r.Hotspots, top),
			stageTable(r),
		},
		Data: r,
	}
}

// GraphView renders the dependency graph metrics of a report.
func GraphView(r *analysis.Report, top int) *Report {
	m := r.Graph.Metrics
	lines := []string{
		fmt.Sprintf("Modules: %d", m.Nodes),
		fmt.Sprintf("Edges:   %d", m.Edges),
		fmt.Sprintf("Cycles:  %d%s", len(m.Cycles), truncatedMark(m.CyclesTruncated)),
	}
	return &Report{
		Title: "Dependency graph: " + r.Root,
		Sections: []Renderable{
			&Section{Title: "Summary", Lines: lines},
			rankedTable("Top fan-in", m.TopFanIn, top),
			rankedTable("Top fan-out", m.TopFanOut, top),
			cycleTable(m.Cycles),
		},
		Data: r.Graph,
	}
}

func summarySection(r *analysis.Report) *Section {
	s := r.Summary
	langs := make([]string, 0, len(ir.KnownLanguages))
	for _, l := range ir.KnownLanguages {
		langs = append(langs, fmt.Sprintf("%s %d", l, r.ByLanguage[l]))
	}
	cats := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		cats = append(cats, fmt.Sprintf("%s %d", c, s.Findings[c]))
	}
	sevs := make([]string, 0, 4)
	for _, sev := range []models.Severity{models.SeverityP0, models.SeverityP1, models.SeverityP2, models.SeverityP3} {
		sevs = append(sevs, fmt.Sprintf("%s %d", sev, s.BySeverity[sev]))
	}

	lines := []string{
		fmt.Sprintf("Files:      %d (%s)", s.Files, strings.Join(langs, ", ")),
		fmt.Sprintf("Functions:  %d (max complexity %d, average %.1f, p90 %d)",
			s.Functions, r.Complexity.Max, r.Complexity.Average, r.Complexity.P90),
		fmt.Sprintf("Findings:   %s", strings.Join(cats, ", ")),
		fmt.Sprintf("Severity:   %s", strings.Join(sevs, ", ")),
	}
	if m := r.Graph.Metrics; m != nil {
		lines = append(lines, fmt.Sprintf("Graph:      %d modules, %d edges, %d cycles%s",
			m.Nodes, m.Edges, len(m.Cycles), truncatedMark(m.CyclesTruncated)))
	}
	if len(s.Skipped) > 0 {
		reasons := make([]string, 0, len(s.Skipped))
		for k, v := range s.Skipped {
			reasons = append(reasons, fmt.Sprintf("%s %d", k, v))
		}
		sort.Strings(reasons)
		lines = append(lines, fmt.Sprintf("Skipped:    %s", strings.Join(reasons, ", ")))
	}
	if s.PartialModules > 0 {
		lines = append(lines, fmt.Sprintf("Partial:    %d modules with syntax errors", s.PartialModules))
	}
	return &Section{Title: "Summary", Lines: lines}
}

func findingsTable(findings []models.ScoredFinding, top int) *Table {
	n := min(top, len(findings))
	rows := make([][]string, 0, n)
	for _, f := range findings[:n] {
		rows = append(rows, []string{
			string(f.Severity),
			fmt.Sprintf("%.2f", f.Score),
			string(f.Category),
			location(f.Span),
			f.Title,
		})
	}
	t := NewTable("Findings", []string{"Severity", "Score", "Category", "Location", "Title"}, rows, nil, findings)
	if len(findings) > n {
		t.Footer = []string{"", "", "", "", fmt.Sprintf("showing %d of %d", n, len(findings))}
	}
	t.Empty = "No findings."
	return t
}

func hotspotTable(hotspots []models.HotspotEntry, top int) *Table {
	n := min(top, len(hotspots))
	rows := make([][]string, 0, n)
	for _, h := range hotspots[:n] {
		rows = append(rows, []string{
			h.Path,
			fmt.Sprintf("%.2f", h.Score),
			fmt.Sprintf("%d", h.FanIn),
			fmt.Sprintf("%d", h.Complexity),
		})
	}
	t := NewTable("Hotspots", []string{"File", "Score", "Fan-in", "Complexity"}, rows, nil, hotspots)
	t.Empty = "No hotspots."
	return t
}

func stageTable(r *analysis.Report) *Table {
	rows := make([][]string, 0, len(r.Stages))
	for _, s := range r.Stages {
		note := s.Note
		if s.Error != "" {
			note = s.Error
		}
		rows = append(rows, []string{
			s.Stage,
			string(s.Outcome),
			fmt.Sprintf("%d", s.Findings),
			s.Duration.Round(time.Millisecond).String(),
			note,
		})
	}
	return NewTable("Stages", []string{"Stage", "Outcome", "Count", "Duration", "Note"}, rows, nil, r.Stages)
}

func rankedTable(title string, ranked []depgraph.Ranked, top int) *Table {
	if top <= 0 {
		top = len(ranked)
	}
	n := min(top, len(ranked))
	rows := make([][]string, 0, n)
	for _, e := range ranked[:n] {
		rows = append(rows, []string{e.Node, fmt.Sprintf("%d", e.Value)})
	}
	t := NewTable(title, []string{"Module", "Count"}, rows, nil, ranked)
	t.Empty = "No modules."
	return t
}

func cycleTable(cycles [][]string) *Table {
	rows := make([][]string, 0, len(cycles))
	for i, c := range cycles {
		path := strings.Join(c, " -> ")
		if len(c) > 0 {
			path += " -> " + c[0]
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), fmt.Sprintf("%d", len(c)), path})
	}
	t := NewTable("Cycles", []string{"#", "Length", "Path"}, rows, nil, cycles)
	t.Empty = "No cycles."
	return t
}

func location(s ir.Span) string {
	if s.EndLine > s.StartLine {
		return fmt.Sprintf("%s:%d-%d", s.Path, s.StartLine, s.EndLine)
	}
	return fmt.Sprintf("%s:%d", s.Path, s.StartLine)
}

func truncatedMark(truncated bool) string {
	if truncated {
		return " (truncated)"
	}
	return ""
}
