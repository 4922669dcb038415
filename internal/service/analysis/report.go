package analysis

import (
	"github.com/AmanS2501/Syntax-Guardian/internal/scanner"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer/complexity"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer/depgraph"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer/score"
	"github.com/AmanS2501/Syntax-Guardian/pkg/config"
	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/models"
)

// Report is the aggregate result of one run. It holds plain values only.
type Report struct {
	Root       string                 `json:"root"`
	Summary    Summary                `json:"summary"`
	ByLanguage map[ir.Language]int    `json:"by_language"`
	Complexity complexity.Summary     `json:"complexity"`
	Hotspots   []models.HotspotEntry  `json:"hotspots"`
	Findings   []models.ScoredFinding `json:"findings"`
	Raw        *models.FindingSet     `json:"raw"`
	Graph      GraphReport            `json:"dependency_graph"`
	Stages     []analyzer.StageResult `json:"stages"`
	Thresholds Thresholds             `json:"thresholds"`
}

// Summary holds the headline counts of a run.
type Summary struct {
	Files          int                        `json:"files"`
	Functions      int                        `json:"functions"`
	PartialModules int                        `json:"partial_modules"`
	Findings       map[models.Category]int    `json:"findings"`
	BySeverity     map[models.Severity]int    `json:"by_severity"`
	Skipped        map[scanner.SkipReason]int `json:"skipped"`
}

// GraphReport is the dependency graph and its metrics.
type GraphReport struct {
	Edges   []depgraph.Edge   `json:"edges"`
	Metrics *depgraph.Metrics `json:"metrics"`
}

// Thresholds echoes the rules the run used.
type Thresholds struct {
	ComplexityWarnAt    int           `json:"complexity_warn_at"`
	KShingle            int           `json:"k_shingle"`
	SimilarityThreshold float64       `json:"similarity_threshold"`
	Weights             score.Weights `json:"weights"`
}

// Stage returns the result recorded for name.
func (r *Report) Stage(name string) (analyzer.StageResult, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return analyzer.StageResult{}, false
}

type reportInput struct {
	root     string
	files    []ir.FileRecord
	stats    scanner.Stats
	modules  []ir.ModuleUnit
	raw      *models.FindingSet
	scored   []models.ScoredFinding
	hotspots []models.HotspotEntry
	graph    *depgraph.Graph
	metrics  *depgraph.Metrics
	stages   []analyzer.StageResult
	config   *config.Config
}

func buildReport(in reportInput) *Report {
	byLang := make(map[ir.Language]int, len(ir.KnownLanguages)+1)
	for _, l := range ir.KnownLanguages {
		byLang[l] = 0
	}
	for _, f := range in.files {
		byLang[f.Language]++
	}

	var fns []ir.FunctionUnit
	partial := 0
	for _, m := range in.modules {
		fns = append(fns, m.Functions...)
		if m.Partial {
			partial++
		}
	}

	bySeverity := map[models.Severity]int{
		models.SeverityP0: 0, models.SeverityP1: 0, models.SeverityP2: 0, models.SeverityP3: 0,
	}
	for _, f := range in.scored {
		bySeverity[f.Severity]++
	}

	skipped := make(map[scanner.SkipReason]int, len(in.stats.Skipped))
	for k, v := range in.stats.Skipped {
		skipped[k] = v
	}

	scored := in.scored
	if scored == nil {
		scored = []models.ScoredFinding{}
	}

	return &Report{
		Root: in.root,
		Summary: Summary{
			Files:          len(in.files),
			Functions:      len(fns),
			PartialModules: partial,
			Findings:       in.raw.Counts(),
			BySeverity:     bySeverity,
			Skipped:        skipped,
		},
		ByLanguage: byLang,
		Complexity: complexity.Summarize(fns),
		Hotspots:   in.hotspots,
		Findings:   scored,
		Raw:        in.raw,
		Graph:      GraphReport{Edges: in.graph.Edges(), Metrics: in.metrics},
		Stages:     in.stages,
		Thresholds: Thresholds{
			ComplexityWarnAt:    in.config.Complexity.WarnAt,
			KShingle:            in.config.Duplication.KShingle,
			SimilarityThreshold: in.config.Duplication.SimilarityThreshold,
			Weights:             in.config.Weights,
		},
	}
}
