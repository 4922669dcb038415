// Package analysis runs the full pipeline over a source tree: walk, extract,
// detect, build the dependency graph, score and assemble the report.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"

	"github.com/AmanS2501/Syntax-Guardian/internal/fileproc"
	"github.com/AmanS2501/Syntax-Guardian/internal/observability"
	"github.com/AmanS2501/Syntax-Guardian/internal/scanner"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer/complexity"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer/depgraph"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer/docs"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer/duplicates"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer/hotspot"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer/performance"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer/score"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer/security"
	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer/testgap"
	"github.com/AmanS2501/Syntax-Guardian/pkg/config"
	"github.com/AmanS2501/Syntax-Guardian/pkg/extract"
	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/models"
	"github.com/AmanS2501/Syntax-Guardian/pkg/parser"
	"github.com/AmanS2501/Syntax-Guardian/pkg/source"
)

// Stage names that are not detectors.
const (
	StageWalk    = "walk"
	StageExtract = "extract"
	StageGraph   = "dependency_graph"
)

// Service orchestrates code analysis runs.
type Service struct {
	config    *config.Config
	logger    *slog.Logger
	progress  analyzer.ProgressFunc
	detectors []analyzer.Detector
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProgress registers a progress callback, ticked once per extracted
// file and once per finished stage.
func WithProgress(fn analyzer.ProgressFunc) Option {
	return func(s *Service) {
		s.progress = fn
	}
}

// WithDetectors replaces the detector set built from the configuration.
func WithDetectors(d ...analyzer.Detector) Option {
	return func(s *Service) {
		s.detectors = d
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.detectors == nil {
		s.detectors = Detectors(s.config)
	}
	return s
}

// Detectors builds the six detectors configured by cfg.
func Detectors(cfg *config.Config) []analyzer.Detector {
	d := cfg.Duplication
	return []analyzer.Detector{
		security.New(),
		complexity.New(complexity.WithWarnAt(cfg.Complexity.WarnAt)),
		duplicates.New(
			duplicates.WithShingleSize(d.KShingle),
			duplicates.WithSimilarityThreshold(d.SimilarityThreshold),
			duplicates.WithMaxFunctions(d.MaxFunctions),
			duplicates.WithMaxChars(d.MaxChars),
			duplicates.WithTimeBudget(d.TimeBudget()),
		),
		performance.New(),
		docs.New(),
		testgap.New(),
	}
}

type extracted struct {
	module  ir.ModuleUnit
	imports []string
}

// Analyze runs the pipeline over root. The only error is an unusable root:
// unreadable files are skipped and failing detectors are reported in the
// stage results.
func (s *Service) Analyze(ctx context.Context, root string) (*Report, error) {
	tracker := analyzer.NewTracker(s.progress)
	stages := make([]analyzer.StageResult, 0, len(s.detectors)+3)

	// Walk
	walkStart := time.Now()
	_, span := observability.StartStage(ctx, StageWalk)
	sc := scanner.NewScanner(s.config.Scan,
		scanner.WithLogger(s.logger),
		scanner.WithSkipHook(func(r scanner.SkipReason) {
			observability.FilesSkipped.WithLabelValues(string(r)).Inc()
		}),
	)
	files, stats, err := sc.Walk(root)
	if err != nil {
		observability.EndStage(span, string(analyzer.OutcomeFailed), 0, err)
		return nil, fmt.Errorf("analyze %s: %w", root, err)
	}
	observability.EndStage(span, string(analyzer.OutcomeSuccess), len(files), nil)
	stages = append(stages, s.record(StageWalk, analyzer.OutcomeSuccess, len(files), walkStart, "", nil))
	for _, p := range stats.InvalidPatterns {
		s.logger.Warn("ignoring invalid glob pattern", "pattern", p)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", root, err)
	}
	src, err := source.NewCached(source.NewFilesystem(absRoot), s.config.Analysis.SourceCacheSize)
	if err != nil {
		return nil, err
	}

	// Extract
	tracker.Expect(len(files) + len(s.detectors) + 1)
	results, extractStage := s.extract(ctx, files, src, tracker)
	stages = append(stages, extractStage)

	modules := make([]ir.ModuleUnit, len(results))
	var edges []depgraph.Edge
	for i, r := range results {
		modules[i] = r.module
		key := extract.ModuleKey(files[i].Path)
		for _, dep := range r.imports {
			edges = append(edges, depgraph.Edge{From: key, To: dep})
		}
	}

	in := analyzer.Input{Root: absRoot, Files: files, Modules: modules, Source: src}

	// Detectors and graph run concurrently; each writes only its own slot.
	detected := make([]analyzer.Result, len(s.detectors))
	detectorStages := make([]analyzer.StageResult, len(s.detectors))
	var graph *depgraph.Graph
	var metrics *depgraph.Metrics
	var graphStage analyzer.StageResult

	p := pool.New()
	for i, d := range s.detectors {
		p.Go(func() {
			detected[i], detectorStages[i] = s.runDetector(ctx, d, in)
			tracker.Tick(d.Name())
		})
	}
	p.Go(func() {
		graph, metrics, graphStage = s.buildGraph(ctx, edges)
		tracker.Tick(StageGraph)
	})
	p.Wait()

	stages = append(stages, detectorStages...)
	stages = append(stages, graphStage)

	raw := models.NewFindingSet()
	for i, res := range detected {
		for _, f := range res.Findings {
			if err := raw.Add(f); err != nil {
				s.logger.Warn("dropping finding", "detector", s.detectors[i].Name(), "error", err)
			}
		}
	}
	for c, n := range raw.Counts() {
		observability.FindingsTotal.WithLabelValues(string(c)).Add(float64(n))
	}

	scorer := score.New(score.WithWeights(s.config.Weights), score.WithWarnAt(s.config.Complexity.WarnAt))
	hotspots := hotspot.New().Rank(raw.Complexity, metrics.FanIn)

	return buildReport(reportInput{
		root:     absRoot,
		files:    files,
		stats:    stats,
		modules:  modules,
		raw:      raw,
		scored:   scorer.ScoreAll(raw.All()),
		hotspots: hotspots,
		graph:    graph,
		metrics:  metrics,
		stages:   stages,
		config:   s.config,
	}), nil
}

func (s *Service) extract(ctx context.Context, files []ir.FileRecord, src source.ContentSource, tracker *analyzer.Tracker) ([]extracted, analyzer.StageResult) {
	start := time.Now()
	ctx, span := observability.StartStage(ctx, StageExtract)

	for _, f := range files {
		observability.FilesAnalyzed.WithLabelValues(string(f.Language)).Inc()
	}

	results, errs := fileproc.MapRecords(ctx, files, s.config.Analysis.Workers, func(psr *parser.Parser, rec ir.FileRecord) (extracted, error) {
		ex := extract.NewWithParser(psr)
		out := extracted{
			module:  ir.ModuleUnit{Path: rec.Path, Language: rec.Language, Functions: []ir.FunctionUnit{}},
			imports: []string{},
		}
		text, err := src.Read(rec.Path)
		if err != nil {
			return out, err
		}
		out.module, err = ex.Extract(ctx, rec.Path, text, rec.Language)
		out.imports = ex.ReadImports(ctx, src, rec)
		return out, err
	}, func() { tracker.Tick(StageExtract) })

	note := ""
	if errs != nil {
		note = fmt.Sprintf("%d files could not be extracted", errs.Len())
		for _, e := range errs.Errors {
			s.logger.Debug("skipping file", "path", e.Path, "error", e.Err)
			observability.FilesSkipped.WithLabelValues(string(extractSkipReason(e.Err))).Inc()
		}
	}
	partial := 0
	functions := 0
	for _, r := range results {
		functions += len(r.module.Functions)
		if r.module.Partial {
			partial++
		}
	}
	if partial > 0 {
		s.logger.Debug("recovered from syntax errors", "modules", partial)
	}

	observability.EndStage(span, string(analyzer.OutcomeSuccess), functions, nil)
	return results, s.record(StageExtract, analyzer.OutcomeSuccess, functions, start, note, nil)
}

func extractSkipReason(err error) scanner.SkipReason {
	if errors.Is(err, parser.ErrUnsupportedLanguage) {
		return scanner.SkipUnsupported
	}
	return scanner.SkipUnreadable
}

// runDetector runs d in isolation: an error or panic yields no findings
// and a failed stage.
func (s *Service) runDetector(ctx context.Context, d analyzer.Detector, in analyzer.Input) (analyzer.Result, analyzer.StageResult) {
	start := time.Now()
	ctx, span := observability.StartStage(ctx, d.Name())

	var res analyzer.Result
	var runErr error
	var pc panics.Catcher
	pc.Try(func() {
		res, runErr = d.Detect(ctx, in)
	})
	if rec := pc.Recovered(); rec != nil {
		runErr = rec.AsError()
	}

	if runErr != nil {
		s.logger.Warn("detector failed", "detector", d.Name(), "error", runErr)
		observability.EndStage(span, string(analyzer.OutcomeFailed), 0, runErr)
		return analyzer.Result{}, s.record(d.Name(), analyzer.OutcomeFailed, 0, start, "", runErr)
	}

	outcome := analyzer.OutcomeSuccess
	if res.Partial {
		outcome = analyzer.OutcomePartial
		s.logger.Info("detector returned partial results", "detector", d.Name(), "note", res.Note)
	}
	observability.EndStage(span, string(outcome), len(res.Findings), nil)
	return res, s.record(d.Name(), outcome, len(res.Findings), start, res.Note, nil)
}

func (s *Service) buildGraph(ctx context.Context, edges []depgraph.Edge) (*depgraph.Graph, *depgraph.Metrics, analyzer.StageResult) {
	start := time.Now()
	_, span := observability.StartStage(ctx, StageGraph)

	var graph *depgraph.Graph
	var metrics *depgraph.Metrics
	var pc panics.Catcher
	pc.Try(func() {
		graph = depgraph.Build(edges)
		metrics = depgraph.New().Analyze(graph)
	})
	if rec := pc.Recovered(); rec != nil {
		err := rec.AsError()
		s.logger.Warn("dependency graph failed", "error", err)
		observability.EndStage(span, string(analyzer.OutcomeFailed), 0, err)
		empty := depgraph.Build(nil)
		return empty, depgraph.New().Analyze(empty), s.record(StageGraph, analyzer.OutcomeFailed, 0, start, "", err)
	}

	observability.GraphNodes.Set(float64(metrics.Nodes))
	observability.GraphEdges.Set(float64(metrics.Edges))
	observability.EndStage(span, string(analyzer.OutcomeSuccess), len(metrics.Cycles), nil)
	return graph, metrics, s.record(StageGraph, analyzer.OutcomeSuccess, len(metrics.Cycles), start, "", nil)
}

func (s *Service) record(stage string, outcome analyzer.Outcome, findings int, start time.Time, note string, err error) analyzer.StageResult {
	elapsed := time.Since(start)
	observability.StageRuns.WithLabelValues(stage, string(outcome)).Inc()
	observability.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	r := analyzer.StageResult{Stage: stage, Outcome: outcome, Findings: findings, Duration: elapsed, Note: note}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// IsInvalidRoot reports whether err came from an unusable root path.
func IsInvalidRoot(err error) bool {
	return errors.Is(err, scanner.ErrInvalidRoot)
}
