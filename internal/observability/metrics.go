// Package observability holds the process-wide Prometheus metrics and the
// tracer used around analysis stages.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	FilesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guardian_files_skipped_total",
		Help: "Files left out of an analysis, by reason.",
	}, []string{"reason"})

	FilesAnalyzed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guardian_files_analyzed_total",
		Help: "Files selected for analysis, by language.",
	}, []string{"language"})

	StageRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guardian_stage_runs_total",
		Help: "Pipeline stage executions, by stage and outcome.",
	}, []string{"stage", "outcome"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "guardian_stage_seconds",
		Help:    "Time spent in each pipeline stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	FindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guardian_findings_total",
		Help: "Findings produced, by category.",
	}, []string{"category"})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "guardian_graph_nodes",
		Help: "Nodes in the most recent dependency graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "guardian_graph_edges",
		Help: "Edges in the most recent dependency graph.",
	})
)
