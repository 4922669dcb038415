package observability

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestWriteMetrics(t *testing.T) {
	StageRuns.WithLabelValues("export", "success").Inc()
	path := filepath.Join(t.TempDir(), "guardian.prom")

	require.NoError(t, WriteMetrics(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# TYPE guardian_stage_runs_total counter")
	assert.Contains(t, string(data), `guardian_stage_runs_total{outcome="success",stage="export"}`)
}

func TestWriteMetricsBadPath(t *testing.T) {
	err := WriteMetrics(filepath.Join(t.TempDir(), "missing", "guardian.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write metrics")
}

func TestSetupTracingExportsStageSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := SetupTracing(exp)
	t.Cleanup(func() {
		otel.SetTracerProvider(noop.NewTracerProvider())
		_ = tp.Shutdown(context.Background())
	})

	_, span := StartStage(context.Background(), "walk")
	assert.True(t, span.IsRecording())
	EndStage(span, "success", 3, nil)
	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "analysis.walk", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, attribute.String("outcome", "success"))
	assert.Contains(t, spans[0].Attributes, attribute.Int("findings", 3))

	svc, ok := spans[0].Resource.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, ServiceName, svc.AsString())
}

func TestNewOTLPExporterIsLazy(t *testing.T) {
	exp, err := NewOTLPExporter(context.Background(), "127.0.0.1:1", true)
	require.NoError(t, err)
	require.NoError(t, exp.Shutdown(context.Background()))
}
