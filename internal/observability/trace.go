package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "syntax-guardian/analysis"

// StartStage opens a span for a pipeline stage on the current global
// tracer provider.
func StartStage(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "analysis."+stage, trace.WithAttributes(append(attrs, attribute.String("stage", stage))...))
}

// EndStage records the stage outcome on span and closes it.
func EndStage(span trace.Span, outcome string, findings int, err error) {
	span.SetAttributes(attribute.String("outcome", outcome), attribute.Int("findings", findings))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
