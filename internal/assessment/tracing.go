package assessment

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "aiborg.assessment"

// newTracer uses tp, or the global provider installed by telemetry.Init.
func newTracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName)
}

// startSpan creates a span for a service operation on one session.
func (s *Service) startSpan(ctx context.Context, op, sessionID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "assessment."+op,
		trace.WithAttributes(
			attribute.String("assessment.session_id", sessionID),
		),
	)
}

// endSpan records err, if any, and ends the span.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
