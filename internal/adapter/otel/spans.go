package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "ganttboard"

// StartIngestSpan starts a span for one ingestion run.
func StartIngestSpan(ctx context.Context, snapshotID, trigger string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "ingest",
		trace.WithAttributes(
			attribute.String("snapshot.id", snapshotID),
			attribute.String("ingest.trigger", trigger),
		),
	)
}

// StartFetchSpan starts a span for the source fetch within a run.
func StartFetchSpan(ctx context.Context, locator string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("source.locator", locator)),
	)
}
