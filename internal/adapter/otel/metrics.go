package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Strob0t/ganttboard/internal/domain/ingest"
)

const meterName = "ganttboard"

// Metrics holds all ganttboard metric instruments.
type Metrics struct {
	IngestRuns     metric.Int64Counter
	IngestFailures metric.Int64Counter
	RowsAdmitted   metric.Int64Counter
	RowsExcluded   metric.Int64Counter
	IngestDuration metric.Float64Histogram
	RefreshSkipped metric.Int64Counter
}

// NewMetrics creates all metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.IngestRuns, err = meter.Int64Counter("gantt.ingest.runs",
		metric.WithDescription("Number of ingestion runs"))
	if err != nil {
		return nil, err
	}

	m.IngestFailures, err = meter.Int64Counter("gantt.ingest.failures",
		metric.WithDescription("Number of ingestion runs that stored a fallback snapshot"))
	if err != nil {
		return nil, err
	}

	m.RowsAdmitted, err = meter.Int64Counter("gantt.ingest.rows_admitted",
		metric.WithDescription("Rows admitted into snapshots"))
	if err != nil {
		return nil, err
	}

	m.RowsExcluded, err = meter.Int64Counter("gantt.ingest.rows_excluded",
		metric.WithDescription("Rows excluded by admission"))
	if err != nil {
		return nil, err
	}

	m.IngestDuration, err = meter.Float64Histogram("gantt.ingest.duration_seconds",
		metric.WithDescription("Ingestion run duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.RefreshSkipped, err = meter.Int64Counter("gantt.refresh.skipped",
		metric.WithDescription("Refresh triggers skipped because a run was in flight"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRun records the counters and duration of one finished run.
func (m *Metrics) RecordRun(ctx context.Context, run *ingest.Run) {
	attrs := metric.WithAttributes(
		attribute.String("trigger", string(run.Trigger)),
		attribute.String("outcome", string(run.Outcome)),
	)
	m.IngestRuns.Add(ctx, 1, attrs)
	m.IngestDuration.Record(ctx, run.Duration.Seconds(), attrs)
	m.RowsAdmitted.Add(ctx, int64(run.Admitted))
	m.RowsExcluded.Add(ctx, int64(run.Excluded))
	if run.Outcome == ingest.OutcomeFallback {
		m.IngestFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", run.ErrorKind)))
	}
}

// RecordSkipped counts a refresh trigger dropped by the re-entrancy guard.
func (m *Metrics) RecordSkipped(ctx context.Context, trigger ingest.Trigger) {
	m.RefreshSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", string(trigger))))
}
