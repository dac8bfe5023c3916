package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	gbotel "github.com/Strob0t/ganttboard/internal/adapter/otel"
	"github.com/Strob0t/ganttboard/internal/domain/ingest"
	"github.com/Strob0t/ganttboard/internal/domain/timeline"
	"github.com/Strob0t/ganttboard/internal/logger"
	"github.com/Strob0t/ganttboard/internal/port/broadcast"
	"github.com/Strob0t/ganttboard/internal/port/messagequeue"
	"github.com/Strob0t/ganttboard/internal/port/runlog"
	"github.com/Strob0t/ganttboard/internal/port/source"
	"github.com/Strob0t/ganttboard/internal/resilience"
)

// Error kinds recorded on fallback runs.
const (
	ErrorKindTransport = "transport"
	ErrorKindSchema    = "schema"
	ErrorKindParse     = "parse"
	ErrorKindEmpty     = "empty"
	ErrorKindInternal  = "internal"
)

// IngestService runs the pipeline end to end: fetch, normalise, store the
// snapshot and announce it.
type IngestService struct {
	source  source.Source
	policy  timeline.Policy
	store   *SnapshotStore
	breaker *resilience.Breaker

	metrics *gbotel.Metrics
	runs    runlog.Store
	hub     broadcast.Broadcaster
	queue   messagequeue.Publisher

	now   func() time.Time
	newID func() string
}

// NewIngestService creates an IngestService. breaker may be nil.
func NewIngestService(src source.Source, policy timeline.Policy, store *SnapshotStore, breaker *resilience.Breaker) *IngestService {
	return &IngestService{
		source:  src,
		policy:  policy,
		store:   store,
		breaker: breaker,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// SetMetrics sets the metric instruments recorded after each run.
func (s *IngestService) SetMetrics(m *gbotel.Metrics) { s.metrics = m }

// SetRunLog sets the ledger every run is appended to.
func (s *IngestService) SetRunLog(r runlog.Store) { s.runs = r }

// SetBroadcaster sets the hub notified of new snapshots.
func (s *IngestService) SetBroadcaster(b broadcast.Broadcaster) { s.hub = b }

// SetPublisher sets the queue that receives snapshot.refreshed messages.
func (s *IngestService) SetPublisher(p messagequeue.Publisher) { s.queue = p }

// Store returns the snapshot store written by this service.
func (s *IngestService) Store() *SnapshotStore { return s.store }

// Ingest runs the pipeline once. It always stores and returns a non-empty
// snapshot; on failure that is the fallback snapshot and err says why.
func (s *IngestService) Ingest(ctx context.Context, trigger ingest.Trigger) (timeline.Snapshot, error) {
	started := s.now()
	id := s.newID()

	ctx = logger.WithIngestRun(ctx, id, string(trigger))
	ctx, span := gbotel.StartIngestSpan(ctx, id, string(trigger))
	defer span.End()

	table, err := s.fetch(ctx)
	var result timeline.Result
	if err == nil {
		result, err = timeline.Normalize(table, s.policy)
	}

	loadedAt := s.now().UTC()
	var snap timeline.Snapshot
	if err != nil {
		snap = timeline.Fallback(id, s.source.Locator(), loadedAt, s.policy.LabelMax, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, errorKind(err))
		slog.WarnContext(ctx, "ingest failed, serving fallback", "kind", errorKind(err), "error", err)
	} else {
		snap = timeline.Snapshot{
			ID:       id,
			Rows:     result.Rows,
			Facets:   result.Facets,
			LoadedAt: loadedAt,
			Source:   table.Source,
			Report:   result.Report,
		}
		slog.InfoContext(ctx, "ingest complete",
			"total", result.Report.Total, "admitted", result.Report.Admitted,
			"excluded", result.Report.Excluded, "imputed", result.Report.Imputed)
	}
	s.store.Swap(&snap)

	run := s.newRun(&snap, trigger, started, err)
	s.announce(ctx, &snap, &run)
	return snap, err
}

// fetch calls the source through the breaker. Every fetch failure,
// including an open breaker, is reported as a transport failure.
func (s *IngestService) fetch(ctx context.Context) (timeline.Table, error) {
	var table timeline.Table
	call := func(ctx context.Context) error {
		ctx, span := gbotel.StartFetchSpan(ctx, s.source.Locator())
		defer span.End()
		var err error
		table, err = s.source.Fetch(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fetch failed")
		}
		return err
	}

	var err error
	if s.breaker == nil {
		err = call(ctx)
	} else {
		err = s.breaker.Execute(ctx, call)
	}
	if err == nil {
		return table, nil
	}
	var te *timeline.TransportError
	if errors.As(err, &te) {
		return timeline.Table{}, err
	}
	return timeline.Table{}, &timeline.TransportError{Source: s.source.Locator(), Err: err}
}

func (s *IngestService) newRun(snap *timeline.Snapshot, trigger ingest.Trigger, started time.Time, err error) ingest.Run {
	run := ingest.Run{
		ID:         s.newID(),
		SnapshotID: snap.ID,
		Trigger:    trigger,
		Source:     snap.Source,
		Outcome:    ingest.OutcomeOK,
		Total:      snap.Report.Total,
		Admitted:   snap.Report.Admitted,
		Excluded:   snap.Report.Excluded,
		Imputed:    snap.Report.Imputed,
		StartedAt:  started.UTC(),
		Duration:   s.now().Sub(started),
	}
	if err != nil {
		run.Outcome = ingest.OutcomeFallback
		run.ErrorKind = errorKind(err)
		run.Error = err.Error()
		var empty *timeline.EmptyResultError
		if errors.As(err, &empty) {
			run.Total, run.Excluded = empty.Total, empty.Excluded
		}
	}
	return run
}

// announce fans the outcome out to metrics, the ledger, open dashboards and
// the queue. None of these can fail the run.
func (s *IngestService) announce(ctx context.Context, snap *timeline.Snapshot, run *ingest.Run) {
	if s.metrics != nil {
		s.metrics.RecordRun(ctx, run)
	}
	if s.runs != nil {
		if err := s.runs.Record(ctx, run); err != nil {
			slog.ErrorContext(ctx, "record ingest run", "run_id", run.ID, "error", err)
		}
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, broadcast.EventSnapshotUpdated, broadcast.SnapshotUpdated{
			SnapshotID: snap.ID,
			Rows:       len(snap.Rows),
			Fallback:   snap.Fallback,
			Error:      snap.Error,
			LoadedAt:   snap.LoadedAt,
		})
	}
	if s.queue != nil {
		data, err := json.Marshal(messagequeue.SnapshotRefreshedPayload{
			SnapshotID: snap.ID,
			Source:     snap.Source,
			Rows:       len(snap.Rows),
			Excluded:   run.Excluded,
			Fallback:   snap.Fallback,
			Error:      snap.Error,
			LoadedAt:   snap.LoadedAt,
		})
		if err == nil {
			err = s.queue.Publish(ctx, messagequeue.SubjectSnapshotRefreshed, data)
		}
		if err != nil {
			slog.ErrorContext(ctx, "publish snapshot refreshed", "error", err)
		}
	}
}

// RecentRuns returns the latest ledger entries, newest first. Without a
// ledger it returns an empty list.
func (s *IngestService) RecentRuns(ctx context.Context, limit int) ([]ingest.Run, error) {
	if s.runs == nil {
		return []ingest.Run{}, nil
	}
	return s.runs.Recent(ctx, limit)
}

func errorKind(err error) string {
	var (
		transport *timeline.TransportError
		schema    *timeline.SchemaError
		parse     *timeline.ParseError
		empty     *timeline.EmptyResultError
	)
	switch {
	case errors.As(err, &transport):
		return ErrorKindTransport
	case errors.As(err, &schema):
		return ErrorKindSchema
	case errors.As(err, &parse):
		return ErrorKindParse
	case errors.As(err, &empty):
		return ErrorKindEmpty
	default:
		return ErrorKindInternal
	}
}
