package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Strob0t/ganttboard/internal/domain/ingest"
	"github.com/Strob0t/ganttboard/internal/domain/timeline"
	"github.com/Strob0t/ganttboard/internal/port/broadcast"
	"github.com/Strob0t/ganttboard/internal/port/messagequeue"
	"github.com/Strob0t/ganttboard/internal/resilience"
)

type ingestFixture struct {
	src   *fakeSource
	svc   *IngestService
	runs  *fakeRunLog
	hub   *fakeHub
	queue *fakeQueue
}

func newIngestFixture(src *fakeSource, breaker *resilience.Breaker) *ingestFixture {
	f := &ingestFixture{src: src, runs: &fakeRunLog{}, hub: &fakeHub{}, queue: &fakeQueue{}}
	f.svc = NewIngestService(src, timeline.DefaultPolicy(), NewSnapshotStore(initialSnapshot()), breaker)
	f.svc.now = fixedClock()
	f.svc.newID = sequentialIDs()
	f.svc.SetRunLog(f.runs)
	f.svc.SetBroadcaster(f.hub)
	f.svc.SetPublisher(f.queue)
	return f
}

func TestIngest_Success(t *testing.T) {
	f := newIngestFixture(&fakeSource{table: scenarioTable()}, nil)

	snap, err := f.svc.Ingest(context.Background(), ingest.TriggerStartup)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if snap.Fallback || len(snap.Rows) != 1 {
		t.Fatalf("expected 1 admitted row, got %d (fallback=%v)", len(snap.Rows), snap.Fallback)
	}
	row := snap.Rows[0]
	if row.ID != "RN-1" || row.DurationDays != 14 || row.PeriodKey != "2024-03" {
		t.Errorf("unexpected row %+v", row)
	}
	if got := f.svc.Store().Load(); got.ID != snap.ID {
		t.Errorf("store holds %s, want %s", got.ID, snap.ID)
	}

	if len(f.runs.runs) != 1 {
		t.Fatalf("expected one run recorded, got %d", len(f.runs.runs))
	}
	run := f.runs.runs[0]
	if run.Outcome != ingest.OutcomeOK || run.Total != 2 || run.Admitted != 1 || run.Excluded != 1 {
		t.Errorf("unexpected run %+v", run)
	}
	if run.SnapshotID != snap.ID || run.Trigger != ingest.TriggerStartup {
		t.Errorf("run not linked to snapshot: %+v", run)
	}

	if len(f.hub.events) != 1 || f.hub.events[0].kind != broadcast.EventSnapshotUpdated {
		t.Fatalf("expected one snapshot.updated event, got %+v", f.hub.events)
	}
	ev := f.hub.events[0].payload.(broadcast.SnapshotUpdated)
	if ev.Rows != 1 || ev.Fallback {
		t.Errorf("unexpected event %+v", ev)
	}

	if len(f.queue.data) != 1 || f.queue.subjects[0] != messagequeue.SubjectSnapshotRefreshed {
		t.Fatalf("expected one published message, got %v", f.queue.subjects)
	}
	if err := messagequeue.Validate(f.queue.subjects[0], f.queue.data[0]); err != nil {
		t.Errorf("published payload invalid: %v", err)
	}
}

func TestIngest_FailuresStoreFallback(t *testing.T) {
	tests := []struct {
		name     string
		src      *fakeSource
		kind     string
		target   any
		total    int
		excluded int
	}{
		{
			name:   "transport",
			src:    &fakeSource{err: &timeline.TransportError{Source: "x", Status: 503}},
			kind:   ErrorKindTransport,
			target: new(*timeline.TransportError),
		},
		{
			name:   "untyped fetch error",
			src:    &fakeSource{err: errors.New("record on line 3: wrong number of fields")},
			kind:   ErrorKindTransport,
			target: new(*timeline.TransportError),
		},
		{
			name: "schema",
			src: &fakeSource{table: timeline.Table{Cells: [][]string{
				{"RN", "Estado"},
				{"RN-1", "Backlog"},
			}}},
			kind:   ErrorKindSchema,
			target: new(*timeline.SchemaError),
		},
		{
			name: "parse",
			src: &fakeSource{table: timeline.Table{Cells: [][]string{
				{"RN", "Estado", "Inicio", "Fin"},
				{"RN-1", "Backlog", "someday", "later"},
			}}},
			kind:   ErrorKindParse,
			target: new(*timeline.ParseError),
		},
		{
			name: "empty",
			src: &fakeSource{table: timeline.Table{Cells: [][]string{
				{"RN", "Estado", "Inicio", "Fin"},
				{"RN-1", "Backlog", "", "15/03/2024"},
			}}},
			kind:     ErrorKindEmpty,
			target:   new(*timeline.EmptyResultError),
			total:    1,
			excluded: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIngestFixture(tt.src, nil)

			snap, err := f.svc.Ingest(context.Background(), ingest.TriggerManual)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.As(err, tt.target) {
				t.Fatalf("error %v (%T) is not %T", err, err, tt.target)
			}
			if !snap.Fallback || len(snap.Rows) != 3 || snap.Error == "" {
				t.Fatalf("expected fallback snapshot, got %+v", snap)
			}
			for _, r := range snap.Rows {
				if r.Status != timeline.StatusError {
					t.Errorf("fallback row status %q", r.Status)
				}
			}
			if f.svc.Store().Load().ID != snap.ID {
				t.Error("fallback not stored")
			}

			run := f.runs.runs[0]
			if run.Outcome != ingest.OutcomeFallback || run.ErrorKind != tt.kind {
				t.Errorf("run outcome=%s kind=%s, want fallback/%s", run.Outcome, run.ErrorKind, tt.kind)
			}
			if run.Total != tt.total || run.Excluded != tt.excluded {
				t.Errorf("run counts total=%d excluded=%d", run.Total, run.Excluded)
			}

			var payload messagequeue.SnapshotRefreshedPayload
			if err := json.Unmarshal(f.queue.data[0], &payload); err != nil {
				t.Fatal(err)
			}
			if !payload.Fallback || payload.Error == "" {
				t.Errorf("published payload should flag fallback: %+v", payload)
			}
		})
	}
}

func TestIngest_OpenBreakerIsTransportError(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("dial tcp: connection refused")}
	f := newIngestFixture(src, resilience.NewBreaker("source", 1, time.Hour))
	ctx := context.Background()

	if _, err := f.svc.Ingest(ctx, ingest.TriggerTimer); err == nil {
		t.Fatal("expected first failure")
	}
	_, err := f.svc.Ingest(ctx, ingest.TriggerTimer)

	var te *timeline.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("expected open circuit cause, got %v", err)
	}
	if src.callCount() != 1 {
		t.Errorf("open breaker should skip the source, got %d calls", src.callCount())
	}
}

func TestIngest_RecentRuns(t *testing.T) {
	f := newIngestFixture(&fakeSource{table: scenarioTable()}, nil)
	ctx := context.Background()
	for range 3 {
		if _, err := f.svc.Ingest(ctx, ingest.TriggerTimer); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := f.svc.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	bare := NewIngestService(&fakeSource{}, timeline.DefaultPolicy(), NewSnapshotStore(initialSnapshot()), nil)
	runs, err = bare.RecentRuns(ctx, 5)
	if err != nil || runs == nil || len(runs) != 0 {
		t.Fatalf("expected empty non-nil list, got %v, %v", runs, err)
	}
}
