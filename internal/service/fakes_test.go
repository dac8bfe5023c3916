package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Strob0t/ganttboard/internal/domain/ingest"
	"github.com/Strob0t/ganttboard/internal/domain/timeline"
)

// fakeSource returns a fixed table or error and counts calls.
type fakeSource struct {
	mu    sync.Mutex
	table timeline.Table
	err   error
	calls int
}

func (f *fakeSource) Fetch(context.Context) (timeline.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.table, f.err
}

func (f *fakeSource) Locator() string { return "https://example.com/pub?output=csv" }

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeRunLog records runs in memory.
type fakeRunLog struct {
	mu   sync.Mutex
	runs []ingest.Run
}

func (f *fakeRunLog) Record(_ context.Context, r *ingest.Run) error {
	if err := r.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, *r)
	return nil
}

func (f *fakeRunLog) Recent(_ context.Context, limit int) ([]ingest.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ingest.Run, 0, len(f.runs))
	for i := len(f.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.runs[i])
	}
	return out, nil
}

type event struct {
	kind    string
	payload any
}

// fakeHub captures broadcast events.
type fakeHub struct {
	mu     sync.Mutex
	events []event
}

func (f *fakeHub) BroadcastEvent(_ context.Context, eventType string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event{eventType, payload})
}

// fakeQueue captures published messages.
type fakeQueue struct {
	mu       sync.Mutex
	subjects []string
	data     [][]byte
}

func (f *fakeQueue) Publish(_ context.Context, subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	f.data = append(f.data, data)
	return nil
}

func (f *fakeQueue) Close() error { return nil }

// scenarioTable holds one admissible row and one with an unparseable start.
func scenarioTable() timeline.Table {
	return timeline.Table{
		Source: "https://example.com/pub?output=csv",
		Cells: [][]string{
			{"RN", "Estado", "Inicio", "Fin"},
			{"RN-1", "Backlog", "01/03/2024", "15/03/2024"},
			{"RN-2", "Entregado", "bad", "15/03/2024"},
		},
	}
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func sequentialIDs() func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func initialSnapshot() *timeline.Snapshot {
	s := timeline.Fallback("initial", "", time.Time{}, 30, nil)
	return &s
}
