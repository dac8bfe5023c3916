package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/Strob0t/ganttboard/internal/domain"
	"github.com/Strob0t/ganttboard/internal/domain/ingest"
	"github.com/Strob0t/ganttboard/internal/domain/timeline"
)

// blockingIngester holds every run until release is closed.
type blockingIngester struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingIngester) Ingest(ctx context.Context, _ ingest.Trigger) (timeline.Snapshot, error) {
	b.calls.Add(1)
	b.started <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return timeline.Snapshot{ID: "snap"}, nil
}

// countingIngester returns immediately.
type countingIngester struct {
	calls atomic.Int32
}

func (c *countingIngester) Ingest(context.Context, ingest.Trigger) (timeline.Snapshot, error) {
	c.calls.Add(1)
	return timeline.Snapshot{ID: "snap"}, nil
}

func TestRefresher_SkipsWhileInFlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	ing := &blockingIngester{started: make(chan struct{}, 1), release: make(chan struct{})}
	r := NewRefresher(ing, 0)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := r.Refresh(ctx, ingest.TriggerManual)
		done <- err
	}()
	<-ing.started

	_, err := r.Refresh(ctx, ingest.TriggerTimer)
	if !errors.Is(err, ErrRefreshInFlight) {
		t.Fatalf("expected ErrRefreshInFlight, got %v", err)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("ErrRefreshInFlight should wrap domain.ErrConflict")
	}

	close(ing.release)
	if err := <-done; err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if got := ing.calls.Load(); got != 1 {
		t.Errorf("expected 1 run, got %d", got)
	}

	// The guard is released once the run finishes.
	ing.release = make(chan struct{})
	close(ing.release)
	if _, err := r.Refresh(ctx, ingest.TriggerManual); err != nil {
		t.Fatalf("refresh after completion: %v", err)
	}
	<-ing.started
}

func TestRefresher_RunTicksAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	ing := &countingIngester{}
	r := NewRefresher(ing, timeline.Interval(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(stopped)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for ing.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if ing.calls.Load() < 2 {
		t.Fatalf("expected timer refreshes, got %d", ing.calls.Load())
	}

	if err := r.SetInterval(0); err != nil {
		t.Fatal(err)
	}
	time.Sleep(60 * time.Millisecond)
	settled := ing.calls.Load()
	time.Sleep(100 * time.Millisecond)
	if got := ing.calls.Load(); got != settled {
		t.Errorf("refresh continued after interval off: %d -> %d", settled, got)
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestRefresher_SetInterval(t *testing.T) {
	r := NewRefresher(&countingIngester{}, timeline.Interval(time.Minute))

	tests := []struct {
		name    string
		iv      timeline.Interval
		wantErr bool
	}{
		{"off", 0, false},
		{"thirty seconds", timeline.Interval(30 * time.Second), false},
		{"fifteen minutes", timeline.Interval(15 * time.Minute), false},
		{"not offered", timeline.Interval(45 * time.Second), true},
		{"sub-second", timeline.Interval(30*time.Second + time.Millisecond), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.SetInterval(tt.iv)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if r.Interval() != tt.iv {
				t.Errorf("Interval() = %v, want %v", r.Interval(), tt.iv)
			}
		})
	}
}
