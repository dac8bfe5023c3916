package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	gbotel "github.com/Strob0t/ganttboard/internal/adapter/otel"
	"github.com/Strob0t/ganttboard/internal/domain"
	"github.com/Strob0t/ganttboard/internal/domain/ingest"
	"github.com/Strob0t/ganttboard/internal/domain/timeline"
)

// ErrRefreshInFlight is returned when a trigger arrives while a run is
// already executing. The trigger is dropped, not queued.
var ErrRefreshInFlight = fmt.Errorf("refresh skipped: %w", domain.ErrConflict)

// Ingester runs the pipeline once.
type Ingester interface {
	Ingest(ctx context.Context, trigger ingest.Trigger) (timeline.Snapshot, error)
}

// Refresher serialises ingestion runs and drives the auto-refresh timer.
type Refresher struct {
	ingester Ingester
	sem      *semaphore.Weighted
	metrics  *gbotel.Metrics

	mu       sync.Mutex
	interval timeline.Interval
	reset    chan struct{}
}

// NewRefresher creates a Refresher with the given initial interval.
func NewRefresher(ing Ingester, interval timeline.Interval) *Refresher {
	return &Refresher{
		ingester: ing,
		sem:      semaphore.NewWeighted(1),
		interval: interval,
		reset:    make(chan struct{}, 1),
	}
}

// SetMetrics sets the instruments used to count skipped triggers.
func (r *Refresher) SetMetrics(m *gbotel.Metrics) { r.metrics = m }

// Refresh runs the pipeline unless a run is already in flight, in which
// case it returns ErrRefreshInFlight at once.
func (r *Refresher) Refresh(ctx context.Context, trigger ingest.Trigger) (timeline.Snapshot, error) {
	if !r.sem.TryAcquire(1) {
		slog.Info("refresh skipped, run in flight", "trigger", trigger)
		if r.metrics != nil {
			r.metrics.RecordSkipped(ctx, trigger)
		}
		return timeline.Snapshot{}, ErrRefreshInFlight
	}
	defer r.sem.Release(1)
	return r.ingester.Ingest(ctx, trigger)
}

// Interval returns the current auto-refresh interval.
func (r *Refresher) Interval() timeline.Interval {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interval
}

// SetInterval changes the auto-refresh interval. The timer restarts with
// the new period immediately.
func (r *Refresher) SetInterval(iv timeline.Interval) error {
	if !slices.Contains(timeline.Intervals, iv) {
		return fmt.Errorf("%w: refresh interval %s not offered", domain.ErrValidation, time.Duration(iv))
	}
	r.mu.Lock()
	r.interval = iv
	r.mu.Unlock()

	select {
	case r.reset <- struct{}{}:
	default:
	}
	slog.Info("refresh interval changed", "seconds", iv.Seconds())
	return nil
}

// Run drives timer refreshes until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	restart := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
		if iv := r.Interval(); !iv.Off() {
			ticker = time.NewTicker(time.Duration(iv))
			tick = ticker.C
		}
	}
	restart()
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.reset:
			restart()
		case <-tick:
			// Failures are already logged and stored as the fallback.
			_, _ = r.Refresh(ctx, ingest.TriggerTimer)
		}
	}
}
