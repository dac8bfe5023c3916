package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Strob0t/ganttboard/internal/adapter/memlog"
	gbnats "github.com/Strob0t/ganttboard/internal/adapter/nats"
	"github.com/Strob0t/ganttboard/internal/adapter/natskv"
	gbotel "github.com/Strob0t/ganttboard/internal/adapter/otel"
	"github.com/Strob0t/ganttboard/internal/adapter/postgres"
	"github.com/Strob0t/ganttboard/internal/adapter/ristretto"
	"github.com/Strob0t/ganttboard/internal/adapter/tiered"
	"github.com/Strob0t/ganttboard/internal/config"
	"github.com/Strob0t/ganttboard/internal/domain/timeline"
	"github.com/Strob0t/ganttboard/internal/port/broadcast"
	"github.com/Strob0t/ganttboard/internal/port/cache"
	"github.com/Strob0t/ganttboard/internal/port/runlog"
	"github.com/Strob0t/ganttboard/internal/port/source"
	"github.com/Strob0t/ganttboard/internal/resilience"
	"github.com/Strob0t/ganttboard/internal/service"
)

const memRunLogCapacity = 200

// policyFromConfig translates the pipeline and layout settings into the
// normalisation policy.
func policyFromConfig(cfg *config.Config) timeline.Policy {
	c := cfg.Pipeline.Columns
	return timeline.Policy{
		Layout: timeline.Layout{
			Columns: timeline.Columns{
				ID:       c.ID,
				Status:   c.Status,
				Start:    c.Start,
				End:      c.End,
				Assignee: c.Assignee,
			},
			SkipRows:  cfg.Source.SkipRows,
			Positions: cfg.Source.Positions,
		},
		LabelMax:        cfg.Pipeline.LabelMax,
		MinParseRatio:   cfg.Pipeline.MinParseRatio,
		Admission:       timeline.Admission(cfg.Pipeline.Admission),
		ImputeEndDays:   cfg.Pipeline.ImputeEndDays,
		ImputeStartDays: cfg.Pipeline.ImputeStartDays,
	}
}

// newBreaker builds the source circuit breaker and logs its transitions.
func newBreaker(cfg config.Breaker) *resilience.Breaker {
	b := resilience.NewBreaker("source", cfg.MaxFailures, cfg.Timeout)
	b.OnStateChange(func(name string, from, to resilience.State) {
		slog.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
	})
	return b
}

// infra holds the optional backends and how to release them.
type infra struct {
	runs    runlog.Store
	views   cache.Cache
	l1      *ristretto.Cache
	queue   *gbnats.Queue
	closers []func()
}

func (in *infra) close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		in.closers[i]()
	}
}

// openInfra connects the configured backends. Postgres and NATS are
// optional: without them runs are kept in memory and views only in the
// in-process cache.
func openInfra(ctx context.Context, cfg *config.Config) (*infra, error) {
	in := &infra{runs: memlog.New(memRunLogCapacity)}

	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB << 20)
	if err != nil {
		return nil, fmt.Errorf("view cache: %w", err)
	}
	in.views = l1
	in.l1 = l1
	in.closers = append(in.closers, l1.Close)

	if cfg.Postgres.DSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			in.close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		in.closers = append(in.closers, pool.Close)
		slog.Info("postgres connected")

		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			in.close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		slog.Info("migrations applied")
		in.runs = postgres.NewRunStore(pool)
	}

	if cfg.NATS.URL != "" {
		queue, err := gbnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			in.close()
			return nil, fmt.Errorf("nats: %w", err)
		}
		in.queue = queue
		in.closers = append(in.closers, func() { _ = queue.Close() })

		kv, err := natskv.Open(ctx, queue.JetStream(), cfg.Cache.L2Bucket, cfg.Cache.TTL)
		if err != nil {
			slog.Warn("nats kv view cache unavailable, using in-process cache only", "error", err)
		} else {
			in.views = tiered.New(l1, kv, cfg.Cache.TTL)
		}
	}
	return in, nil
}

type ingestDeps struct {
	source  source.Source
	store   *service.SnapshotStore
	metrics *gbotel.Metrics
	hub     broadcast.Broadcaster
}

// newIngestService wires the pipeline service to its collaborators.
func newIngestService(cfg *config.Config, in *infra, deps ingestDeps) *service.IngestService {
	svc := service.NewIngestService(deps.source, policyFromConfig(cfg), deps.store, newBreaker(cfg.Breaker))
	svc.SetRunLog(in.runs)
	if deps.metrics != nil {
		svc.SetMetrics(deps.metrics)
	}
	if deps.hub != nil {
		svc.SetBroadcaster(deps.hub)
	}
	if in.queue != nil {
		svc.SetPublisher(in.queue)
	}
	return svc
}
