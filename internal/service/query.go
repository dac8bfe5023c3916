package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Strob0t/ganttboard/internal/domain/timeline"
	"github.com/Strob0t/ganttboard/internal/port/cache"
)

// View is one filtered, ordered chart.
type View struct {
	SnapshotID string                `json:"snapshot_id"`
	LoadedAt   time.Time             `json:"loaded_at"`
	Fallback   bool                  `json:"fallback"`
	Error      string                `json:"error,omitempty"`
	Title      string                `json:"title"`
	Selection  timeline.Selection    `json:"selection"`
	Rows       []timeline.DisplayRow `json:"rows"`
	Facets     timeline.Facets       `json:"facets"`
	Palette    map[string]string     `json:"palette"`
}

// Status summarises the current snapshot without its rows.
type Status struct {
	SnapshotID string          `json:"snapshot_id"`
	LoadedAt   time.Time       `json:"loaded_at"`
	Source     string          `json:"source"`
	Fallback   bool            `json:"fallback"`
	Error      string          `json:"error,omitempty"`
	Rows       int             `json:"rows"`
	Report     timeline.Report `json:"report"`
}

// QueryService answers dashboard reads from the current snapshot.
type QueryService struct {
	store *SnapshotStore
	cache cache.Cache
	ttl   time.Duration
}

// NewQueryService creates a QueryService. c may be nil to disable memoisation.
func NewQueryService(store *SnapshotStore, c cache.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: store, cache: c, ttl: ttl}
}

func viewKey(snapshotID string, sel timeline.Selection) string {
	return "view:" + snapshotID + ":" + sel.Key()
}

// View filters and orders the current snapshot for sel. Results are
// memoised per snapshot; cache errors only cost a recomputation.
func (s *QueryService) View(ctx context.Context, sel timeline.Selection) (View, error) {
	snap := s.store.Load()
	sel = sel.Canonical()
	key := viewKey(snap.ID, sel)

	if s.cache != nil {
		data, found, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			slog.Warn("view cache get failed", "key", key, "error", err)
		case found:
			var v View
			if err := json.Unmarshal(data, &v); err == nil {
				return v, nil
			}
			slog.Warn("view cache entry unreadable", "key", key)
		}
	}

	v := buildView(snap, sel)

	if s.cache != nil {
		if data, err := json.Marshal(v); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				slog.Warn("view cache set failed", "key", key, "error", err)
			}
		}
	}
	return v, nil
}

func buildView(snap *timeline.Snapshot, sel timeline.Selection) View {
	rows := timeline.Order(timeline.Filter(snap.Rows, sel))
	return View{
		SnapshotID: snap.ID,
		LoadedAt:   snap.LoadedAt,
		Fallback:   snap.Fallback,
		Error:      snap.Error,
		Title:      timeline.Title(sel),
		Selection:  sel,
		Rows:       rows,
		Facets:     snap.Facets,
		Palette:    timeline.Palette(snap.Facets.Statuses),
	}
}

// Facets returns the facets of the current snapshot.
func (s *QueryService) Facets() timeline.Facets {
	return s.store.Load().Facets
}

// Status describes the current snapshot.
func (s *QueryService) Status() Status {
	snap := s.store.Load()
	return Status{
		SnapshotID: snap.ID,
		LoadedAt:   snap.LoadedAt,
		Source:     snap.Source,
		Fallback:   snap.Fallback,
		Error:      snap.Error,
		Rows:       len(snap.Rows),
		Report:     snap.Report,
	}
}
