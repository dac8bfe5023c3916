package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Strob0t/ganttboard/internal/adapter/filewatch"
	gbhttp "github.com/Strob0t/ganttboard/internal/adapter/http"
	gbmcp "github.com/Strob0t/ganttboard/internal/adapter/mcp"
	gbotel "github.com/Strob0t/ganttboard/internal/adapter/otel"
	"github.com/Strob0t/ganttboard/internal/adapter/ristretto"
	"github.com/Strob0t/ganttboard/internal/adapter/ws"
	"github.com/Strob0t/ganttboard/internal/config"
	"github.com/Strob0t/ganttboard/internal/domain/ingest"
	"github.com/Strob0t/ganttboard/internal/domain/timeline"
	"github.com/Strob0t/ganttboard/internal/logger"
	"github.com/Strob0t/ganttboard/internal/middleware"
	"github.com/Strob0t/ganttboard/internal/port/source"
	"github.com/Strob0t/ganttboard/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closer := logger.New(cfg.Logging)
	defer closer.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"source_kind", cfg.Source.Kind,
		"refresh_interval", cfg.Refresh.IntervalSeconds,
		"admission", cfg.Pipeline.Admission,
		"log_level", cfg.Logging.Level,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Infrastructure ---

	shutdownOTel, err := gbotel.Setup(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownOTel(flushCtx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	metrics, err := gbotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	in, err := openInfra(ctx, cfg)
	if err != nil {
		return err
	}
	defer in.close()

	src, err := source.New(cfg.Source)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	slog.Info("source configured", "kind", cfg.Source.Kind, "locator", src.Locator())

	// --- Services ---

	hub := ws.NewHub(cfg.Server.CORSOrigin)
	defer hub.Close()

	initial := timeline.Fallback("initial", src.Locator(), time.Now(), cfg.Pipeline.LabelMax, errors.New("no data loaded yet"))
	store := service.NewSnapshotStore(&initial)

	ingestSvc := newIngestService(cfg, in, ingestDeps{
		source:  src,
		store:   store,
		metrics: metrics,
		hub:     hub,
	})

	interval, err := timeline.IntervalFromSeconds(cfg.Refresh.IntervalSeconds)
	if err != nil {
		return fmt.Errorf("refresh interval: %w", err)
	}
	refresher := service.NewRefresher(ingestSvc, interval)
	refresher.SetMetrics(metrics)

	querySvc := service.NewQueryService(store, in.views, cfg.Cache.TTL)

	// Failures are stored as the fallback snapshot; the server starts regardless.
	if _, err := refresher.Refresh(ctx, ingest.TriggerStartup); err != nil {
		slog.Warn("startup ingest failed, serving fallback", "error", err)
	}

	go refresher.Run(ctx)

	if lf, ok := src.(source.LocalFile); ok && lf.Path() != "" {
		watcher := filewatch.New(lf.Path(), cfg.Source.WatchDebounce)
		go func() {
			err := watcher.Run(ctx, func(ctx context.Context) {
				if _, err := refresher.Refresh(ctx, ingest.TriggerFile); err != nil {
					slog.Warn("file triggered refresh", "error", err)
				}
			})
			if err != nil {
				slog.Error("file watcher stopped", "path", lf.Path(), "error", err)
			}
		}()
	}

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	go limiter.RunCleanup(ctx, cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)

	// --- HTTP ---

	handlers := &gbhttp.Handlers{
		Query:     querySvc,
		Ingest:    ingestSvc,
		Refresher: refresher,
		UI:        cfg.UI,
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(gbotel.HTTPMiddleware(cfg.OTel.ServiceName))
	r.Use(gbhttp.SecurityHeaders)
	r.Use(gbhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(gbhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// Health endpoint with snapshot status
	r.Get("/health", healthHandler(querySvc, hub, in.l1))

	// WebSocket endpoint
	r.Get("/ws", hub.HandleWS)

	// MCP (streamable HTTP)
	if cfg.MCP.Enabled {
		mcpSrv := gbmcp.NewServer(
			gbmcp.ServerConfig{Name: cfg.MCP.Name, Version: cfg.MCP.Version},
			gbmcp.ServerDeps{Snapshots: querySvc},
		)
		r.Handle("/mcp", mcpSrv.Handler())
		slog.Info("mcp endpoint enabled", "path", "/mcp")
	}

	// Dashboard and API routes
	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))
		gbhttp.MountRoutes(r, handlers, limiter, cfg.Auth.RefreshTokenHash)
	})

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-done:
	case err := <-serveErr:
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}

// healthHandler returns an http.HandlerFunc that reports service health.
func healthHandler(q *service.QueryService, hub *ws.Hub, views *ristretto.Cache) http.HandlerFunc {
	type healthStatus struct {
		Status       string    `json:"status"`
		SnapshotID   string    `json:"snapshot_id"`
		LoadedAt     time.Time `json:"loaded_at"`
		Fallback     bool      `json:"fallback"`
		WSClients    int       `json:"ws_clients"`
		ViewHitRatio float64   `json:"view_cache_hit_ratio"`
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		st := q.Status()
		status := healthStatus{
			Status:     "ok",
			SnapshotID: st.SnapshotID,
			LoadedAt:   st.LoadedAt,
			Fallback:   st.Fallback,
			WSClients:  hub.ConnectionCount(),
		}
		if views != nil {
			status.ViewHitRatio = views.HitRatio()
		}
		if st.Fallback {
			status.Status = "degraded"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}
