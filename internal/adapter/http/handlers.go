package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/Strob0t/ganttboard/internal/config"
	"github.com/Strob0t/ganttboard/internal/domain/ingest"
	"github.com/Strob0t/ganttboard/internal/domain/timeline"
	"github.com/Strob0t/ganttboard/internal/service"
)

const (
	defaultRunsLimit = 20
	maxBodyBytes     = 1 << 10
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Query     *service.QueryService
	Ingest    *service.IngestService
	Refresher *service.Refresher
	UI        config.UI
}

// GetSnapshot handles GET /api/v1/snapshot
func (h *Handlers) GetSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Query.Status())
}

// ListRows handles GET /api/v1/rows?month=&status=&assignee=
// status and assignee may repeat.
func (h *Handlers) ListRows(w http.ResponseWriter, r *http.Request) {
	sel := timeline.Selection{
		Month:     r.URL.Query().Get("month"),
		Statuses:  queryList(r, "status"),
		Assignees: queryList(r, "assignee"),
	}
	view, err := h.Query.View(r.Context(), sel)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetFacets handles GET /api/v1/facets
func (h *Handlers) GetFacets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Query.Facets())
}

type paletteResponse struct {
	Theme    timeline.Theme       `json:"theme"`
	Colors   timeline.ThemeColors `json:"colors"`
	Statuses map[string]string    `json:"statuses"`
	Neutral  string               `json:"neutral"`
}

// GetPalette handles GET /api/v1/palette?theme=light|dark
func (h *Handlers) GetPalette(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("theme")
	if name == "" {
		name = h.UI.Theme
	}
	theme, ok := timeline.ParseTheme(name)
	if !ok {
		writeError(w, http.StatusBadRequest, "theme must be light or dark")
		return
	}
	writeJSON(w, http.StatusOK, paletteResponse{
		Theme:    theme,
		Colors:   theme.Colors(),
		Statuses: timeline.Palette(h.Query.Facets().Statuses),
		Neutral:  timeline.NeutralColor,
	})
}

// Refresh handles POST /api/v1/refresh
//
// A failed run still answers 200: the fallback snapshot is served and its
// error is part of the status.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	// The run outlives a disconnecting client; the source timeout bounds it.
	_, err := h.Refresher.Refresh(context.WithoutCancel(r.Context()), ingest.TriggerManual)
	if errors.Is(err, service.ErrRefreshInFlight) {
		writeDomainError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, h.Query.Status())
}

type intervalPayload struct {
	Seconds int   `json:"seconds"`
	Options []int `json:"options,omitempty"`
}

func intervalOptions() []int {
	out := make([]int, len(timeline.Intervals))
	for i, iv := range timeline.Intervals {
		out[i] = iv.Seconds()
	}
	return out
}

// GetRefreshInterval handles GET /api/v1/refresh/interval
func (h *Handlers) GetRefreshInterval(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, intervalPayload{
		Seconds: h.Refresher.Interval().Seconds(),
		Options: intervalOptions(),
	})
}

// SetRefreshInterval handles PUT /api/v1/refresh/interval
func (h *Handlers) SetRefreshInterval(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[intervalPayload](w, r, maxBodyBytes)
	if !ok {
		return
	}
	iv, err := timeline.IntervalFromSeconds(req.Seconds)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Refresher.SetInterval(iv); err != nil {
		writeDomainError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, intervalPayload{
		Seconds: iv.Seconds(),
		Options: intervalOptions(),
	})
}

// ListRuns handles GET /api/v1/runs?limit=
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultRunsLimit)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	runs, err := h.Ingest.RecentRuns(r.Context(), limit)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}
