package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/ganttboard/internal/middleware"
)

// MountRoutes registers the dashboard page and the API routes on r.
// Writes go through the refresh token check; manual refresh is also rate
// limited per client. rl may be nil.
func MountRoutes(r chi.Router, h *Handlers, rl *middleware.RateLimiter, tokenHash string) {
	r.Get("/", h.Dashboard)
	r.Handle("/static/*", Static())

	auth := middleware.RefreshToken(tokenHash)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		r.Get("/snapshot", h.GetSnapshot)
		r.Get("/rows", h.ListRows)
		r.Get("/facets", h.GetFacets)
		r.Get("/palette", h.GetPalette)
		r.Get("/runs", h.ListRuns)

		r.Group(func(r chi.Router) {
			if rl != nil {
				r.Use(rl.Handler)
			}
			r.Use(auth)
			r.Post("/refresh", h.Refresh)
		})
		r.Get("/refresh/interval", h.GetRefreshInterval)
		r.With(auth).Put("/refresh/interval", h.SetRefreshInterval)
	})
}
