package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router wires the collaborator-facing HTTP surface.
func Router(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/devices", h.ListDevices)
		r.Get("/devices/{id}/reading", h.GetReading)
		r.Post("/devices/{id}/toggle", h.ToggleDevice)
		r.Post("/devices/{id}/select", h.SelectDevice)
		r.Get("/trend", h.GetTrend)
		r.Get("/thresholds", h.GetThresholds)
		r.Put("/thresholds", h.PutThresholds)
		r.Get("/history", h.GetHistory)
		r.Get("/export", h.ExportHistory)
	})

	r.Get("/ws", h.HandleStream)

	return r
}
