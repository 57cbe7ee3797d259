package settings

import "github.com/go-chi/chi/v5"

// MountRoutes registers settings and data lifecycle routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Put("/", h.update)
	r.Get("/export", h.export)
	r.Post("/import", h.importSnapshot)
	r.Post("/reset", h.reset)
}
