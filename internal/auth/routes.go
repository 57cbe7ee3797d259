package auth

import "github.com/go-chi/chi/v5"

// MountRoutes registers password gate routes. These stay outside the unlock
// middleware so a locked application can still be unlocked.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/status", h.status)
	r.Post("/setup", h.setup)
	r.Put("/password", h.update)
	r.Post("/unlock", h.unlock)
	r.Post("/lock", h.lock)
}
