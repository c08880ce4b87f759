// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves /profile.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeProfile)
		pr.Post("/", h.HandleUpdateProfile)
		pr.Put("/", h.HandleUpdateProfile)
	})
	return r
}

// FirstLoginRoutes serves /first-login.
func FirstLoginRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeFirstLogin)
		pr.Post("/", h.HandleFirstLogin)
	})
	return r
}
