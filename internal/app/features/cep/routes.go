// internal/app/features/cep/routes.go
package cep

import (
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the lookup endpoints. Every call reaches ViaCEP, so each
// client IP is throttled by limiter.
func Routes(h *Handler, sm *auth.SessionManager, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(limiter.Middleware)
		pr.Get("/{code}", h.ServeLookup)
		pr.Post("/{code}/apply", h.HandleApply)
	})
	return r
}
