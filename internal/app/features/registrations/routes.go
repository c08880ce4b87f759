// internal/app/features/registrations/routes.go
package registrations

import (
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /registrations. Both roles may use every endpoint.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Post("/validate", h.HandleValidate)
		pr.Get("/export.csv", h.ServeExportCSV)
		pr.Get("/{id}", h.ServeOne)
		pr.Put("/{id}", h.HandleEdit)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
