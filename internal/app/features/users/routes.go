// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /users.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/{id}/active", h.HandleSetActive)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
