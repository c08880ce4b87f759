// internal/app/features/backup/routes.go
package backup

import (
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))
	r.Get("/export", h.ServeExport)
	r.Post("/import", h.HandleImport)
	return r
}
