// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/ejchub/internal/app/system/respond"
)

// Handler serves the fallback error endpoints. No DB needed.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden handles GET /forbidden (target of role redirects).
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusForbidden, "forbidden", "Você não tem permissão para acessar esta página.")
}

// Unauthorized handles GET /unauthorized.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusUnauthorized, "unauthorized", "Faça login para continuar.")
}

// NotFound is the router's NotFound handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusNotFound, "not_found", "Recurso não encontrado.")
}

// MethodNotAllowed is the router's MethodNotAllowed handler.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusMethodNotAllowed, "method_not_allowed", "Método não permitido.")
}
