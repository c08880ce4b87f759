// internal/app/features/cep/handler.go
package cep

import (
	"context"
	"errors"
	"net"
	"net/http"

	uierrors "github.com/dalemusser/ejchub/internal/app/features/errors"
	"github.com/dalemusser/ejchub/internal/app/system/cep"
	"github.com/dalemusser/ejchub/internal/app/system/respond"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxDraftBytes = 64 << 10

// Lookuper resolves a postal code to an address.
type Lookuper interface {
	Lookup(ctx context.Context, code string) (cep.Address, error)
}

type Handler struct {
	CEP    Lookuper
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(lookup Lookuper, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{CEP: lookup, Log: logger, ErrLog: errLog}
}

// ServeLookup handles GET /cep/{code}.
func (h *Handler) ServeLookup(w http.ResponseWriter, r *http.Request) {
	addr, err := h.CEP.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.lookupFailed(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, addr)
}

// HandleApply handles POST /cep/{code}/apply. The body is a registration
// draft; the response is the same draft with the address fields the lookup
// returned filled in.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var draft models.Registration
	if err := respond.DecodeJSON(w, r, &draft, maxDraftBytes); err != nil {
		h.ErrLog.LogBadRequest(w, r, "cep: decode draft", err, "Dados inválidos.")
		return
	}
	addr, err := h.CEP.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.lookupFailed(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, cep.Apply(draft, addr))
}

func (h *Handler) lookupFailed(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cep.ErrInvalidCode):
		respond.Error(w, http.StatusBadRequest, "invalid_cep", "CEP deve ter 8 dígitos.")
	case errors.Is(err, cep.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "not_found", "CEP não encontrado.")
	case isTimeout(err):
		h.Log.Warn("cep lookup timed out", zap.Error(err))
		respond.Error(w, http.StatusGatewayTimeout, "cep_timeout", "O serviço de CEP não respondeu.")
	default:
		h.Log.Warn("cep lookup failed", zap.Error(err))
		respond.Error(w, http.StatusBadGateway, "cep_unavailable", "Serviço de CEP indisponível.")
	}
}

// isTimeout covers both a cancelled request context and the HTTP client's
// own Timeout, which surfaces as a net.Error.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
