// internal/app/features/registrations/list.go
package registrations

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/ejchub/internal/app/store/docstore"
	"github.com/dalemusser/ejchub/internal/app/system/csvutil"
	"github.com/dalemusser/ejchub/internal/app/system/respond"
	"github.com/dalemusser/ejchub/internal/app/system/timeouts"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/dalemusser/ejchub/internal/domain/registration"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type listResponse struct {
	Registrations []regView          `json:"registrations"`
	Stats         registration.Stats `json:"stats"`
	Degraded      bool               `json:"degraded,omitempty"`
}

// loadAll reads every registration. A read failure degrades to an empty
// list; the second return reports that it happened.
func (h *Handler) loadAll(ctx context.Context) ([]models.Registration, bool) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	list, err := h.Regs.List(ctx)
	if err != nil {
		h.Log.Warn("registrations: list failed, serving empty list", zap.Error(err))
		return nil, true
	}
	return list, false
}

// ServeList handles GET /registrations.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	all, degraded := h.loadAll(r.Context())
	filtered := registration.Filter(all, criteria(r))

	respond.JSON(w, http.StatusOK, listResponse{
		Registrations: viewsOf(filtered),
		Stats:         registration.Summarize(filtered),
		Degraded:      degraded,
	})
}

// ServeExportCSV handles GET /registrations/export.csv. An empty result
// answers 204 and no file.
func (h *Handler) ServeExportCSV(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}

	all, _ := h.loadAll(r.Context())
	filtered := registration.Filter(all, criteria(r))

	var buf bytes.Buffer
	err := csvutil.WriteRegistrations(&buf, filtered)
	if errors.Is(err, csvutil.ErrNothingToExport) {
		respond.NoContent(w)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "registrations: write csv", err, "Não foi possível gerar o CSV.")
		return
	}

	h.Activity.CSVExported(r.Context(), r, actorOf(u))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+csvutil.Filename(h.Now())+`"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ServeOne handles GET /registrations/{id}.
func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	reg, ok := h.load(ctx, w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, viewOf(*reg))
}

// load fetches one registration, answering 404 or 503 itself on failure.
func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request, id string) (*models.Registration, bool) {
	reg, err := h.Regs.GetByID(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "not_found", "Ficha não encontrada.")
		return nil, false
	}
	if err != nil {
		h.ErrLog.Unavailable(w, r, "registrations: load", err)
		return nil, false
	}
	return reg, true
}
