// internal/app/features/logs/handler.go
package logs

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/ejchub/internal/app/system/respond"
	"github.com/dalemusser/ejchub/internal/app/system/timeouts"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// maxLimit caps a single page of the activity log.
const maxLimit = 1000

// Lister reads the activity log, newest first. limit <= 0 means all.
type Lister interface {
	List(ctx context.Context, limit int64) ([]models.UserLog, error)
}

type Handler struct {
	Logs Lister
	Log  *zap.Logger
}

func NewHandler(logs Lister, logger *zap.Logger) *Handler {
	return &Handler{Logs: logs, Log: logger}
}

type listResponse struct {
	Logs     []models.UserLog `json:"logs"`
	Degraded bool             `json:"degraded,omitempty"`
}

// ServeList handles GET /logs. ?limit=N returns the N newest entries.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	limit := int64(maxLimit)
	if s := query.Get(r, "limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			respond.Error(w, http.StatusBadRequest, "bad_request", "limit deve ser um número positivo.")
			return
		}
		if n < limit {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entries, err := h.Logs.List(ctx, limit)
	if err != nil {
		h.Log.Warn("logs: list failed, serving empty list", zap.Error(err))
		respond.JSON(w, http.StatusOK, listResponse{Logs: []models.UserLog{}, Degraded: true})
		return
	}
	if entries == nil {
		entries = []models.UserLog{}
	}
	respond.JSON(w, http.StatusOK, listResponse{Logs: entries})
}
