// internal/app/features/backup/export.go
package backup

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/ejchub/internal/app/system/activitylog"
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/app/system/dataload"
	"github.com/dalemusser/ejchub/internal/app/system/snapshot"
)

// ServeExport handles GET /backup/export. A degraded read answers 503
// instead of producing a partial backup.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	data, err := dataload.Load(r.Context(), h.Sources, h.LoadTimeout, h.Log)
	if err != nil {
		h.ErrLog.Unavailable(w, r, "backup: data load", err)
		return
	}
	if len(data.Degraded) > 0 {
		h.ErrLog.Unavailable(w, r, "backup: incomplete read",
			fmt.Errorf("collections unavailable: %s", strings.Join(data.Degraded, ", ")))
		return
	}

	now := h.Now()
	var buf bytes.Buffer
	if err := snapshot.Encode(&buf, snapshot.Build(data.Users, data.Registrations, data.Logs, now)); err != nil {
		h.ErrLog.LogServerError(w, r, "backup: encode", err, "Não foi possível gerar o backup.")
		return
	}

	if u != nil {
		h.Activity.BackupExported(r.Context(), r, activitylog.Actor{ID: u.ID, Username: u.Username})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+snapshot.Filename(now)+`"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
