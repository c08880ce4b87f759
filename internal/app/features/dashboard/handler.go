// internal/app/features/dashboard/handler.go
package dashboard

import (
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/ejchub/internal/app/features/errors"
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/app/system/dataload"
	"github.com/dalemusser/ejchub/internal/app/system/respond"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/dalemusser/ejchub/internal/domain/registration"
	"go.uber.org/zap"
)

// recentLogCount is how many activity entries the dashboard shows.
const recentLogCount = 5

type Handler struct {
	Sources     dataload.Sources
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Location    *time.Location
	LoadTimeout time.Duration
	Now         func() time.Time
}

// NewHandler builds the dashboard. loc decides where "today" starts; nil
// means UTC.
func NewHandler(src dataload.Sources, loc *time.Location, loadTimeout time.Duration, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		Sources:     src,
		Log:         logger,
		ErrLog:      errLog,
		Location:    loc,
		LoadTimeout: loadTimeout,
		Now:         time.Now,
	}
}

type dashboardData struct {
	User         *auth.SessionUser  `json:"user"`
	Stats        registration.Stats `json:"stats"`
	TeamCounts   map[string]int     `json:"teamCounts"`
	ActionsToday int                `json:"actionsToday"`
	RecentLogs   []models.UserLog   `json:"recentLogs"`
	Degraded     []string           `json:"degraded,omitempty"`
}

// ServeDashboard handles GET /dashboard.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	data, err := dataload.Load(r.Context(), h.Sources, h.LoadTimeout, h.Log)
	if errors.Is(err, dataload.ErrTimeout) {
		h.ErrLog.Unavailable(w, r, "dashboard: data load", err)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: data load", err, "Não foi possível carregar o painel.")
		return
	}

	recent := data.Logs
	if len(recent) > recentLogCount {
		recent = recent[:recentLogCount]
	}

	respond.JSON(w, http.StatusOK, dashboardData{
		User:         u,
		Stats:        registration.Summarize(data.Registrations),
		TeamCounts:   registration.TeamCounts(data.Registrations),
		ActionsToday: countSince(data.Logs, startOfDay(h.Now(), h.Location)),
		RecentLogs:   recent,
		Degraded:     data.Degraded,
	})
}

func startOfDay(now time.Time, loc *time.Location) time.Time {
	t := now.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// countSince counts entries stamped on or after since.
func countSince(logs []models.UserLog, since time.Time) int {
	ms := since.UnixMilli()
	n := 0
	for _, l := range logs {
		if l.Timestamp >= ms {
			n++
		}
	}
	return n
}
