package dashboard_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	uierrors "github.com/dalemusser/ejchub/internal/app/features/errors"
	"github.com/dalemusser/ejchub/internal/app/features/dashboard"
	"github.com/dalemusser/ejchub/internal/app/system/dataload"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/dalemusser/ejchub/internal/testutil"
	"go.uber.org/zap"
)

var saoPaulo = time.FixedZone("BRT", -3*60*60)

// now is 10:00 local on 2026-03-14.
var now = time.Date(2026, 3, 14, 10, 0, 0, 0, saoPaulo)

func newTestHandler(src dataload.Sources, timeout time.Duration) *dashboard.Handler {
	logger := zap.NewNop()
	h := dashboard.NewHandler(src, saoPaulo, timeout, uierrors.NewErrorLogger(logger), logger)
	h.Now = func() time.Time { return now }
	return h
}

func sources() dataload.Sources {
	regs := testutil.NewMemRegistrations(
		models.Registration{ID: "y1", Type: models.TypeYouth, FullName: "Ana", CreatedAt: 1, ServedTeams: models.TeamTally{"Cozinha": 1}},
		models.Registration{ID: "y2", Type: models.TypeYouth, FullName: "Beto", HasChildren: true, CreatedAt: 2},
		models.Registration{ID: "c1", Type: models.TypeCouple, HusbandName: "João", WifeName: "Maria", CreatedAt: 3, ServedTeams: models.TeamTally{"Cozinha": 2}},
	)
	midnight := time.Date(2026, 3, 14, 0, 0, 0, 0, saoPaulo).UnixMilli()
	var entries []models.UserLog
	for i := 0; i < 6; i++ {
		entries = append(entries, models.UserLog{ID: string(rune('a' + i)), Action: "Login realizado", Timestamp: midnight + int64(i)*1000})
	}
	entries = append(entries, models.UserLog{ID: "yesterday", Action: "Logout realizado", Timestamp: midnight - 1})
	return dataload.Sources{
		Users:         testutil.NewMemUsers(testutil.AdminUser().Account("x")),
		Registrations: regs,
		Logs:          testutil.NewMemLogs(entries...),
	}
}

type body struct {
	Stats struct {
		Youth      int `json:"youth"`
		Couples    int `json:"couples"`
		Total      int `json:"total"`
		Eligible   int `json:"eligible"`
		Ineligible int `json:"ineligible"`
		Services   int `json:"services"`
	} `json:"stats"`
	TeamCounts   map[string]int   `json:"teamCounts"`
	ActionsToday int              `json:"actionsToday"`
	RecentLogs   []models.UserLog `json:"recentLogs"`
	Degraded     []string         `json:"degraded"`
}

func TestServeDashboard(t *testing.T) {
	h := newTestHandler(sources(), time.Second)

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/dashboard", testutil.CadastroUser()))
	rec.AssertStatus(t, http.StatusOK)

	var got body
	rec.DecodeJSON(t, &got)
	if got.Stats.Youth != 2 || got.Stats.Couples != 1 || got.Stats.Total != 3 {
		t.Errorf("counts = %+v", got.Stats)
	}
	if got.Stats.Eligible != 2 || got.Stats.Ineligible != 1 {
		t.Errorf("eligibility = %+v", got.Stats)
	}
	if got.Stats.Services != 3 {
		t.Errorf("services = %d, want 3", got.Stats.Services)
	}
	if got.ActionsToday != 6 {
		t.Errorf("actionsToday = %d, want 6", got.ActionsToday)
	}
	if len(got.RecentLogs) != 5 {
		t.Fatalf("recentLogs = %d, want 5", len(got.RecentLogs))
	}
	if got.RecentLogs[0].ID != "f" {
		t.Errorf("most recent = %q, want f", got.RecentLogs[0].ID)
	}
	if got.TeamCounts["Cozinha"] != 2 {
		t.Errorf("teamCounts = %v", got.TeamCounts)
	}
	if len(got.Degraded) != 0 {
		t.Errorf("degraded = %v", got.Degraded)
	}
}

func TestServeDashboard_DegradesFailedCollection(t *testing.T) {
	src := sources()
	src.Registrations.(*testutil.MemRegistrations).ListErr = testutil.ErrInjected
	h := newTestHandler(src, time.Second)

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/dashboard", testutil.CadastroUser()))
	rec.AssertStatus(t, http.StatusOK)

	var got body
	rec.DecodeJSON(t, &got)
	if got.Stats.Total != 0 {
		t.Errorf("total = %d, want 0", got.Stats.Total)
	}
	if len(got.Degraded) != 1 || got.Degraded[0] != "registrations" {
		t.Errorf("degraded = %v", got.Degraded)
	}
	if got.ActionsToday != 6 {
		t.Errorf("logs should still load: actionsToday = %d", got.ActionsToday)
	}
}

type stuckRegistrations struct{}

func (stuckRegistrations) List(context.Context) ([]models.Registration, error) {
	time.Sleep(200 * time.Millisecond)
	return nil, nil
}

func TestServeDashboard_TimeoutIsUnavailable(t *testing.T) {
	src := sources()
	src.Registrations = stuckRegistrations{}
	h := newTestHandler(src, 20*time.Millisecond)

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/dashboard", testutil.CadastroUser()))
	rec.AssertStatus(t, http.StatusServiceUnavailable)
	rec.AssertContains(t, "connectivity_error")
}
