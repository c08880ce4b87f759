// internal/app/features/registrations/handler.go
package registrations

import (
	"context"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/ejchub/internal/app/features/errors"
	"github.com/dalemusser/ejchub/internal/app/system/activitylog"
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/app/system/authutil"
	"github.com/dalemusser/ejchub/internal/app/system/confirm"
	"github.com/dalemusser/ejchub/internal/app/system/metrics"
	"github.com/dalemusser/ejchub/internal/app/system/normalize"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/dalemusser/ejchub/internal/domain/registration"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// maxRegistrationBody leaves room for a photo sent as a data URL.
const maxRegistrationBody = 4 << 20

// Store is the registration persistence the handlers need.
type Store interface {
	List(ctx context.Context) ([]models.Registration, error)
	GetByID(ctx context.Context, id string) (*models.Registration, error)
	Put(ctx context.Context, r models.Registration) error
	Delete(ctx context.Context, id string) error
}

// AccountReader loads the acting user's account for password checks.
type AccountReader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Handler serves the registration list, form endpoints and CSV export.
type Handler struct {
	Regs     Store
	Users    AccountReader
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Hasher   authutil.Hasher
	Gate     *confirm.Gate
	Activity *activitylog.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

func NewHandler(
	regs Store,
	users AccountReader,
	errLog *uierrors.ErrorLogger,
	hasher authutil.Hasher,
	gate *confirm.Gate,
	activity *activitylog.Logger,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Regs:     regs,
		Users:    users,
		Log:      logger,
		ErrLog:   errLog,
		Hasher:   hasher,
		Gate:     gate,
		Activity: activity,
		Metrics:  m,
		Now:      time.Now,
	}
}

// regView is a registration as the API returns it.
type regView struct {
	models.Registration
	Ineligible bool `json:"ineligible"`
}

func viewOf(r models.Registration) regView {
	return regView{Registration: r, Ineligible: registration.IsIneligibleYouth(r)}
}

func viewsOf(list []models.Registration) []regView {
	out := make([]regView, 0, len(list))
	for _, r := range list {
		out = append(out, viewOf(r))
	}
	return out
}

// criteria reads the list filter from the query string.
func criteria(r *http.Request) registration.Criteria {
	return registration.Criteria{
		Query: query.Search(r, "q"),
		Type:  normalize.RegistrationType(query.Get(r, "type")),
		Team:  strings.TrimSpace(query.Get(r, "team")),
	}
}

func actorOf(u *auth.SessionUser) activitylog.Actor {
	return activitylog.Actor{ID: u.ID, Username: u.Username}
}

// requireUser returns the signed-in user or answers 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*auth.SessionUser, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.NewHandler().Unauthorized(w, r)
		return nil, false
	}
	return u, true
}
