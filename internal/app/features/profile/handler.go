// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/ejchub/internal/app/features/errors"
	"github.com/dalemusser/ejchub/internal/app/store/docstore"
	"github.com/dalemusser/ejchub/internal/app/system/activitylog"
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/app/system/authutil"
	"github.com/dalemusser/ejchub/internal/app/system/respond"
	"github.com/dalemusser/ejchub/internal/domain/lifecycle"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"go.uber.org/zap"
)

// maxProfileBody leaves room for a photo sent as a data URL.
const maxProfileBody = 4 << 20

// UserStore reads and replaces accounts.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Put(ctx context.Context, u models.User) error
}

// Handler owns the profile and first-login handlers.
type Handler struct {
	Users      UserStore
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	Hasher     authutil.Hasher
	Activity   *activitylog.Logger
}

// NewHandler constructs a Handler bound to the given user store and logger.
func NewHandler(
	users UserStore,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	hasher authutil.Hasher,
	activity *activitylog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      users,
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sessionMgr,
		Hasher:     hasher,
		Activity:   activity,
	}
}

type profileView struct {
	User          models.User `json:"user"`
	PasswordRules string      `json:"passwordRules"`
	Redirect      string      `json:"redirect,omitempty"`
}

// loadCurrent fetches the signed-in account. It writes the error response
// itself and returns ok=false when the handler should stop.
func (h *Handler) loadCurrent(ctx context.Context, w http.ResponseWriter, r *http.Request) (*auth.SessionUser, *models.User, bool) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized", "Faça login para continuar")
		return nil, nil, false
	}
	u, err := h.Users.GetByID(ctx, su.ID)
	if errors.Is(err, docstore.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "not_found", "Usuário não encontrado.")
		return nil, nil, false
	}
	if err != nil {
		h.ErrLog.Unavailable(w, r, "profile: load user", err)
		return nil, nil, false
	}
	return su, u, true
}

// writeLifecycleError maps a lifecycle failure onto a response.
// missingMsg is the summary shown when required fields are blank.
func (h *Handler) writeLifecycleError(w http.ResponseWriter, r *http.Request, err error, missingMsg string) {
	var missing *lifecycle.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		fields := make(map[string]string, len(missing.Fields))
		for _, f := range missing.Fields {
			fields[f] = "Campo obrigatório"
		}
		h.ErrLog.Validation(w, r, missingMsg, fields)
	case errors.Is(err, lifecycle.ErrConfirmationMismatch):
		h.ErrLog.Validation(w, r, "As senhas não coincidem!", map[string]string{
			"confirmPassword": "As senhas não coincidem!",
		})
	case errors.Is(err, lifecycle.ErrWeakPassword):
		h.ErrLog.Validation(w, r, "Senha fraca.", map[string]string{
			"password": authutil.PasswordRules(),
		})
	case errors.Is(err, lifecycle.ErrNotPending):
		respond.Error(w, http.StatusConflict, "not_pending", "O primeiro acesso já foi concluído.")
	default:
		h.ErrLog.LogServerError(w, r, "profile: apply change", err, "Não foi possível salvar o perfil.")
	}
}
