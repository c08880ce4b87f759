// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/ejchub/internal/app/features/errors"
	"github.com/dalemusser/ejchub/internal/app/store/docstore"
	userstore "github.com/dalemusser/ejchub/internal/app/store/users"
	"github.com/dalemusser/ejchub/internal/app/system/activitylog"
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/app/system/authutil"
	"github.com/dalemusser/ejchub/internal/app/system/confirm"
	"github.com/dalemusser/ejchub/internal/app/system/respond"
	"github.com/dalemusser/ejchub/internal/app/system/timeouts"
	"github.com/dalemusser/ejchub/internal/domain/lifecycle"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the account persistence the admin screens need.
type Store interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, u models.User) error
	Put(ctx context.Context, u models.User) error
	Delete(ctx context.Context, id string) error
}

// Handler serves account administration. Every route is ADMIN only.
type Handler struct {
	Users    Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Hasher   authutil.Hasher
	Gate     *confirm.Gate
	Activity *activitylog.Logger
	Now      func() time.Time
}

func NewHandler(
	users Store,
	errLog *uierrors.ErrorLogger,
	hasher authutil.Hasher,
	gate *confirm.Gate,
	activity *activitylog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:    users,
		Log:      logger,
		ErrLog:   errLog,
		Hasher:   hasher,
		Gate:     gate,
		Activity: activity,
		Now:      time.Now,
	}
}

type userView struct {
	models.User
	State lifecycle.State `json:"state"`
}

func viewOf(u models.User) userView {
	return userView{User: u.Redacted(), State: lifecycle.StateOf(u)}
}

type createRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type activeRequest struct {
	// Active sets the flag; when omitted the flag is toggled.
	Active *bool `json:"active"`
}

type deleteRequest struct {
	Confirmation string `json:"confirmation"`
}

func actorOf(u *auth.SessionUser) activitylog.Actor {
	return activitylog.Actor{ID: u.ID, Username: u.Username}
}

// ServeList handles GET /users. An optional q narrows by name or username.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Users.List(ctx)
	degraded := false
	if err != nil {
		h.Log.Warn("users: list failed, serving empty list", zap.Error(err))
		list, degraded = nil, true
	}

	q := text.Fold(query.Search(r, "q"))
	out := make([]userView, 0, len(list))
	for _, u := range list {
		if q != "" && !strings.Contains(text.Fold(u.FullName), q) && !strings.Contains(text.Fold(u.Username), q) {
			continue
		}
		out = append(out, viewOf(u))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"users": out, "degraded": degraded})
}

// HandleCreate handles POST /users. New accounts start pending first login.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.NewHandler().Unauthorized(w, r)
		return
	}
	var req createRequest
	if err := respond.DecodeJSON(w, r, &req, 64<<10); err != nil {
		h.ErrLog.LogBadRequest(w, r, "users: bad body", err, "Requisição inválida.")
		return
	}

	acct, err := lifecycle.NewAccount(uuid.NewString(), lifecycle.NewAccountInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	}, h.Hasher, h.Now().UnixMilli())
	var missing *lifecycle.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		fields := make(map[string]string, len(missing.Fields))
		for _, f := range missing.Fields {
			fields[f] = "Campo obrigatório"
		}
		h.ErrLog.Validation(w, r, "Preencha todos os campos.", fields)
		return
	case errors.Is(err, lifecycle.ErrInvalidRole):
		h.ErrLog.Validation(w, r, "Perfil inválido.", map[string]string{"role": "Use ADMIN ou CADASTRO"})
		return
	case errors.Is(err, lifecycle.ErrWeakPassword):
		h.ErrLog.Validation(w, r, "Senha fraca.", map[string]string{"password": authutil.PasswordRules()})
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "users: build account", err, "Não foi possível criar o usuário.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.Create(ctx, acct); err != nil {
		if errors.Is(err, userstore.ErrDuplicateUsername) {
			respond.Error(w, http.StatusConflict, "duplicate_username", "Usuário já existe!")
			return
		}
		h.ErrLog.Unavailable(w, r, "users: create", err)
		return
	}
	h.Activity.UserCreated(r.Context(), r, actorOf(admin), acct.Username)

	respond.JSON(w, http.StatusCreated, viewOf(acct))
}

// load fetches one account, answering 404 or 503 itself on failure.
func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	u, err := h.Users.GetByID(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, docstore.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "not_found", "Usuário não encontrado.")
		return nil, false
	}
	if err != nil {
		h.ErrLog.Unavailable(w, r, "users: load", err)
		return nil, false
	}
	return u, true
}

// HandleSetActive handles POST /users/{id}/active.
func (h *Handler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.NewHandler().Unauthorized(w, r)
		return
	}
	var req activeRequest
	if r.ContentLength != 0 {
		if err := respond.DecodeJSON(w, r, &req, 4<<10); err != nil {
			h.ErrLog.LogBadRequest(w, r, "users: bad body", err, "Requisição inválida.")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	target, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	active := !target.IsActive
	if req.Active != nil {
		active = *req.Active
	}

	next, err := lifecycle.SetActive(*target, active, admin.ID)
	if errors.Is(err, lifecycle.ErrSelfDeactivation) {
		respond.Error(w, http.StatusConflict, "self_deactivation", "Você não pode desativar a própria conta.")
		return
	}
	if err := h.Users.Put(ctx, next); err != nil {
		h.ErrLog.Unavailable(w, r, "users: set active", err)
		return
	}
	if next.IsActive != target.IsActive {
		h.Activity.UserActiveChanged(r.Context(), r, actorOf(admin), next.Username, next.IsActive)
	}

	respond.JSON(w, http.StatusOK, viewOf(next))
}

// HandleDelete handles DELETE /users/{id}. The body must carry the
// confirmation secret. The bootstrap admin and the caller's own account
// cannot be removed.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.NewHandler().Unauthorized(w, r)
		return
	}
	var req deleteRequest
	if err := respond.DecodeJSON(w, r, &req, 4<<10); err != nil {
		h.ErrLog.LogBadRequest(w, r, "users: bad body", err, "Requisição inválida.")
		return
	}
	if err := h.Gate.Check(req.Confirmation); err != nil {
		respond.Error(w, http.StatusForbidden, "confirmation_rejected", "Senha do administrador incorreta!")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	target, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	switch err := lifecycle.CanDelete(*target, admin.ID); {
	case errors.Is(err, lifecycle.ErrBootstrapAdmin):
		respond.Error(w, http.StatusConflict, "bootstrap_admin", "O administrador geral não pode ser excluído.")
		return
	case errors.Is(err, lifecycle.ErrSelfDeactivation):
		respond.Error(w, http.StatusConflict, "self_deletion", "Você não pode excluir a própria conta.")
		return
	}

	if err := h.Users.Delete(ctx, target.ID); err != nil {
		h.ErrLog.Unavailable(w, r, "users: delete", err)
		return
	}
	h.Activity.UserDeleted(r.Context(), r, actorOf(admin), target.Username)

	respond.NoContent(w)
}
