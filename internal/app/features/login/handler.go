// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/ejchub/internal/app/features/errors"
	"github.com/dalemusser/ejchub/internal/app/store/docstore"
	userstore "github.com/dalemusser/ejchub/internal/app/store/users"
	"github.com/dalemusser/ejchub/internal/app/system/activitylog"
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/app/system/authutil"
	"github.com/dalemusser/ejchub/internal/app/system/metrics"
	"github.com/dalemusser/ejchub/internal/app/system/ratelimit"
	"github.com/dalemusser/ejchub/internal/app/system/respond"
	"github.com/dalemusser/ejchub/internal/app/system/timeouts"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// Messages shown on the login screen.
const (
	msgInvalid     = "Usuário ou senha inválidos."
	msgDeactivated = "Sua conta está desativada. Fale com o administrador."
)

// UserFinder looks an account up by its login name.
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type Handler struct {
	Users      UserFinder
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Hasher     authutil.Hasher
	Limiter    *ratelimit.LoginLimiter
	Activity   *activitylog.Logger
	Metrics    *metrics.Metrics
}

func NewHandler(
	users UserFinder,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	hasher authutil.Hasher,
	limiter *ratelimit.LoginLimiter,
	activity *activitylog.Logger,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      users,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Hasher:     hasher,
		Limiter:    limiter,
		Activity:   activity,
		Metrics:    m,
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Return   string `json:"return"`
}

type loginResponse struct {
	User     *auth.SessionUser `json:"user"`
	Redirect string            `json:"redirect"`
}

// readCredentials accepts a JSON body or a classic form post.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, error) {
	var c credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := respond.DecodeJSON(w, r, &c, 64<<10); err != nil {
			return c, err
		}
	} else {
		c.Username = r.FormValue("username")
		c.Password = r.FormValue("password")
		c.Return = r.FormValue("return")
	}
	if c.Return == "" {
		c.Return = r.URL.Query().Get("return")
	}
	c.Username = strings.TrimSpace(c.Username)
	return c, nil
}

// ServeLogin handles GET /login. It reports who is signed in, if anyone.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.JSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	respond.JSON(w, http.StatusOK, loginResponse{User: u, Redirect: landing(u, "")})
}

// HandleLoginPost handles POST /login.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(w, r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: bad body", err, "Requisição inválida.")
		return
	}
	if c.Username == "" || c.Password == "" {
		h.ErrLog.Validation(w, r, "Informe usuário e senha.", map[string]string{
			"username": "obrigatório",
			"password": "obrigatório",
		})
		return
	}

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, c.Username); !ok {
			h.Metrics.Login("rate_limited")
			h.Log.Warn("login rate limited",
				zap.String("username", c.Username),
				zap.String("ip", ratelimit.ClientIP(r)))
			w.Header().Set("Retry-After", "60")
			respond.Error(w, http.StatusTooManyRequests, "rate_limited", reason)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, c.Username)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		h.ErrLog.Unavailable(w, r, "login: user lookup failed", err)
		return
	}
	if err != nil {
		u = nil
	}

	switch err := authutil.Verify(u, c.Password, h.Hasher); {
	case errors.Is(err, authutil.ErrAccountDeactivated):
		h.Metrics.Login("deactivated")
		h.Log.Info("login refused: account deactivated", zap.String("username", c.Username))
		respond.Error(w, http.StatusForbidden, "account_deactivated", msgDeactivated)
		return
	case err != nil:
		h.Metrics.Login("invalid")
		h.Log.Info("login failed", zap.String("username", c.Username))
		respond.Error(w, http.StatusUnauthorized, "invalid_credentials", msgInvalid)
		return
	}

	su := userstore.SessionUser(*u)
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.ErrLog.LogServerError(w, r, "login: save session", err, "Não foi possível iniciar a sessão.")
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetUsername(c.Username)
	}
	h.Metrics.Login("success")
	h.Activity.Login(r.Context(), r, activitylog.Actor{ID: u.ID, Username: u.Username})

	respond.JSON(w, http.StatusOK, loginResponse{User: su, Redirect: landing(su, c.Return)})
}

// landing picks where the client goes after signing in. Pending accounts
// always go to the first-login screen.
func landing(u *auth.SessionUser, ret string) string {
	if u.FirstLogin {
		return "/first-login"
	}
	return urlutil.SafeReturn(ret, "", "/dashboard")
}
