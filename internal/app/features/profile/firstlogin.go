// internal/app/features/profile/firstlogin.go
package profile

import (
	"context"
	"net/http"

	userstore "github.com/dalemusser/ejchub/internal/app/store/users"
	"github.com/dalemusser/ejchub/internal/app/system/activitylog"
	"github.com/dalemusser/ejchub/internal/app/system/authutil"
	"github.com/dalemusser/ejchub/internal/app/system/respond"
	"github.com/dalemusser/ejchub/internal/app/system/timeouts"
	"github.com/dalemusser/ejchub/internal/domain/lifecycle"
)

// ServeFirstLogin returns the pending account so the client can pre-fill
// the setup form. Accounts past first login are pointed at the dashboard.
func (h *Handler) ServeFirstLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, u, ok := h.loadCurrent(ctx, w, r)
	if !ok {
		return
	}
	view := profileView{User: u.Redacted(), PasswordRules: authutil.PasswordRules()}
	if lifecycle.StateOf(*u) != lifecycle.PendingFirstLogin {
		view.Redirect = "/dashboard"
	}
	respond.JSON(w, http.StatusOK, view)
}

// HandleFirstLogin completes the first-login setup: every profile field
// plus a new password is required.
func (h *Handler) HandleFirstLogin(w http.ResponseWriter, r *http.Request) {
	var form lifecycle.ProfileForm
	if err := respond.DecodeJSON(w, r, &form, maxProfileBody); err != nil {
		h.ErrLog.LogBadRequest(w, r, "first login: bad body", err, "Requisição inválida.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	su, u, ok := h.loadCurrent(ctx, w, r)
	if !ok {
		return
	}

	next, err := lifecycle.CompleteFirstLogin(*u, form, h.Hasher)
	if err != nil {
		h.writeLifecycleError(w, r, err, "Todos os campos (exceto foto) são obrigatórios para seu primeiro acesso.")
		return
	}
	if err := h.Users.Put(ctx, next); err != nil {
		h.ErrLog.Unavailable(w, r, "first login: save user", err)
		return
	}

	// The session still says "pending"; rewrite it so the gate opens.
	if err := h.SessionMgr.SignIn(w, r, userstore.SessionUser(next)); err != nil {
		h.ErrLog.LogServerError(w, r, "first login: refresh session", err, "Não foi possível atualizar a sessão.")
		return
	}
	h.Activity.FirstLoginCompleted(r.Context(), r, activitylog.Actor{ID: su.ID, Username: su.Username})

	respond.JSON(w, http.StatusOK, profileView{
		User:          next.Redacted(),
		PasswordRules: authutil.PasswordRules(),
		Redirect:      "/dashboard",
	})
}
