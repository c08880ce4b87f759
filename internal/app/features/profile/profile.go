// internal/app/features/profile/profile.go
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
	"go.uber.org/zap"
)

// ServeProfile returns the signed-in user's account.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, u, ok := h.loadCurrent(ctx, w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, profileView{User: u.Redacted(), PasswordRules: authutil.PasswordRules()})
}

// HandleUpdateProfile applies the profile form. Leaving both password
// fields blank keeps the current password.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var form lifecycle.ProfileForm
	if err := respond.DecodeJSON(w, r, &form, maxProfileBody); err != nil {
		h.ErrLog.LogBadRequest(w, r, "profile: bad body", err, "Requisição inválida.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	su, u, ok := h.loadCurrent(ctx, w, r)
	if !ok {
		return
	}

	next, err := lifecycle.UpdateProfile(*u, form, h.Hasher)
	if err != nil {
		h.writeLifecycleError(w, r, err, "Por favor, preencha todos os campos obrigatórios.")
		return
	}
	if err := h.Users.Put(ctx, next); err != nil {
		h.ErrLog.Unavailable(w, r, "profile: save user", err)
		return
	}

	// Keep the cached display name in step with the account.
	if err := h.SessionMgr.SignIn(w, r, userstore.SessionUser(next)); err != nil {
		h.Log.Warn("profile: refresh session", zap.Error(err))
	}
	h.Activity.ProfileUpdated(r.Context(), r, activitylog.Actor{ID: su.ID, Username: su.Username})

	respond.JSON(w, http.StatusOK, profileView{User: next.Redacted(), PasswordRules: authutil.PasswordRules()})
}
