// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/app/system/respond"
)

// Handler reports the session owner so a reloaded front end can restore
// its signed-in state.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

type sessionInfo struct {
	IsAuthenticated bool              `json:"isAuthenticated"`
	User            *auth.SessionUser `json:"user"`
	Redirect        string            `json:"redirect,omitempty"`
}

// ServeUserInfo handles GET /session.
//
// Response format:
//
//	{ "isAuthenticated": bool, "user": {...} | null, "redirect": "/first-login" }
//
// redirect is set only while the account still has to complete first login.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		respond.JSON(w, http.StatusOK, sessionInfo{})
		return
	}
	info := sessionInfo{IsAuthenticated: true, User: user}
	if user.FirstLogin {
		info.Redirect = "/first-login"
	}
	respond.JSON(w, http.StatusOK, info)
}
