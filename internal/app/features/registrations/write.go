// internal/app/features/registrations/write.go
package registrations

import (
	"context"
	"net/http"

	"github.com/dalemusser/ejchub/internal/app/system/normalize"
	"github.com/dalemusser/ejchub/internal/app/system/respond"
	"github.com/dalemusser/ejchub/internal/app/system/timeouts"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/dalemusser/ejchub/internal/domain/registration"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type validateResponse struct {
	registration.Result
	Ineligible bool   `json:"ineligible"`
	Warning    string `json:"warning,omitempty"`
}

type editRequest struct {
	Registration models.Registration `json:"registration"`
	Password     string              `json:"password"`
}

type deleteRequest struct {
	Confirmation string `json:"confirmation"`
}

// checkDraft normalizes and validates a submitted registration. It answers
// 422 itself when the draft is invalid.
func (h *Handler) checkDraft(w http.ResponseWriter, r *http.Request, draft models.Registration) (models.Registration, bool) {
	reg := registration.Normalize(draft)
	res := registration.Validate(reg)
	if !res.Valid {
		h.ErrLog.Validation(w, r, "Verifique os campos destacados.", res.Errors)
		return reg, false
	}
	return reg, true
}

// HandleValidate handles POST /registrations/validate: it runs the form
// rules on a draft without saving anything.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var draft models.Registration
	if err := respond.DecodeJSON(w, r, &draft, maxRegistrationBody); err != nil {
		h.ErrLog.LogBadRequest(w, r, "registrations: bad body", err, "Requisição inválida.")
		return
	}
	reg := registration.Normalize(draft)
	out := validateResponse{
		Result:     registration.Validate(reg),
		Ineligible: registration.IsIneligibleYouth(reg),
	}
	if out.Ineligible {
		out.Warning = registration.MsgIneligibleYouth
	}
	respond.JSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /registrations. The server assigns the id,
// creation time and author.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}
	var draft models.Registration
	if err := respond.DecodeJSON(w, r, &draft, maxRegistrationBody); err != nil {
		h.ErrLog.LogBadRequest(w, r, "registrations: bad body", err, "Requisição inválida.")
		return
	}
	reg, ok := h.checkDraft(w, r, draft)
	if !ok {
		return
	}

	reg.ID = uuid.NewString()
	reg.CreatedAt = h.Now().UnixMilli()
	reg.RegisteredBy = u.Username

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Regs.Put(ctx, reg); err != nil {
		h.ErrLog.Unavailable(w, r, "registrations: create", err)
		return
	}
	h.Metrics.RegistrationWrite("create")
	h.Activity.RegistrationCreated(r.Context(), r, actorOf(u), reg.DisplayName())

	respond.JSON(w, http.StatusCreated, viewOf(reg))
}

// HandleEdit handles PUT /registrations/{id}. The document is replaced in
// full but keeps its id, creation time and author. Editing a registration
// someone else filed requires the acting user's own password.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req editRequest
	if err := respond.DecodeJSON(w, r, &req, maxRegistrationBody); err != nil {
		h.ErrLog.LogBadRequest(w, r, "registrations: bad body", err, "Requisição inválida.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	existing, ok := h.load(ctx, w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if normalize.Username(existing.RegisteredBy) != normalize.Username(u.Username) {
		if !h.ownPasswordMatches(ctx, w, r, u.ID, req.Password) {
			return
		}
	}

	reg, ok := h.checkDraft(w, r, req.Registration)
	if !ok {
		return
	}
	reg.ID = existing.ID
	reg.CreatedAt = existing.CreatedAt
	reg.RegisteredBy = existing.RegisteredBy

	if err := h.Regs.Put(ctx, reg); err != nil {
		h.ErrLog.Unavailable(w, r, "registrations: update", err)
		return
	}
	h.Metrics.RegistrationWrite("update")
	h.Activity.RegistrationEdited(r.Context(), r, actorOf(u), reg.DisplayName())

	respond.JSON(w, http.StatusOK, viewOf(reg))
}

// ownPasswordMatches checks password against the account userID. It
// answers 403 or 503 itself and returns false when the edit must stop.
func (h *Handler) ownPasswordMatches(ctx context.Context, w http.ResponseWriter, r *http.Request, userID, password string) bool {
	acct, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.Unavailable(w, r, "registrations: load acting user", err)
		return false
	}
	if password == "" || !h.Hasher.Verify(password, acct.PasswordHash) {
		h.Log.Info("registration edit refused: wrong password", zap.String("user_id", userID))
		respond.Error(w, http.StatusForbidden, "password_mismatch", "Sua senha está incorreta!")
		return false
	}
	return true
}

// HandleDelete handles DELETE /registrations/{id}. The body must carry the
// confirmation secret.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req deleteRequest
	if err := respond.DecodeJSON(w, r, &req, 4<<10); err != nil {
		h.ErrLog.LogBadRequest(w, r, "registrations: bad body", err, "Requisição inválida.")
		return
	}
	if err := h.Gate.Check(req.Confirmation); err != nil {
		respond.Error(w, http.StatusForbidden, "confirmation_rejected", "Senha incorreta!")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	existing, ok := h.load(ctx, w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.Regs.Delete(ctx, existing.ID); err != nil {
		h.ErrLog.Unavailable(w, r, "registrations: delete", err)
		return
	}
	h.Metrics.RegistrationWrite("delete")
	h.Activity.RegistrationDeleted(r.Context(), r, actorOf(u), existing.DisplayName())

	respond.NoContent(w)
}
