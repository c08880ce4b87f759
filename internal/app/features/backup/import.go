// internal/app/features/backup/import.go
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dalemusser/ejchub/internal/app/store/docstore"
	userstore "github.com/dalemusser/ejchub/internal/app/store/users"
	"github.com/dalemusser/ejchub/internal/app/system/activitylog"
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/app/system/respond"
	"github.com/dalemusser/ejchub/internal/app/system/snapshot"
	"github.com/dalemusser/ejchub/internal/app/system/timeouts"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"go.uber.org/zap"
)

type importResult struct {
	Users                 int `json:"users"`
	Registrations         int `json:"registrations"`
	LegacyPasswordsHashed int `json:"legacyPasswordsHashed"`
}

// HandleImport handles POST /backup/import. The body is the backup JSON,
// either raw or as the "file" part of a multipart form. Users and
// registrations are upserted by id; logs in the file are not restored.
// Either every document is written or none is.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	r.Body = http.MaxBytesReader(w, r.Body, snapshot.MaxSize)
	data, err := readUpload(r)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "too_large", "Arquivo de backup muito grande.")
			return
		}
		h.ErrLog.LogBadRequest(w, r, "backup: read upload", err, "Arquivo inválido!")
		return
	}

	snap, err := snapshot.Decode(data)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "backup: decode", err, "Arquivo inválido!")
		return
	}
	for i := range snap.Registrations {
		reg := &snap.Registrations[i]
		reg.ServedTeams = reg.ServedTeams.Normalize()
		reg.CoordinatedTeams = reg.CoordinatedTeams.Normalize()
	}
	hashed, err := snapshot.HashLegacyPasswords(snap.Users, h.Hasher)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "backup: hash legacy passwords", err, "Não foi possível importar o backup.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "backup import")
	defer cancel()

	rs := &restore{users: h.Users, regs: h.Regs}
	if err := rs.apply(ctx, snap); err != nil {
		if rbErr := rs.rollback(context.WithoutCancel(ctx)); rbErr != nil {
			h.Log.Error("backup: rollback incomplete", zap.Error(rbErr))
		}
		if errors.Is(err, userstore.ErrDuplicateUsername) {
			respond.Error(w, http.StatusConflict, "duplicate_username",
				"O backup contém um usuário com o mesmo nome de uma conta existente.")
			return
		}
		h.ErrLog.Unavailable(w, r, "backup: import", err)
		return
	}

	if u != nil {
		h.Activity.BackupImported(r.Context(), r, activitylog.Actor{ID: u.ID, Username: u.Username})
	}
	h.Log.Info("backup imported",
		zap.Int("users", len(snap.Users)),
		zap.Int("registrations", len(snap.Registrations)),
		zap.Int("legacy_passwords_hashed", hashed))

	respond.JSON(w, http.StatusOK, importResult{
		Users:                 len(snap.Users),
		Registrations:         len(snap.Registrations),
		LegacyPasswordsHashed: hashed,
	})
}

func readUpload(r *http.Request) ([]byte, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mt, "multipart/") {
		return io.ReadAll(r.Body)
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// restore writes a snapshot and remembers what each write replaced so a
// failed import can be undone.
type restore struct {
	users UserStore
	regs  RegistrationStore

	priorUsers []undoUser
	priorRegs  []undoReg
}

type undoUser struct {
	id    string
	prior *models.User // nil when the document did not exist
}

type undoReg struct {
	id    string
	prior *models.Registration
}

func (rs *restore) apply(ctx context.Context, snap snapshot.Snapshot) error {
	for _, u := range snap.Users {
		prior, err := rs.users.GetByID(ctx, u.ID)
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("read user %s: %w", u.ID, err)
		}
		if err := rs.users.Put(ctx, u); err != nil {
			return fmt.Errorf("write user %s: %w", u.ID, err)
		}
		rs.priorUsers = append(rs.priorUsers, undoUser{id: u.ID, prior: prior})
	}
	for _, reg := range snap.Registrations {
		prior, err := rs.regs.GetByID(ctx, reg.ID)
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("read registration %s: %w", reg.ID, err)
		}
		if err := rs.regs.Put(ctx, reg); err != nil {
			return fmt.Errorf("write registration %s: %w", reg.ID, err)
		}
		rs.priorRegs = append(rs.priorRegs, undoReg{id: reg.ID, prior: prior})
	}
	return nil
}

// rollback undoes applied writes in reverse order. It keeps going past
// failures and reports them joined.
func (rs *restore) rollback(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	var errs []error
	for i := len(rs.priorRegs) - 1; i >= 0; i-- {
		p := rs.priorRegs[i]
		var err error
		if p.prior == nil {
			err = rs.regs.Delete(ctx, p.id)
		} else {
			err = rs.regs.Put(ctx, *p.prior)
		}
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			errs = append(errs, fmt.Errorf("registration %s: %w", p.id, err))
		}
	}
	for i := len(rs.priorUsers) - 1; i >= 0; i-- {
		p := rs.priorUsers[i]
		var err error
		if p.prior == nil {
			err = rs.users.Delete(ctx, p.id)
		} else {
			err = rs.users.Put(ctx, *p.prior)
		}
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			errs = append(errs, fmt.Errorf("user %s: %w", p.id, err))
		}
	}
	return errors.Join(errs...)
}
