// internal/app/features/backup/handler.go
package backup

import (
	"context"
	"time"

	uierrors "github.com/dalemusser/ejchub/internal/app/features/errors"
	"github.com/dalemusser/ejchub/internal/app/system/activitylog"
	"github.com/dalemusser/ejchub/internal/app/system/authutil"
	"github.com/dalemusser/ejchub/internal/app/system/dataload"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"go.uber.org/zap"
)

// UserStore is what an import needs from the users collection.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Put(ctx context.Context, u models.User) error
	Delete(ctx context.Context, id string) error
}

// RegistrationStore is what an import needs from the registrations collection.
type RegistrationStore interface {
	GetByID(ctx context.Context, id string) (*models.Registration, error)
	Put(ctx context.Context, r models.Registration) error
	Delete(ctx context.Context, id string) error
}

// Handler serves backup export and import. ADMIN only.
type Handler struct {
	Sources     dataload.Sources
	Users       UserStore
	Regs        RegistrationStore
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Hasher      authutil.Hasher
	Activity    *activitylog.Logger
	LoadTimeout time.Duration
	Now         func() time.Time
}

func NewHandler(
	src dataload.Sources,
	users UserStore,
	regs RegistrationStore,
	hasher authutil.Hasher,
	activity *activitylog.Logger,
	loadTimeout time.Duration,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Sources:     src,
		Users:       users,
		Regs:        regs,
		Log:         logger,
		ErrLog:      errLog,
		Hasher:      hasher,
		Activity:    activity,
		LoadTimeout: loadTimeout,
		Now:         time.Now,
	}
}
