// internal/app/system/activitylog/logger.go
package activitylog

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/ejchub/internal/app/system/ratelimit"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"go.uber.org/zap"
)

// Destinations for activity entries.
const (
	ModeAll = "all" // store + zap
	ModeDB  = "db"  // store only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// Actions recorded for the activity log. Entries are shown to admins as-is.
const (
	ActionLogin           = "Login realizado"
	ActionLogout          = "Logout realizado"
	ActionFirstLogin      = "Perfil completado no primeiro acesso"
	ActionProfileUpdated  = "Atualizou dados do perfil"
	ActionBackupExported  = "Exportou backup do banco de dados"
	ActionBackupImported  = "Restaurou backup do banco de dados"
	ActionCSVExported     = "Exportou lista de fichas (CSV)"
	prefixCreated         = "Cadastrou: "
	prefixEdited          = "Editou ficha de: "
	prefixDeleted         = "Excluiu ficha de: "
	prefixUserCreated     = "Cadastrou novo usuário: "
	prefixUserActivated   = "Ativou usuário: "
	prefixUserDeactivated = "Desativou usuário: "
	prefixUserDeleted     = "Excluiu permanentemente o usuário: "
)

// Appender persists activity entries.
type Appender interface {
	Add(ctx context.Context, entry models.UserLog) (models.UserLog, error)
}

// Actor identifies who performed an action.
type Actor struct {
	ID       string
	Username string
}

// Config holds activity logging configuration.
type Config struct {
	// Mode is one of "all", "db", "log" or "off". Empty means "all".
	Mode string
}

// Logger writes activity entries to the store and to zap.
// A store failure never fails the action being recorded.
type Logger struct {
	store  Appender
	zapLog *zap.Logger
	config Config
	now    func() time.Time
}

// New creates a new activity Logger.
func New(store Appender, zapLog *zap.Logger, config Config) *Logger {
	if config.Mode == "" {
		config.Mode = ModeAll
	}
	return &Logger{store: store, zapLog: zapLog, config: config, now: time.Now}
}

// WithClock returns a copy of l that stamps entries using now.
func (l *Logger) WithClock(now func() time.Time) *Logger {
	cp := *l
	cp.now = now
	return &cp
}

// Record writes one entry for actor. r may be nil.
// If the logger is nil, this is a no-op.
func (l *Logger) Record(ctx context.Context, r *http.Request, actor Actor, action string) {
	if l == nil || l.config.Mode == ModeOff {
		return
	}

	entry := models.UserLog{
		UserID:    actor.ID,
		Username:  actor.Username,
		Action:    action,
		Timestamp: l.now().UnixMilli(),
	}

	if l.config.Mode == ModeAll || l.config.Mode == ModeLog {
		fields := []zap.Field{
			zap.Bool("activity", true),
			zap.String("user_id", entry.UserID),
			zap.String("username", entry.Username),
			zap.String("action", entry.Action),
		}
		if r != nil {
			fields = append(fields, zap.String("ip", ratelimit.ClientIP(r)))
		}
		l.zapLog.Info("activity", fields...)
	}

	if (l.config.Mode == ModeAll || l.config.Mode == ModeDB) && l.store != nil {
		if _, err := l.store.Add(ctx, entry); err != nil {
			l.zapLog.Warn("failed to store activity entry",
				zap.Error(err),
				zap.String("action", entry.Action))
		}
	}
}

// --- Convenience helpers ---

func (l *Logger) Login(ctx context.Context, r *http.Request, a Actor) {
	l.Record(ctx, r, a, ActionLogin)
}

func (l *Logger) Logout(ctx context.Context, r *http.Request, a Actor) {
	l.Record(ctx, r, a, ActionLogout)
}

func (l *Logger) FirstLoginCompleted(ctx context.Context, r *http.Request, a Actor) {
	l.Record(ctx, r, a, ActionFirstLogin)
}

func (l *Logger) ProfileUpdated(ctx context.Context, r *http.Request, a Actor) {
	l.Record(ctx, r, a, ActionProfileUpdated)
}

func (l *Logger) RegistrationCreated(ctx context.Context, r *http.Request, a Actor, name string) {
	l.Record(ctx, r, a, prefixCreated+name)
}

func (l *Logger) RegistrationEdited(ctx context.Context, r *http.Request, a Actor, name string) {
	l.Record(ctx, r, a, prefixEdited+name)
}

func (l *Logger) RegistrationDeleted(ctx context.Context, r *http.Request, a Actor, name string) {
	l.Record(ctx, r, a, prefixDeleted+name)
}

func (l *Logger) UserCreated(ctx context.Context, r *http.Request, a Actor, username string) {
	l.Record(ctx, r, a, prefixUserCreated+username)
}

// UserActiveChanged records an activation or deactivation.
func (l *Logger) UserActiveChanged(ctx context.Context, r *http.Request, a Actor, username string, active bool) {
	if active {
		l.Record(ctx, r, a, prefixUserActivated+username)
		return
	}
	l.Record(ctx, r, a, prefixUserDeactivated+username)
}

func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, a Actor, username string) {
	l.Record(ctx, r, a, prefixUserDeleted+username)
}

func (l *Logger) BackupExported(ctx context.Context, r *http.Request, a Actor) {
	l.Record(ctx, r, a, ActionBackupExported)
}

func (l *Logger) BackupImported(ctx context.Context, r *http.Request, a Actor) {
	l.Record(ctx, r, a, ActionBackupImported)
}

func (l *Logger) CSVExported(ctx context.Context, r *http.Request, a Actor) {
	l.Record(ctx, r, a, ActionCSVExported)
}
