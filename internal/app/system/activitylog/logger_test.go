package activitylog

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/ejchub/internal/domain/models"
	"go.uber.org/zap"
)

type memAppender struct {
	entries []models.UserLog
	err     error
}

func (m *memAppender) Add(_ context.Context, e models.UserLog) (models.UserLog, error) {
	if m.err != nil {
		return models.UserLog{}, m.err
	}
	m.entries = append(m.entries, e)
	return e, nil
}

var fixed = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestLogger_NilLogger(t *testing.T) {
	var l *Logger
	// must not panic
	l.Login(context.Background(), nil, Actor{ID: "u1", Username: "ana"})
}

func TestLogger_Modes(t *testing.T) {
	tests := []struct {
		mode   string
		stored int
	}{
		{"", 1},
		{ModeAll, 1},
		{ModeDB, 1},
		{ModeLog, 0},
		{ModeOff, 0},
	}
	for _, tt := range tests {
		t.Run("mode="+tt.mode, func(t *testing.T) {
			store := &memAppender{}
			l := New(store, zap.NewNop(), Config{Mode: tt.mode})
			l.Logout(context.Background(), httptest.NewRequest("POST", "/logout", nil), Actor{ID: "u1", Username: "ana"})
			if len(store.entries) != tt.stored {
				t.Errorf("stored %d entries, want %d", len(store.entries), tt.stored)
			}
		})
	}
}

func TestLogger_EntryContent(t *testing.T) {
	store := &memAppender{}
	l := New(store, zap.NewNop(), Config{}).WithClock(func() time.Time { return fixed })
	actor := Actor{ID: "admin_root", Username: "admin"}
	ctx := context.Background()

	l.RegistrationCreated(ctx, nil, actor, "Ana Lima")
	l.RegistrationEdited(ctx, nil, actor, "João & Maria")
	l.RegistrationDeleted(ctx, nil, actor, "Ana Lima")
	l.UserCreated(ctx, nil, actor, "maria")
	l.UserActiveChanged(ctx, nil, actor, "maria", false)
	l.UserActiveChanged(ctx, nil, actor, "maria", true)
	l.UserDeleted(ctx, nil, actor, "maria")

	want := []string{
		"Cadastrou: Ana Lima",
		"Editou ficha de: João & Maria",
		"Excluiu ficha de: Ana Lima",
		"Cadastrou novo usuário: maria",
		"Desativou usuário: maria",
		"Ativou usuário: maria",
		"Excluiu permanentemente o usuário: maria",
	}
	if len(store.entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(store.entries), len(want))
	}
	for i, w := range want {
		e := store.entries[i]
		if e.Action != w {
			t.Errorf("entry %d action = %q, want %q", i, e.Action, w)
		}
		if e.UserID != "admin_root" || e.Username != "admin" {
			t.Errorf("entry %d actor = %s/%s", i, e.UserID, e.Username)
		}
		if e.Timestamp != fixed.UnixMilli() {
			t.Errorf("entry %d timestamp = %d", i, e.Timestamp)
		}
	}
}

func TestLogger_StoreFailureIsSwallowed(t *testing.T) {
	store := &memAppender{err: errors.New("down")}
	l := New(store, zap.NewNop(), Config{Mode: ModeAll})
	// must not panic or propagate
	l.BackupExported(context.Background(), nil, Actor{ID: "u1", Username: "ana"})
}
