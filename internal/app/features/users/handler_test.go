package users_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/ejchub/internal/app/features/errors"
	"github.com/dalemusser/ejchub/internal/app/features/users"
	"github.com/dalemusser/ejchub/internal/app/system/activitylog"
	"github.com/dalemusser/ejchub/internal/app/system/authutil"
	"github.com/dalemusser/ejchub/internal/app/system/confirm"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/dalemusser/ejchub/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var hasher = authutil.BcryptHasher{Cost: bcrypt.MinCost}

func newTestHandler(t *testing.T, accounts ...models.User) (*users.Handler, *testutil.MemUsers, *testutil.MemLogs) {
	t.Helper()
	logger := zap.NewNop()
	gate, err := confirm.NewGate("@dmin", hasher)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	store := testutil.NewMemUsers(accounts...)
	logs := testutil.NewMemLogs()
	h := users.NewHandler(store, uierrors.NewErrorLogger(logger), hasher, gate,
		activitylog.New(logs, logger, activitylog.Config{}), logger)
	h.Now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return h, store, logs
}

func withID(r *http.Request, id string) *http.Request {
	return testutil.WithChiURLParam(r, "id", id)
}

func TestHandleCreate(t *testing.T) {
	admin := testutil.AdminUser()
	h, store, logs := newTestHandler(t, admin.Account("x"))

	req := testutil.WithUser(testutil.NewJSONRequest(t, http.MethodPost, "/users", map[string]string{
		"username": " Joana ",
		"password": "provisoria",
		"fullName": "Joana Lima",
		"role":     "cadastro",
	}), admin)
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)

	rec.AssertStatus(t, http.StatusCreated)
	if strings.Contains(rec.Body.String(), "passwordHash") {
		t.Error("response must not include the password hash")
	}

	saved, err := store.GetByUsername(context.Background(), "joana")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if !saved.IsFirstLogin || !saved.IsActive {
		t.Errorf("new account should be active and pending: %+v", saved)
	}
	if saved.Role != models.RoleCadastro {
		t.Errorf("role = %q", saved.Role)
	}
	if saved.CreatedAt != 1_700_000_000_000 {
		t.Errorf("createdAt = %d", saved.CreatedAt)
	}
	if !authutil.CheckPassword("provisoria", saved.PasswordHash) {
		t.Error("password should verify against the stored hash")
	}
	if a := logs.Actions(); len(a) != 1 || a[0] != "Cadastrou novo usuário: joana" {
		t.Errorf("activity = %v", a)
	}
}

func TestHandleCreate_Rejections(t *testing.T) {
	admin := testutil.AdminUser()

	tests := []struct {
		name   string
		body   map[string]string
		status int
		code   string
	}{
		{"duplicate username", map[string]string{"username": "ADMIN", "password": "provisoria", "fullName": "Outro", "role": "ADMIN"}, http.StatusConflict, "duplicate_username"},
		{"missing full name", map[string]string{"username": "novo", "password": "provisoria", "role": "ADMIN"}, http.StatusUnprocessableEntity, `"fullName"`},
		{"invalid role", map[string]string{"username": "novo", "password": "provisoria", "fullName": "Novo", "role": "ROOT"}, http.StatusUnprocessableEntity, `"role"`},
		{"weak password", map[string]string{"username": "novo", "password": "123", "fullName": "Novo", "role": "ADMIN"}, http.StatusUnprocessableEntity, `"password"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, store, logs := newTestHandler(t, admin.Account("x"))
			req := testutil.WithUser(testutil.NewJSONRequest(t, http.MethodPost, "/users", tc.body), admin)
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, req)

			rec.AssertStatus(t, tc.status)
			rec.AssertContains(t, tc.code)
			if n, _ := store.Count(context.Background()); n != 1 {
				t.Errorf("accounts = %d, want 1", n)
			}
			if len(logs.Actions()) != 0 {
				t.Error("no activity expected")
			}
		})
	}
}

func TestServeList_RedactsAndFilters(t *testing.T) {
	admin := testutil.AdminUser()
	clerk := testutil.CadastroUser()
	h, _, _ := newTestHandler(t, admin.Account("$2a$secret"), clerk.Account("$2a$secret"))

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/users", admin))
	rec.AssertStatus(t, http.StatusOK)
	if strings.Contains(rec.Body.String(), "$2a$secret") {
		t.Error("password hashes leaked")
	}
	var body struct {
		Users []struct {
			ID    string `json:"id"`
			State string `json:"state"`
		} `json:"users"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Users) != 2 {
		t.Fatalf("users = %d, want 2", len(body.Users))
	}

	rec = testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/users?q=cadas", admin))
	body.Users = nil
	rec.DecodeJSON(t, &body)
	if len(body.Users) != 1 || body.Users[0].ID != clerk.ID {
		t.Errorf("filtered users = %+v", body.Users)
	}
	if body.Users[0].State != "ACTIVE" {
		t.Errorf("state = %q", body.Users[0].State)
	}
}

func TestHandleSetActive(t *testing.T) {
	admin := testutil.AdminUser()
	clerk := testutil.CadastroUser()

	t.Run("toggle off then on", func(t *testing.T) {
		h, store, logs := newTestHandler(t, admin.Account("x"), clerk.Account("x"))

		rec := testutil.NewRecorder()
		h.HandleSetActive(rec, withID(testutil.NewAuthenticatedRequest(http.MethodPost, "/users/"+clerk.ID+"/active", admin), clerk.ID))
		rec.AssertStatus(t, http.StatusOK)
		saved, _ := store.GetByID(context.Background(), clerk.ID)
		if saved.IsActive {
			t.Fatal("account should be deactivated")
		}

		req := testutil.WithUser(testutil.NewJSONRequest(t, http.MethodPost, "/users/"+clerk.ID+"/active", map[string]bool{"active": true}), admin)
		rec = testutil.NewRecorder()
		h.HandleSetActive(rec, withID(req, clerk.ID))
		rec.AssertStatus(t, http.StatusOK)
		saved, _ = store.GetByID(context.Background(), clerk.ID)
		if !saved.IsActive {
			t.Fatal("account should be active again")
		}

		want := []string{"Desativou usuário: cadastro", "Ativou usuário: cadastro"}
		got := logs.Actions()
		if len(got) != 2 {
			t.Fatalf("activity = %v", got)
		}
		for _, w := range want {
			found := false
			for _, g := range got {
				if g == w {
					found = true
				}
			}
			if !found {
				t.Errorf("missing activity %q in %v", w, got)
			}
		}
	})

	t.Run("self deactivation refused", func(t *testing.T) {
		h, store, _ := newTestHandler(t, admin.Account("x"))
		rec := testutil.NewRecorder()
		h.HandleSetActive(rec, withID(testutil.NewAuthenticatedRequest(http.MethodPost, "/users/"+admin.ID+"/active", admin), admin.ID))
		rec.AssertStatus(t, http.StatusConflict)
		saved, _ := store.GetByID(context.Background(), admin.ID)
		if !saved.IsActive {
			t.Error("admin must stay active")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		h, _, _ := newTestHandler(t, admin.Account("x"))
		rec := testutil.NewRecorder()
		h.HandleSetActive(rec, withID(testutil.NewAuthenticatedRequest(http.MethodPost, "/users/nope/active", admin), "nope"))
		rec.AssertStatus(t, http.StatusNotFound)
	})
}

func TestHandleDelete(t *testing.T) {
	admin := testutil.AdminUser()
	other := testutil.TestUser{ID: "u_admin2", Username: "segundo", Name: "Segundo Admin", Role: models.RoleAdmin}
	clerk := testutil.CadastroUser()

	tests := []struct {
		name         string
		actor        testutil.TestUser
		target       string
		confirmation string
		status       int
	}{
		{"deletes clerk", admin, clerk.ID, "@dmin", http.StatusNoContent},
		{"wrong secret", admin, clerk.ID, "senha", http.StatusForbidden},
		{"bootstrap admin is protected", other, admin.ID, "@dmin", http.StatusConflict},
		{"self deletion refused", other, other.ID, "@dmin", http.StatusConflict},
		{"unknown id", admin, "nope", "@dmin", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, store, logs := newTestHandler(t, admin.Account("x"), other.Account("x"), clerk.Account("x"))
			req := testutil.NewJSONRequest(t, http.MethodDelete, "/users/"+tc.target, map[string]string{"confirmation": tc.confirmation})
			rec := testutil.NewRecorder()
			h.HandleDelete(rec, withID(testutil.WithUser(req, tc.actor), tc.target))

			rec.AssertStatus(t, tc.status)
			n, _ := store.Count(context.Background())
			if tc.status == http.StatusNoContent {
				if n != 2 {
					t.Errorf("accounts = %d, want 2", n)
				}
				if a := logs.Actions(); len(a) != 1 || a[0] != "Excluiu permanentemente o usuário: cadastro" {
					t.Errorf("activity = %v", a)
				}
				return
			}
			if n != 3 {
				t.Errorf("accounts = %d, want 3", n)
			}
		})
	}
}
