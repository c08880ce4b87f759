package profile_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/ejchub/internal/app/features/errors"
	"github.com/dalemusser/ejchub/internal/app/features/profile"
	"github.com/dalemusser/ejchub/internal/app/system/activitylog"
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/app/system/authutil"
	"github.com/dalemusser/ejchub/internal/domain/lifecycle"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/dalemusser/ejchub/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var hasher = authutil.BcryptHasher{Cost: bcrypt.MinCost}

func newTestHandler(t *testing.T, users ...models.User) (*profile.Handler, *testutil.MemUsers, *testutil.MemLogs) {
	t.Helper()
	logger := zap.NewNop()
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	store := testutil.NewMemUsers(users...)
	logs := testutil.NewMemLogs()
	h := profile.NewHandler(store, sessionMgr, uierrors.NewErrorLogger(logger), hasher,
		activitylog.New(logs, logger, activitylog.Config{}), logger)
	return h, store, logs
}

func pendingUser(t *testing.T) (testutil.TestUser, models.User) {
	t.Helper()
	hash, err := hasher.Hash("provisoria")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	tu := testutil.CadastroUser()
	tu.FirstLogin = true
	acct := tu.Account(hash)
	acct.Email, acct.Phone, acct.Address = "", "", ""
	return tu, acct
}

func completeForm() lifecycle.ProfileForm {
	return lifecycle.ProfileForm{
		FullName:        "Maria  da Silva",
		Email:           "Maria@Example.com",
		Phone:           "85 99999-0000",
		Address:         "Rua A, 10",
		Password:        "novasenha",
		ConfirmPassword: "novasenha",
	}
}

func TestHandleFirstLogin_Success(t *testing.T) {
	tu, acct := pendingUser(t)
	h, store, logs := newTestHandler(t, acct)

	req := testutil.WithUser(testutil.NewJSONRequest(t, http.MethodPost, "/first-login", completeForm()), tu)
	rec := testutil.NewRecorder()
	h.HandleFirstLogin(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"redirect":"/dashboard"`)

	saved, err := store.GetByID(context.Background(), acct.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if saved.IsFirstLogin {
		t.Error("IsFirstLogin should be false after completing setup")
	}
	if saved.Email != "maria@example.com" {
		t.Errorf("email = %q, want normalized", saved.Email)
	}
	if !authutil.CheckPassword("novasenha", saved.PasswordHash) {
		t.Error("new password should verify")
	}
	if got := logs.Actions(); len(got) != 1 || got[0] != activitylog.ActionFirstLogin {
		t.Errorf("activity = %v", got)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected the session to be rewritten")
	}
}

func TestHandleFirstLogin_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*lifecycle.ProfileForm)
		status   int
		contains string
	}{
		{"missing email", func(f *lifecycle.ProfileForm) { f.Email = " " }, http.StatusUnprocessableEntity, `"email"`},
		{"missing password", func(f *lifecycle.ProfileForm) { f.Password, f.ConfirmPassword = "", "" }, http.StatusUnprocessableEntity, `"password"`},
		{"mismatch", func(f *lifecycle.ProfileForm) { f.ConfirmPassword = "outra-senha" }, http.StatusUnprocessableEntity, "As senhas não coincidem!"},
		{"weak password", func(f *lifecycle.ProfileForm) { f.Password, f.ConfirmPassword = "123", "123" }, http.StatusUnprocessableEntity, "Mínimo"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tu, acct := pendingUser(t)
			h, store, logs := newTestHandler(t, acct)

			form := completeForm()
			tc.mutate(&form)
			req := testutil.WithUser(testutil.NewJSONRequest(t, http.MethodPost, "/first-login", form), tu)
			rec := testutil.NewRecorder()
			h.HandleFirstLogin(rec, req)

			rec.AssertStatus(t, tc.status)
			rec.AssertContains(t, tc.contains)

			saved, _ := store.GetByID(context.Background(), acct.ID)
			if !saved.IsFirstLogin {
				t.Error("account must stay pending after a rejected setup")
			}
			if len(logs.Actions()) != 0 {
				t.Error("no activity expected")
			}
		})
	}
}

func TestHandleFirstLogin_AlreadyActive(t *testing.T) {
	tu := testutil.CadastroUser()
	h, _, _ := newTestHandler(t, tu.Account("x"))

	req := testutil.WithUser(testutil.NewJSONRequest(t, http.MethodPost, "/first-login", completeForm()), tu)
	rec := testutil.NewRecorder()
	h.HandleFirstLogin(rec, req)

	rec.AssertStatus(t, http.StatusConflict)
}

func TestServeFirstLogin(t *testing.T) {
	tu, acct := pendingUser(t)
	h, _, _ := newTestHandler(t, acct)

	rec := testutil.NewRecorder()
	h.ServeFirstLogin(rec, testutil.WithUser(testutil.NewJSONRequest(t, http.MethodGet, "/first-login", nil), tu))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"isFirstLogin":true`)
	if body := rec.Body.String(); containsHash(body) {
		t.Errorf("response leaks the password hash: %s", body)
	}
}

func TestServeProfile_Unauthenticated(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.ServeProfile(rec, testutil.NewRequest(http.MethodGet, "/profile"))

	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestHandleUpdateProfile_KeepsPasswordWhenBlank(t *testing.T) {
	hash, _ := hasher.Hash("antiga123")
	tu := testutil.CadastroUser()
	h, store, logs := newTestHandler(t, tu.Account(hash))

	form := completeForm()
	form.Password, form.ConfirmPassword = "", ""
	form.FullName = "Novo Nome"
	req := testutil.WithUser(testutil.NewJSONRequest(t, http.MethodPost, "/profile", form), tu)
	rec := testutil.NewRecorder()
	h.HandleUpdateProfile(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	saved, _ := store.GetByID(context.Background(), tu.ID)
	if saved.FullName != "Novo Nome" {
		t.Errorf("FullName = %q", saved.FullName)
	}
	if !authutil.CheckPassword("antiga123", saved.PasswordHash) {
		t.Error("password should be unchanged")
	}
	if got := logs.Actions(); len(got) != 1 || got[0] != activitylog.ActionProfileUpdated {
		t.Errorf("activity = %v", got)
	}
}

func TestHandleUpdateProfile_ChangesPassword(t *testing.T) {
	hash, _ := hasher.Hash("antiga123")
	tu := testutil.AdminUser()
	h, store, _ := newTestHandler(t, tu.Account(hash))

	req := testutil.WithUser(testutil.NewJSONRequest(t, http.MethodPost, "/profile", completeForm()), tu)
	rec := testutil.NewRecorder()
	h.HandleUpdateProfile(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	saved, _ := store.GetByID(context.Background(), tu.ID)
	if !authutil.CheckPassword("novasenha", saved.PasswordHash) {
		t.Error("password should be changed")
	}
}

func TestHandleUpdateProfile_StoreFailure(t *testing.T) {
	tu := testutil.CadastroUser()
	h, store, _ := newTestHandler(t, tu.Account("x"))
	store.FailPutOn = tu.ID

	form := completeForm()
	form.Password, form.ConfirmPassword = "", ""
	req := testutil.WithUser(testutil.NewJSONRequest(t, http.MethodPost, "/profile", form), tu)
	rec := testutil.NewRecorder()
	h.HandleUpdateProfile(rec, req)

	rec.AssertStatus(t, http.StatusServiceUnavailable)
}

func containsHash(body string) bool {
	for _, marker := range []string{"passwordHash", "$2a$", "$argon2id$"} {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}
