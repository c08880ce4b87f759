package cep_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cepfeature "github.com/dalemusser/ejchub/internal/app/features/cep"
	uierrors "github.com/dalemusser/ejchub/internal/app/features/errors"
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/app/system/cep"
	"github.com/dalemusser/ejchub/internal/app/system/ratelimit"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/dalemusser/ejchub/internal/testutil"
	"go.uber.org/zap"
)

type stubLookup struct {
	addr cep.Address
	err  error
}

func (s stubLookup) Lookup(context.Context, string) (cep.Address, error) { return s.addr, s.err }

// netTimeout mimics the *url.Error an http.Client returns when its Timeout fires.
type netTimeout struct{}

func (netTimeout) Error() string   { return "Client.Timeout exceeded while awaiting headers" }
func (netTimeout) Timeout() bool   { return true }
func (netTimeout) Temporary() bool { return true }

func newHandler(l cepfeature.Lookuper) *cepfeature.Handler {
	logger := zap.NewNop()
	return cepfeature.NewHandler(l, uierrors.NewErrorLogger(logger), logger)
}

func TestServeLookup(t *testing.T) {
	tests := []struct {
		name     string
		stub     stubLookup
		status   int
		contains string
	}{
		{"found", stubLookup{addr: cep.Address{ZipCode: "60115000", City: "Fortaleza", StateCode: "CE"}}, http.StatusOK, `"city":"Fortaleza"`},
		{"invalid", stubLookup{err: cep.ErrInvalidCode}, http.StatusBadRequest, "invalid_cep"},
		{"not found", stubLookup{err: cep.ErrNotFound}, http.StatusNotFound, "CEP não encontrado."},
		{"timeout", stubLookup{err: fmt.Errorf("cep lookup: %w", context.DeadlineExceeded)}, http.StatusGatewayTimeout, "cep_timeout"},
		{"client timeout", stubLookup{err: fmt.Errorf("cep lookup: %w", netTimeout{})}, http.StatusGatewayTimeout, "cep_timeout"},
		{"upstream failure", stubLookup{err: fmt.Errorf("cep lookup: unexpected status 500")}, http.StatusBadGateway, "cep_unavailable"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger := zap.NewNop()
			h := cepfeature.NewHandler(tc.stub, uierrors.NewErrorLogger(logger), logger)

			req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/cep/60115000", testutil.CadastroUser()), "code", "60115000")
			rec := testutil.NewRecorder()
			h.ServeLookup(rec, req)

			rec.AssertStatus(t, tc.status)
			rec.AssertContains(t, tc.contains)
		})
	}
}

func TestServeLookup_AgainstViaCEP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/60115000/json/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"cep":"60115-000","logradouro":"Avenida Santos Dumont","bairro":"Aldeota","localidade":"Fortaleza","uf":"ce"}`))
	}))
	defer srv.Close()

	logger := zap.NewNop()
	h := cepfeature.NewHandler(cep.NewClient(srv.URL, 0), uierrors.NewErrorLogger(logger), logger)

	req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodGet, "/cep/60115-000"), "code", "60115-000")
	rec := testutil.NewRecorder()
	h.ServeLookup(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"street":"Avenida Santos Dumont"`)
	rec.AssertContains(t, `"stateCode":"CE"`)
}

func TestServeLookup_ClientTimeoutIsGatewayTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	h := newHandler(cep.NewClient(srv.URL, 50*time.Millisecond))

	req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodGet, "/cep/60115000"), "code", "60115000")
	rec := testutil.NewRecorder()
	h.ServeLookup(rec, req)

	rec.AssertStatus(t, http.StatusGatewayTimeout)
	rec.AssertContains(t, "cep_timeout")
}

func TestHandleApply(t *testing.T) {
	h := newHandler(stubLookup{addr: cep.Address{
		ZipCode:   "60115000",
		Street:    "Avenida Santos Dumont",
		City:      "Fortaleza",
		StateCode: "CE",
	}})

	draft := models.Registration{Type: models.TypeYouth, FullName: "Ana", Bairro: "Meu Bairro", City: "Antiga"}
	req := testutil.WithChiURLParam(
		testutil.WithUser(testutil.NewJSONRequest(t, http.MethodPost, "/cep/60115000/apply", draft), testutil.CadastroUser()),
		"code", "60115000")
	rec := testutil.NewRecorder()
	h.HandleApply(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var got models.Registration
	rec.DecodeJSON(t, &got)
	if got.Address != "Avenida Santos Dumont" || got.City != "Fortaleza" || got.State != "CE" || got.ZipCode != "60115000" {
		t.Errorf("address not applied: %+v", got)
	}
	if got.Bairro != "Meu Bairro" {
		t.Errorf("bairro = %q, blank lookup fields must keep the draft value", got.Bairro)
	}
	if got.FullName != "Ana" || got.Type != models.TypeYouth {
		t.Errorf("draft fields changed: %+v", got)
	}
}

func TestHandleApply_Errors(t *testing.T) {
	tests := []struct {
		name   string
		stub   stubLookup
		body   string
		status int
	}{
		{"bad draft", stubLookup{}, "{", http.StatusBadRequest},
		{"unknown code", stubLookup{err: cep.ErrNotFound}, `{"fullName":"Ana"}`, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHandler(tc.stub)
			req := httptest.NewRequest(http.MethodPost, "/cep/60115000/apply", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			req = testutil.WithChiURLParam(testutil.WithUser(req, testutil.CadastroUser()), "code", "60115000")
			rec := testutil.NewRecorder()
			h.HandleApply(rec, req)
			rec.AssertStatus(t, tc.status)
		})
	}
}

func TestRoutes_ThrottlesLookups(t *testing.T) {
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-0123456789", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	router := cepfeature.Routes(newHandler(stubLookup{addr: cep.Address{ZipCode: "60115000"}}), sm, ratelimit.New(1, 1))

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/60115000", testutil.CadastroUser()))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/60115000", testutil.CadastroUser()))
	rec.AssertStatus(t, http.StatusTooManyRequests)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/60115000"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
