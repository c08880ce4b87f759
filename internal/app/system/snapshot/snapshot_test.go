package snapshot

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/ejchub/internal/app/system/authutil"
	"github.com/dalemusser/ejchub/internal/domain/models"
	"golang.org/x/crypto/bcrypt"
)

func sample() ([]models.User, []models.Registration) {
	users := []models.User{
		{ID: "admin_root", Username: "admin", PasswordHash: "$2a$x", FullName: "Administrador Geral",
			Role: models.RoleAdmin, IsActive: true, CreatedAt: 1},
		{ID: "u2", Username: "maria", FullName: "Maria", Role: models.RoleCadastro, IsActive: false,
			IsFirstLogin: true, CreatedAt: 2},
	}
	regs := []models.Registration{
		{ID: "r1", Type: models.TypeYouth, FullName: "Ana", Nickname: "Aninha",
			Sacraments:  models.Sacraments{Baptism: true},
			ServedTeams: models.TeamTally{"Cozinha": 2}, CreatedAt: 10, RegisteredBy: "admin"},
		{ID: "r2", Type: models.TypeCouple, HusbandName: "João", WifeName: "Maria",
			CoordinatedTeams: models.TeamTally{"Sala": 1}, CreatedAt: 20, RegisteredBy: "maria"},
	}
	return users, regs
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	users, regs := sample()
	logs := []models.UserLog{{ID: "l1", UserID: "admin_root", Username: "admin", Action: "Login realizado", Timestamp: 5}}
	s := Build(users, regs, logs, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"users\"") {
		t.Error("expected indented output")
	}

	got, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(got.Users, users) {
		t.Errorf("users differ:\n got %+v\nwant %+v", got.Users, users)
	}
	if !reflect.DeepEqual(got.Registrations, regs) {
		t.Errorf("registrations differ:\n got %+v\nwant %+v", got.Registrations, regs)
	}
	if got.ExportDate != "2026-01-02T03:04:05Z" {
		t.Errorf("ExportDate = %q", got.ExportDate)
	}
}

func TestBuild_NilSlices(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Build(nil, nil, nil, time.Now())); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"users": []`) {
		t.Errorf("nil users should encode as []: %s", buf.String())
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{users:`},
		{"user without id", `{"users":[{"username":"a","role":"ADMIN"}]}`},
		{"user without username", `{"users":[{"id":"u1","role":"ADMIN"}]}`},
		{"user with bad role", `{"users":[{"id":"u1","username":"a","role":"ROOT"}]}`},
		{"registration without id", `{"registrations":[{"type":"YOUTH"}]}`},
		{"registration with bad type", `{"registrations":[{"id":"r1","type":"KID"}]}`},
		{"second document", `{"users":[]}{"registrations":[{"id":"r9","type":"YOUTH"}]}`},
		{"trailing garbage", `{"users":[]} lixo`},
		{"stray closing bracket", `{"users":[]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.doc)); !errors.Is(err, ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestDecode_TrailingWhitespace(t *testing.T) {
	if _, err := Decode([]byte("{\"users\":[]}\n\n  ")); err != nil {
		t.Errorf("trailing whitespace should be accepted, got %v", err)
	}
}

func TestDecode_LegacyBackup(t *testing.T) {
	doc := `{
	  "users": [{"id":"admin_root","username":"admin","password":"@dmin","fullName":"Administrador Geral",
	             "role":"ADMIN","isActive":true,"isFirstLogin":false,"createdAt":1}],
	  "registrations": [],
	  "logs": [{"id":"l1","userId":"admin_root","username":"admin","action":"x","timestamp":1}],
	  "exportDate": "2024-05-01T10:00:00.000Z"
	}`
	s, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if s.Users[0].LegacyPassword != "@dmin" {
		t.Fatalf("LegacyPassword = %q", s.Users[0].LegacyPassword)
	}

	h := authutil.BcryptHasher{Cost: bcrypt.MinCost}
	n, err := HashLegacyPasswords(s.Users, h)
	if err != nil {
		t.Fatalf("HashLegacyPasswords failed: %v", err)
	}
	if n != 1 {
		t.Errorf("converted %d, want 1", n)
	}
	u := s.Users[0]
	if u.LegacyPassword != "" {
		t.Error("plaintext must be cleared")
	}
	if !h.Verify("@dmin", u.PasswordHash) {
		t.Error("hash should verify the legacy password")
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)); got != "backup_ejc_2026-12-25.json" {
		t.Errorf("Filename() = %q", got)
	}
}
