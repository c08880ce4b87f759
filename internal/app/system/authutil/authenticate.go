package authutil

import (
	"errors"

	"github.com/dalemusser/ejchub/internal/app/system/normalize"
	"github.com/dalemusser/ejchub/internal/domain/models"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountDeactivated is returned when the credentials match an
	// account an admin has switched off.
	ErrAccountDeactivated = errors.New("account deactivated")
)

// Verify checks password against u. A nil user is reported as invalid
// credentials. The active flag is only consulted after the password
// matches.
func Verify(u *models.User, password string, h Hasher) error {
	if u == nil {
		return ErrInvalidCredentials
	}
	if h == nil {
		h = BcryptHasher{}
	}
	if !h.Verify(password, u.PasswordHash) {
		return ErrInvalidCredentials
	}
	if !u.IsActive {
		return ErrAccountDeactivated
	}
	return nil
}

// Authenticate finds username (case-insensitively) in users and verifies
// password against it.
func Authenticate(username, password string, users []models.User, h Hasher) (*models.User, error) {
	want := normalize.Username(username)
	if want == "" {
		return nil, ErrInvalidCredentials
	}
	for i := range users {
		if normalize.Username(users[i].Username) != want {
			continue
		}
		u := users[i]
		if err := Verify(&u, password, h); err != nil {
			return nil, err
		}
		return &u, nil
	}
	return nil, ErrInvalidCredentials
}
