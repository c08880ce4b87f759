// Package lifecycle implements the account state machine:
//
//	PENDING_FIRST_LOGIN --complete first login--> ACTIVE
//	ACTIVE <--admin toggle--> DEACTIVATED
//
// Every transition is a pure function that returns an updated copy of the
// user and leaves the input untouched when it fails.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/ejchub/internal/app/system/authutil"
	"github.com/dalemusser/ejchub/internal/app/system/normalize"
	"github.com/dalemusser/ejchub/internal/domain/models"
)

// State is the derived lifecycle state of an account.
type State string

const (
	PendingFirstLogin State = "PENDING_FIRST_LOGIN"
	Active            State = "ACTIVE"
	Deactivated       State = "DEACTIVATED"
)

// Bootstrap admin identity, synthesized when the user collection is empty.
const (
	BootstrapAdminID       = "admin_root"
	BootstrapAdminUsername = "admin"
)

var (
	ErrConfirmationMismatch = errors.New("password confirmation does not match")
	ErrNotPending           = errors.New("account has already completed first login")
	ErrWeakPassword         = errors.New("password does not meet policy")
	ErrBootstrapAdmin       = errors.New("the bootstrap admin cannot be removed")
	ErrSelfDeactivation     = errors.New("admins cannot deactivate or delete their own account")
	ErrInvalidRole          = errors.New("invalid role")
)

// MissingFieldsError lists required fields left blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// StateOf derives the state of u. Deactivation wins over a pending first
// login.
func StateOf(u models.User) State {
	switch {
	case !u.IsActive:
		return Deactivated
	case u.IsFirstLogin:
		return PendingFirstLogin
	default:
		return Active
	}
}

// IsBootstrapAdmin reports whether u is the synthesized admin account.
func IsBootstrapAdmin(u models.User) bool {
	return u.ID == BootstrapAdminID || normalize.Username(u.Username) == BootstrapAdminUsername
}

// BootstrapAdmin builds the initial ADMIN account. It is created already
// past first login so the operator can sign in and create other users.
func BootstrapAdmin(passwordHash string, nowMillis int64) models.User {
	return models.User{
		ID:           BootstrapAdminID,
		Username:     BootstrapAdminUsername,
		PasswordHash: passwordHash,
		FullName:     "Administrador Geral",
		Role:         models.RoleAdmin,
		Email:        "admin@ejc.com",
		Address:      "Paróquia São Francisco",
		Phone:        "000000000",
		IsActive:     true,
		IsFirstLogin: false,
		CreatedAt:    nowMillis,
	}
}

// NewAccountInput is what an admin supplies when creating an account.
type NewAccountInput struct {
	Username string
	Password string
	FullName string
	Role     string
}

// NewAccount creates a pending account. Contact fields stay empty until
// the owner completes first login.
func NewAccount(id string, in NewAccountInput, h authutil.Hasher, nowMillis int64) (models.User, error) {
	username := normalize.Username(in.Username)
	fullName := normalize.Name(in.FullName)
	role := normalize.Role(in.Role)

	var missing []string
	if username == "" {
		missing = append(missing, "username")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if fullName == "" {
		missing = append(missing, "fullName")
	}
	if len(missing) > 0 {
		return models.User{}, &MissingFieldsError{Fields: missing}
	}
	if !models.ValidRole(role) {
		return models.User{}, fmt.Errorf("%w: %q", ErrInvalidRole, in.Role)
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	hash, err := h.Hash(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	return models.User{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
		IsFirstLogin: true,
		CreatedAt:    nowMillis,
	}, nil
}

// ProfileForm carries the profile fields collected at first login and on
// the profile screen.
type ProfileForm struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	Photo           string `json:"photo,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (f ProfileForm) cleaned() ProfileForm {
	f.FullName = normalize.Name(f.FullName)
	f.Email = normalize.Email(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	return f
}

func (f ProfileForm) missing(requirePassword bool) []string {
	var out []string
	if f.FullName == "" {
		out = append(out, "fullName")
	}
	if f.Email == "" {
		out = append(out, "email")
	}
	if f.Phone == "" {
		out = append(out, "phone")
	}
	if f.Address == "" {
		out = append(out, "address")
	}
	if requirePassword && f.Password == "" {
		out = append(out, "password")
	}
	return out
}

// CompleteFirstLogin moves a pending account to ACTIVE. All profile fields
// and a new password are required and the password must match its
// confirmation. On any failure u is returned unchanged.
func CompleteFirstLogin(u models.User, form ProfileForm, h authutil.Hasher) (models.User, error) {
	if StateOf(u) != PendingFirstLogin {
		return u, ErrNotPending
	}
	f := form.cleaned()
	if m := f.missing(true); len(m) > 0 {
		return u, &MissingFieldsError{Fields: m}
	}
	if f.Password != f.ConfirmPassword {
		return u, ErrConfirmationMismatch
	}
	if err := authutil.ValidatePassword(f.Password); err != nil {
		return u, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}
	hash, err := h.Hash(f.Password)
	if err != nil {
		return u, fmt.Errorf("hash password: %w", err)
	}

	next := u
	next.FullName = f.FullName
	next.Email = f.Email
	next.Phone = f.Phone
	next.Address = f.Address
	if f.Photo != "" {
		next.Photo = f.Photo
	}
	next.PasswordHash = hash
	next.IsFirstLogin = false
	return next, nil
}

// UpdateProfile applies the profile screen. The password change is
// optional; when a new password is given it must match its confirmation.
func UpdateProfile(u models.User, form ProfileForm, h authutil.Hasher) (models.User, error) {
	f := form.cleaned()
	if m := f.missing(false); len(m) > 0 {
		return u, &MissingFieldsError{Fields: m}
	}

	next := u
	if f.Password != "" || f.ConfirmPassword != "" {
		if f.Password != f.ConfirmPassword {
			return u, ErrConfirmationMismatch
		}
		if err := authutil.ValidatePassword(f.Password); err != nil {
			return u, fmt.Errorf("%w: %v", ErrWeakPassword, err)
		}
		hash, err := h.Hash(f.Password)
		if err != nil {
			return u, fmt.Errorf("hash password: %w", err)
		}
		next.PasswordHash = hash
	}

	next.FullName = f.FullName
	next.Email = f.Email
	next.Phone = f.Phone
	next.Address = f.Address
	if f.Photo != "" {
		next.Photo = f.Photo
	}
	return next, nil
}

// SetActive returns target with IsActive set. actorID is the admin making
// the change; an admin cannot switch off their own account.
func SetActive(target models.User, active bool, actorID string) (models.User, error) {
	if !active && target.ID == actorID {
		return target, ErrSelfDeactivation
	}
	next := target
	next.IsActive = active
	return next, nil
}

// CanDelete reports whether target may be removed by actorID.
func CanDelete(target models.User, actorID string) error {
	if IsBootstrapAdmin(target) {
		return ErrBootstrapAdmin
	}
	if target.ID == actorID {
		return ErrSelfDeactivation
	}
	return nil
}
