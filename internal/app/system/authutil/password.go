// internal/app/system/authutil/password.go
package authutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// Password policy limits. MinPasswordLength counts characters;
// MaxPasswordLength counts bytes, the most bcrypt will hash.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72

	// DefaultBcryptCost is the bcrypt work factor for new hashes.
	DefaultBcryptCost = 12
)

// Hasher names accepted by NewHasher.
const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrPasswordCommon   = errors.New("password too common")
	ErrUnknownHasher    = errors.New("unknown password hasher")
)

// commonPasswords is a small deny-list checked case-insensitively.
var commonPasswords = map[string]struct{}{
	"123456":    {},
	"1234567":   {},
	"12345678":  {},
	"123456789": {},
	"password":  {},
	"qwerty":    {},
	"abc123":    {},
	"iloveyou":  {},
	"letmein":   {},
	"football":  {},
	"welcome":   {},
	"senha":     {},
	"senha123":  {},
	"admin123":  {},
	"mudar123":  {},
}

// ValidatePassword enforces the password policy for new credentials.
func ValidatePassword(pw string) error {
	if len([]rune(pw)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(pw) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, bad := commonPasswords[strings.ToLower(pw)]; bad {
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules describes the policy for display next to password fields.
func PasswordRules() string {
	return fmt.Sprintf("Mínimo %d caracteres. Evite senhas óbvias como 123456.", MinPasswordLength)
}

// Hasher turns passwords into stored hashes and checks them back.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// BcryptHasher hashes with bcrypt. Zero Cost means DefaultBcryptCost.
type BcryptHasher struct {
	Cost int
}

func (b BcryptHasher) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (BcryptHasher) Verify(password, hash string) bool {
	return CheckPassword(password, hash)
}

// DefaultArgon2idParams follows the RFC 9106 second recommended option,
// scaled down for a small single-node deployment.
var DefaultArgon2idParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Argon2idHasher hashes with argon2id. Nil Params means DefaultArgon2idParams.
type Argon2idHasher struct {
	Params *argon2id.Params
}

func (a Argon2idHasher) Hash(password string) (string, error) {
	p := a.Params
	if p == nil {
		p = DefaultArgon2idParams
	}
	return argon2id.CreateHash(password, p)
}

func (Argon2idHasher) Verify(password, hash string) bool {
	return CheckPassword(password, hash)
}

// NewHasher returns the hasher registered under name.
func NewHasher(name string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", HasherBcrypt:
		return BcryptHasher{}, nil
	case HasherArgon2id:
		return Argon2idHasher{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, name)
}

// CheckPassword compares a password with a stored hash of either kind.
// The algorithm is picked from the hash prefix so accounts keep working
// after the configured hasher changes.
func CheckPassword(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	if strings.HasPrefix(hash, "$argon2id$") {
		ok, err := argon2id.ComparePasswordAndHash(password, hash)
		return err == nil && ok
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
