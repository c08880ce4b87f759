// internal/domain/models/user.go
package models

// Roles a user account can hold.
const (
	RoleAdmin    = "ADMIN"
	RoleCadastro = "CADASTRO"
)

// User is an application account.
//
// NOTE:
//   - Username is stored lower-cased; lookups compare case-insensitively.
//   - PasswordHash never leaves the server except inside a backup snapshot.
//   - LegacyPassword only appears when decoding backups written by the old
//     client app, which stored plaintext. It is hashed on import and never
//     persisted.
type User struct {
	ID             string `bson:"_id" json:"id"`
	Username       string `bson:"username" json:"username"`
	PasswordHash   string `bson:"password_hash" json:"passwordHash,omitempty"`
	LegacyPassword string `bson:"-" json:"password,omitempty"`
	FullName       string `bson:"full_name" json:"fullName"`
	Role           string `bson:"role" json:"role"` // ADMIN | CADASTRO
	Email          string `bson:"email" json:"email"`
	Address        string `bson:"address" json:"address"`
	Phone          string `bson:"phone" json:"phone"`
	Photo          string `bson:"photo,omitempty" json:"photo,omitempty"` // data URL
	IsActive       bool   `bson:"is_active" json:"isActive"`
	IsFirstLogin   bool   `bson:"is_first_login" json:"isFirstLogin"`
	CreatedAt      int64  `bson:"created_at" json:"createdAt"` // epoch millis
}

// IsAdmin reports whether the account carries the ADMIN role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Redacted returns a copy without credential material, for API responses.
func (u User) Redacted() User {
	u.PasswordHash = ""
	u.LegacyPassword = ""
	return u
}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCadastro
}
