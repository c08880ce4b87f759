// Package snapshot encodes and decodes full backups of the application data.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dalemusser/ejchub/internal/app/system/authutil"
	"github.com/dalemusser/ejchub/internal/domain/models"
)

// ErrParse is returned for malformed or inconsistent backup documents.
var ErrParse = errors.New("invalid backup file")

// MaxSize caps the size of an uploaded backup.
const MaxSize = 32 << 20 // 32 MB

// Snapshot is the backup document. Field names match backups written by the
// earlier client application so those files can still be imported.
type Snapshot struct {
	Users         []models.User         `json:"users"`
	Registrations []models.Registration `json:"registrations"`
	Logs          []models.UserLog      `json:"logs"`
	ExportDate    string                `json:"exportDate"`
}

// Build assembles a snapshot. Nil slices are written as empty arrays.
func Build(users []models.User, regs []models.Registration, logs []models.UserLog, now time.Time) Snapshot {
	if users == nil {
		users = []models.User{}
	}
	if regs == nil {
		regs = []models.Registration{}
	}
	if logs == nil {
		logs = []models.UserLog{}
	}
	return Snapshot{
		Users:         users,
		Registrations: regs,
		Logs:          logs,
		ExportDate:    now.UTC().Format(time.RFC3339Nano),
	}
}

// Filename returns the download name for a backup made on day.
func Filename(day time.Time) string {
	return "backup_ejc_" + day.Format("2006-01-02") + ".json"
}

// Encode writes s as indented JSON.
func Encode(w io.Writer, s Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(s)
}

// Decode parses and checks a backup document. The input must hold exactly
// one JSON object. Every entry must carry an id;
// users need a username and a known role, registrations a known type.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Snapshot{}, fmt.Errorf("%w: trailing data after backup document", ErrParse)
	}

	for i, u := range s.Users {
		switch {
		case u.ID == "":
			return Snapshot{}, fmt.Errorf("%w: users[%d] has no id", ErrParse, i)
		case u.Username == "":
			return Snapshot{}, fmt.Errorf("%w: users[%d] has no username", ErrParse, i)
		case !models.ValidRole(u.Role):
			return Snapshot{}, fmt.Errorf("%w: users[%d] has unknown role %q", ErrParse, i, u.Role)
		}
	}
	for i, r := range s.Registrations {
		switch {
		case r.ID == "":
			return Snapshot{}, fmt.Errorf("%w: registrations[%d] has no id", ErrParse, i)
		case !models.ValidType(r.Type):
			return Snapshot{}, fmt.Errorf("%w: registrations[%d] has unknown type %q", ErrParse, i, r.Type)
		}
	}
	return s, nil
}

// HashLegacyPasswords replaces plaintext passwords carried by old backups
// with hashes. Users that already have a hash keep it. Returns how many
// entries were converted.
func HashLegacyPasswords(users []models.User, h authutil.Hasher) (int, error) {
	n := 0
	for i := range users {
		u := &users[i]
		if u.LegacyPassword == "" {
			continue
		}
		if u.PasswordHash == "" {
			hash, err := h.Hash(u.LegacyPassword)
			if err != nil {
				return n, fmt.Errorf("hash password for %q: %w", u.Username, err)
			}
			u.PasswordHash = hash
			n++
		}
		u.LegacyPassword = ""
	}
	return n, nil
}
