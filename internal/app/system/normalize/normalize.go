// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"
)

// Username trims and lower-cases a login name.
func Username(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Email trims and lower-cases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role trims and upper-cases a role name (ADMIN, CADASTRO).
func Role(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// RegistrationType trims and upper-cases a registration type (YOUTH, COUPLE).
func RegistrationType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Digits drops every non-digit rune.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ZipCode keeps the digits of a CEP, at most eight of them.
func ZipCode(s string) string {
	d := Digits(s)
	if len(d) > 8 {
		d = d[:8]
	}
	return d
}

// StateCode trims and upper-cases a two-letter state code.
func StateCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
