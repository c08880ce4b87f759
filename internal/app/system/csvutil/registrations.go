// internal/app/system/csvutil/registrations.go
package csvutil

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/dalemusser/ejchub/internal/domain/models"
)

// ErrNothingToExport is returned when the filtered list is empty.
var ErrNothingToExport = errors.New("no registrations to export")

// Header is the first line of the registration list export.
var Header = []string{"Tipo", "Nome/Esposo", "Esposa", "Apelido", "Fone", "Bairro", "Cidade", "Equipes Servidas"}

// Filename returns the download name for an export made on day.
func Filename(day time.Time) string {
	return "lista_ejc_" + day.Format("2006-01-02") + ".csv"
}

// Row returns the export cells of one registration.
func Row(r models.Registration) []string {
	kind, name := "Casal", r.HusbandName
	if r.Type == models.TypeYouth {
		kind, name = "Jovem", r.FullName
	}
	wife := r.WifeName
	if wife == "" {
		wife = "-"
	}
	return []string{
		kind,
		name,
		wife,
		r.Nickname,
		r.Phone,
		r.Bairro,
		r.City,
		strings.Join(r.ServedTeams.Names(), ", "),
	}
}

// WriteRegistrations writes the list export: a bare header line, then one
// line per registration with every cell wrapped in double quotes. Lines are
// separated by "\n" with no trailing newline.
func WriteRegistrations(w io.Writer, regs []models.Registration) error {
	if len(regs) == 0 {
		return ErrNothingToExport
	}

	var b strings.Builder
	b.WriteString(strings.Join(Header, ","))
	for _, r := range regs {
		b.WriteByte('\n')
		for i, cell := range Row(r) {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			b.WriteByte('"')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
