// Package registration holds the rules applied to retreat registrations:
// required-field validation, the youth eligibility check, normalization
// before save and the list filter.
package registration

import (
	"sort"
	"strings"

	"github.com/dalemusser/ejchub/internal/domain/models"
)

// Field error messages shown next to each form field.
const (
	MsgFullName        = "Nome completo é obrigatório"
	MsgHusbandName     = "Nome do esposo é obrigatório"
	MsgWifeName        = "Nome da esposa é obrigatório"
	MsgNickname        = "Como gosta de ser chamado é obrigatório"
	MsgBirthDate       = "Data de nascimento é obrigatória"
	MsgAddress         = "Endereço é obrigatório"
	MsgBairro          = "Bairro é obrigatório"
	MsgCity            = "Cidade é obrigatória"
	MsgPhone           = "Contato é obrigatório"
	MsgType            = "Tipo de ficha inválido"
	MsgSchooling       = "Escolaridade inválida"
	MsgUnknownTeam     = "Equipe desconhecida"
	MsgIneligibleYouth = "Jovem com filho ou casado não pode participar do EJC como encontrista (Norma Diocesana)"
)

// Result is the outcome of Validate. Errors maps a field name (the JSON
// field name of the registration) to the message for that field.
type Result struct {
	Valid  bool              `json:"isValid"`
	Errors map[string]string `json:"errors"`
}

// Fields returns the failing field names in sorted order.
func (r Result) Fields() []string {
	out := make([]string, 0, len(r.Errors))
	for f := range r.Errors {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// ValidationError wraps a failed Result so it can travel as an error.
type ValidationError struct {
	Result Result
}

func (e *ValidationError) Error() string {
	return "registration invalid: " + strings.Join(e.Result.Fields(), ", ")
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Result: r}
}

type requirement struct {
	field string
	value func(models.Registration) string
	msg   string
}

// shared applies to every registration type.
var shared = []requirement{
	{"nickname", func(r models.Registration) string { return r.Nickname }, MsgNickname},
	{"birthDate", func(r models.Registration) string { return r.BirthDate }, MsgBirthDate},
	{"address", func(r models.Registration) string { return r.Address }, MsgAddress},
	{"bairro", func(r models.Registration) string { return r.Bairro }, MsgBairro},
	{"city", func(r models.Registration) string { return r.City }, MsgCity},
	{"phone", func(r models.Registration) string { return r.Phone }, MsgPhone},
}

// Validate checks every required field of r and reports all violations at
// once. Values are trimmed before the emptiness check.
func Validate(r models.Registration) Result {
	errs := make(map[string]string)

	switch p := r.Participant().(type) {
	case models.Youth:
		if blank(p.FullName) {
			errs["fullName"] = MsgFullName
		}
	case models.Couple:
		if blank(p.HusbandName) {
			errs["husbandName"] = MsgHusbandName
		}
		if blank(p.WifeName) {
			errs["wifeName"] = MsgWifeName
		}
	default:
		errs["type"] = MsgType
	}

	for _, req := range shared {
		if blank(req.value(r)) {
			errs[req.field] = req.msg
		}
	}

	if s := strings.TrimSpace(r.Schooling); s != "" && !models.IsSchoolingOption(s) {
		errs["schooling"] = MsgSchooling
	}
	if name, ok := unknownTeam(r.ServedTeams); ok {
		errs["servedTeams"] = MsgUnknownTeam + ": " + name
	}
	if name, ok := unknownTeam(r.CoordinatedTeams); ok {
		errs["coordinatedTeams"] = MsgUnknownTeam + ": " + name
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// IsIneligibleYouth reports whether r is a youth who has children or is
// married. The flag is advisory: it is shown as a warning and never blocks
// a save.
func IsIneligibleYouth(r models.Registration) bool {
	y, ok := r.Participant().(models.Youth)
	return ok && (y.HasChildren || y.IsMarried)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func unknownTeam(t models.TeamTally) (string, bool) {
	for _, name := range t.Names() {
		if !models.IsServiceTeam(name) {
			return name, true
		}
	}
	return "", false
}
