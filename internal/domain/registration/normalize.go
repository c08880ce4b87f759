package registration

import (
	"strings"

	"github.com/dalemusser/ejchub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ejchub/internal/app/system/normalize"
	"github.com/dalemusser/ejchub/internal/domain/models"
)

// Normalize returns a cleaned copy of r ready to be validated and saved.
//
//   - text fields are trimmed and stripped of markup
//   - the zip code keeps at most eight digits
//   - the sacrament "none" flag is cleared when any sacrament is marked
//   - pastoral and musical details are cleared when their flag is off
//   - a COUPLE drops the youth name and youth-only flags, a YOUTH drops
//     the couple names
//   - team tallies lose zero and negative entries
func Normalize(r models.Registration) models.Registration {
	r.Type = normalize.RegistrationType(r.Type)

	r.FullName = normalize.Name(htmlsanitize.PlainText(r.FullName))
	r.HusbandName = normalize.Name(htmlsanitize.PlainText(r.HusbandName))
	r.WifeName = normalize.Name(htmlsanitize.PlainText(r.WifeName))
	r.Nickname = clean(r.Nickname)
	r.City = clean(r.City)
	r.State = normalize.StateCode(r.State)
	r.Address = clean(r.Address)
	r.Number = clean(r.Number)
	r.Bairro = clean(r.Bairro)
	r.ReferencePoint = clean(r.ReferencePoint)
	r.Phone = clean(r.Phone)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.Schooling = strings.TrimSpace(r.Schooling)
	r.Profession = clean(r.Profession)
	r.EJCHistoryYear = clean(r.EJCHistoryYear)
	r.EJCHistoryCircle = clean(r.EJCHistoryCircle)
	r.Observations = htmlsanitize.PlainText(r.Observations)
	r.ZipCode = normalize.ZipCode(r.ZipCode)

	r.Sacraments = r.Sacraments.Normalize()

	if r.IsPastoralMember {
		r.PastoralName = clean(r.PastoralName)
	} else {
		r.PastoralName = ""
	}
	if r.HasMusicalTalent {
		r.MusicalTalentDetail = clean(r.MusicalTalentDetail)
	} else {
		r.MusicalTalentDetail = ""
	}

	switch r.Type {
	case models.TypeCouple:
		r.FullName = ""
		r.HasChildren = false
		r.IsMarried = false
	case models.TypeYouth:
		r.HusbandName = ""
		r.WifeName = ""
	}

	r.ServedTeams = r.ServedTeams.Normalize()
	r.CoordinatedTeams = r.CoordinatedTeams.Normalize()
	return r
}

func clean(s string) string {
	return htmlsanitize.PlainText(s)
}
