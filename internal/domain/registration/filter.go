package registration

import (
	"strings"

	"github.com/dalemusser/ejchub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Criteria narrows the registration list.
// Empty Query, Type or Team means "no restriction" for that dimension.
type Criteria struct {
	Query string // matched against names, nickname, city and bairro
	Type  string // "", YOUTH or COUPLE
	Team  string // served or coordinated at least once
}

// Filter returns the registrations matching c, preserving input order.
// Text matching ignores case and diacritics.
func Filter(list []models.Registration, c Criteria) []models.Registration {
	q := text.Fold(strings.TrimSpace(c.Query))
	out := make([]models.Registration, 0, len(list))
	for _, r := range list {
		if c.Type != "" && r.Type != c.Type {
			continue
		}
		if c.Team != "" && r.ServedTeams.Count(c.Team) <= 0 && r.CoordinatedTeams.Count(c.Team) <= 0 {
			continue
		}
		if q != "" && !matches(r, q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matches(r models.Registration, q string) bool {
	for _, v := range []string{r.FullName, r.HusbandName, r.WifeName, r.Nickname, r.City, r.Bairro} {
		if v != "" && strings.Contains(text.Fold(v), q) {
			return true
		}
	}
	return false
}

// Stats summarizes a set of registrations for the dashboard.
type Stats struct {
	Youth      int `json:"youth"`
	Couples    int `json:"couples"`
	Total      int `json:"total"`
	Eligible   int `json:"eligible"`
	Ineligible int `json:"ineligible"`

	// Services and Coordinations add up every team count, so someone who
	// served Cozinha twice counts two.
	Services      int `json:"services"`
	Coordinations int `json:"coordinations"`
}

// Summarize counts registrations by type and eligibility. Couples always
// count as eligible.
func Summarize(list []models.Registration) Stats {
	var s Stats
	for _, r := range list {
		switch r.Type {
		case models.TypeYouth:
			s.Youth++
			if IsIneligibleYouth(r) {
				s.Ineligible++
			} else {
				s.Eligible++
			}
		case models.TypeCouple:
			s.Couples++
			s.Eligible++
		}
		s.Services += r.ServedTeams.Total()
		s.Coordinations += r.CoordinatedTeams.Total()
	}
	s.Total = len(list)
	return s
}

// TeamCounts returns how many registrations served each catalog team.
func TeamCounts(list []models.Registration) map[string]int {
	out := make(map[string]int)
	for _, r := range list {
		for _, name := range r.ServedTeams.Names() {
			out[name]++
		}
	}
	return out
}
