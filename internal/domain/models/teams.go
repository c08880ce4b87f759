// internal/domain/models/teams.go
package models

import "sort"

// ServiceTeams is the catalog of retreat service teams, in display order.
var ServiceTeams = []string{
	"Garçom",
	"Cozinha",
	"Mini Mercado",
	"Ordem e Limpeza",
	"Secretaria",
	"Vigília Noturna",
	"Liturgia",
	"Compras",
	"Coordenação Geral",
	"Círculos",
	"Cafezinho",
	"Sala",
	"Visitação",
}

// SchoolingOptions is the catalog of accepted schooling levels.
var SchoolingOptions = []string{
	"Fundamental Incompleto",
	"Fundamental Completo",
	"Médio Incompleto",
	"Médio Completo",
	"Superior Incompleto",
	"Superior Completo",
	"Pós-Graduação",
}

var teamOrder = func() map[string]int {
	m := make(map[string]int, len(ServiceTeams))
	for i, t := range ServiceTeams {
		m[t] = i
	}
	return m
}()

// IsServiceTeam reports whether name is in the service team catalog.
func IsServiceTeam(name string) bool {
	_, ok := teamOrder[name]
	return ok
}

// IsSchoolingOption reports whether s is in the schooling catalog.
func IsSchoolingOption(s string) bool {
	for _, o := range SchoolingOptions {
		if o == s {
			return true
		}
	}
	return false
}

// TeamTally counts how many times a participant served (or coordinated)
// each team. Only positive counts are present; a missing key means zero.
type TeamTally map[string]int

// Count returns the count for team (zero when absent).
func (t TeamTally) Count(team string) int {
	return t[team]
}

// Adjust returns a new tally with team changed by delta, clamped at zero.
// A result of zero removes the key. The receiver is never modified.
func (t TeamTally) Adjust(team string, delta int) TeamTally {
	out := make(TeamTally, len(t)+1)
	for k, v := range t {
		out[k] = v
	}
	next := out[team] + delta
	if next <= 0 {
		delete(out, team)
	} else {
		out[team] = next
	}
	return out
}

// Normalize returns a copy without zero or negative entries.
func (t TeamTally) Normalize() TeamTally {
	out := make(TeamTally, len(t))
	for k, v := range t {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}

// Names returns the teams present in the tally, catalog teams first in
// catalog order, then any unknown names alphabetically.
func (t TeamTally) Names() []string {
	names := make([]string, 0, len(t))
	for k, v := range t {
		if v > 0 {
			names = append(names, k)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		oi, iok := teamOrder[names[i]]
		oj, jok := teamOrder[names[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return names[i] < names[j]
		}
	})
	return names
}

// Total returns the sum of all counts.
func (t TeamTally) Total() int {
	n := 0
	for _, v := range t {
		if v > 0 {
			n += v
		}
	}
	return n
}
