// internal/domain/models/registration.go
package models

// Registration types.
const (
	TypeYouth  = "YOUTH"
	TypeCouple = "COUPLE"
)

// Sacraments records which sacraments a participant has received.
// None is cleared whenever any other flag is set (see Normalize).
type Sacraments struct {
	Baptism      bool `bson:"baptism" json:"baptism"`
	Eucharist    bool `bson:"eucharist" json:"eucharist"`
	Confirmation bool `bson:"confirmation" json:"confirmation"`
	None         bool `bson:"none" json:"none"`
}

// Any reports whether at least one sacrament is marked.
func (s Sacraments) Any() bool {
	return s.Baptism || s.Eucharist || s.Confirmation
}

// Normalize returns a copy with None cleared if any sacrament is marked.
func (s Sacraments) Normalize() Sacraments {
	if s.Any() {
		s.None = false
	}
	return s
}

// Registration is a retreat registration record for a youth or a couple.
//
// The document is stored flat. Participant() exposes the identity fields
// as a closed set of variants so callers switch on the variant instead of
// checking Type and reading the right fields by hand.
type Registration struct {
	ID   string `bson:"_id" json:"id"`
	Type string `bson:"type" json:"type"` // YOUTH | COUPLE

	// Identity: FullName for YOUTH, HusbandName/WifeName for COUPLE.
	FullName    string `bson:"full_name" json:"fullName"`
	HusbandName string `bson:"husband_name,omitempty" json:"husbandName,omitempty"`
	WifeName    string `bson:"wife_name,omitempty" json:"wifeName,omitempty"`

	Nickname         string `bson:"nickname" json:"nickname"`
	ZipCode          string `bson:"zip_code" json:"zipCode"`
	City             string `bson:"city" json:"city"`
	State            string `bson:"state" json:"state"`
	Address          string `bson:"address" json:"address"`
	Number           string `bson:"number" json:"number"`
	Bairro           string `bson:"bairro" json:"bairro"`
	ReferencePoint   string `bson:"reference_point" json:"referencePoint"`
	Phone            string `bson:"phone" json:"phone"`
	BirthDate        string `bson:"birth_date" json:"birthDate"`
	Schooling        string `bson:"schooling" json:"schooling"`
	Profession       string `bson:"profession" json:"profession"`
	EJCHistoryYear   string `bson:"ejc_history_year,omitempty" json:"ejcHistoryYear,omitempty"`
	EJCHistoryCircle string `bson:"ejc_history_circle,omitempty" json:"ejcHistoryCircle,omitempty"`
	Photo            string `bson:"photo,omitempty" json:"photo,omitempty"`

	Sacraments          Sacraments `bson:"sacraments" json:"sacraments"`
	IsPastoralMember    bool       `bson:"is_pastoral_member" json:"isPastoralMember"`
	PastoralName        string     `bson:"pastoral_name,omitempty" json:"pastoralName,omitempty"`
	HasMusicalTalent    bool       `bson:"has_musical_talent" json:"hasMusicalTalent"`
	MusicalTalentDetail string     `bson:"musical_talent_detail,omitempty" json:"musicalTalentDetail,omitempty"`

	// Youth only.
	HasChildren bool `bson:"has_children" json:"hasChildren"`
	IsMarried   bool `bson:"is_married" json:"isMarried"`

	ServedTeams      TeamTally `bson:"served_teams" json:"servedTeams"`
	CoordinatedTeams TeamTally `bson:"coordinated_teams" json:"coordinatedTeams"`

	Observations string `bson:"observations,omitempty" json:"observations,omitempty"`

	RegisteredBy string `bson:"registered_by" json:"registeredBy"`
	CreatedAt    int64  `bson:"created_at" json:"createdAt"` // epoch millis
}

// Participant is the identity of a registration: either Youth or Couple.
type Participant interface {
	isParticipant()
	// DisplayName is the name shown in lists and activity entries.
	DisplayName() string
}

// Youth is a single young participant.
type Youth struct {
	FullName    string
	HasChildren bool
	IsMarried   bool
}

// Couple is a married couple registering together.
type Couple struct {
	HusbandName string
	WifeName    string
}

func (Youth) isParticipant()  {}
func (Couple) isParticipant() {}

func (y Youth) DisplayName() string { return y.FullName }

func (c Couple) DisplayName() string { return c.HusbandName + " & " + c.WifeName }

// Participant returns the identity variant for r, or nil when Type is not
// a known registration type.
func (r Registration) Participant() Participant {
	switch r.Type {
	case TypeYouth:
		return Youth{FullName: r.FullName, HasChildren: r.HasChildren, IsMarried: r.IsMarried}
	case TypeCouple:
		return Couple{HusbandName: r.HusbandName, WifeName: r.WifeName}
	}
	return nil
}

// DisplayName returns the participant's display name, falling back to
// FullName for records with an unknown type.
func (r Registration) DisplayName() string {
	if p := r.Participant(); p != nil {
		return p.DisplayName()
	}
	return r.FullName
}

// ValidType reports whether t is a known registration type.
func ValidType(t string) bool {
	return t == TypeYouth || t == TypeCouple
}
