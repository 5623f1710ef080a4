package member

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Occupation classifies what a member does outside the center.
type Occupation string

const (
	OccupationStudent      Occupation = "student"
	OccupationEmployee     Occupation = "employee"
	OccupationEntrepreneur Occupation = "entrepreneur"
	OccupationUnemployed   Occupation = "unemployed"
	OccupationOther        Occupation = "other"
)

// Defaults applied when the remote directory omits optional fields.
const (
	DefaultFirstName = "Prénom"
	DefaultLastName  = "Non spécifié"
)

// Member is an identity record owned by the remote directory. The kiosk
// treats it as read only, keyed by its normalized registration number.
type Member struct {
	RegistrationNumber string     `json:"registrationNumber"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	Occupation         Occupation `json:"occupation"`
	PhoneNumber        string     `json:"phoneNumber,omitempty"`
	Email              string     `json:"email,omitempty"`
	StudyOrWorkPlace   string     `json:"studyOrWorkPlace,omitempty"`
	ProfileImage       string     `json:"profileImage,omitempty"`
	JoinDate           time.Time  `json:"joinDate"`
	IsTemporary        bool       `json:"isTemporary,omitempty"`
}

// FullName returns the display name used on receipts and notifications.
func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

var nameCaser = cases.Title(language.French)

func validOccupation(o Occupation) bool {
	switch o {
	case OccupationStudent, OccupationEmployee, OccupationEntrepreneur, OccupationUnemployed, OccupationOther:
		return true
	}
	return false
}

// Clean fills missing optional fields with documented defaults and forces the
// registration number into canonical form. Raw records from the directory are
// never stored without passing through here.
func Clean(raw Member, now time.Time) Member {
	cleaned := raw

	cleaned.FirstName = strings.TrimSpace(cleaned.FirstName)
	if cleaned.FirstName == "" {
		cleaned.FirstName = DefaultFirstName
	} else {
		cleaned.FirstName = nameCaser.String(strings.ToLower(cleaned.FirstName))
	}

	cleaned.LastName = strings.TrimSpace(cleaned.LastName)
	if cleaned.LastName == "" {
		cleaned.LastName = DefaultLastName
	}

	if !validOccupation(cleaned.Occupation) {
		cleaned.Occupation = OccupationOther
	}

	if cleaned.JoinDate.IsZero() {
		cleaned.JoinDate = now
	}

	number := Normalize(cleaned.RegistrationNumber)
	if !strings.HasPrefix(number, "ACM") {
		number = "ACM" + number
	}
	cleaned.RegistrationNumber = number
	return cleaned
}
