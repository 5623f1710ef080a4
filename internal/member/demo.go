package member

import (
	"math/rand"
	"time"
)

// demoMembers is served when the remote directory is unreachable so the
// check-in flow keeps working during network outages and demonstrations.
func demoMembers(now time.Time) []Member {
	return []Member{
		{
			RegistrationNumber: "ACM01",
			FirstName:          "Amadou",
			LastName:           "Diallo",
			Occupation:         OccupationStudent,
			StudyOrWorkPlace:   "Université de Nouakchott",
			JoinDate:           now.AddDate(0, -6, 0),
		},
		{
			RegistrationNumber: "ACM02",
			FirstName:          "Fatimata",
			LastName:           "Sow",
			Occupation:         OccupationEmployee,
			StudyOrWorkPlace:   "Banque Centrale",
			JoinDate:           now.AddDate(0, -4, -12),
		},
		{
			RegistrationNumber: "ACM03",
			FirstName:          "Moussa",
			LastName:           "Ba",
			Occupation:         OccupationEntrepreneur,
			StudyOrWorkPlace:   "Atelier Ba & Fils",
			JoinDate:           now.AddDate(0, -3, -2),
		},
		{
			RegistrationNumber: "ACM04",
			FirstName:          "Aïssata",
			LastName:           "Kane",
			Occupation:         OccupationStudent,
			StudyOrWorkPlace:   "Lycée Technique",
			JoinDate:           now.AddDate(0, -1, -20),
		},
		{
			RegistrationNumber: "ACM05",
			FirstName:          "Oumar",
			LastName:           "Thiam",
			Occupation:         OccupationUnemployed,
			JoinDate:           now.AddDate(0, 0, -25),
		},
		{
			RegistrationNumber: "ACM06",
			FirstName:          "Mariame",
			LastName:           "Camara",
			Occupation:         OccupationOther,
			JoinDate:           now.AddDate(0, 0, -10),
		},
	}
}

var temporaryNames = []struct {
	first string
	last  string
}{
	{"Visiteur", "Un"},
	{"Visiteuse", "Deux"},
	{"Invité", "Trois"},
	{"Invitée", "Quatre"},
}

// newTemporaryMember fabricates a flagged placeholder so demo-mode check-ins
// can proceed for identifiers absent from the demo dataset.
func newTemporaryMember(registrationNumber string, now time.Time) Member {
	name := temporaryNames[rand.Intn(len(temporaryNames))]
	return Member{
		RegistrationNumber: registrationNumber,
		FirstName:          name.first,
		LastName:           name.last,
		Occupation:         OccupationOther,
		JoinDate:           now,
		IsTemporary:        true,
	}
}
