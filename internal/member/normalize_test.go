package member

import "testing"

func TestNormalizeCanonicalForms(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"bare digits", "07", "ACM07"},
		{"lowercase with dash", "acm-07", "ACM07"},
		{"legacy m prefix", "m12", "ACM12"},
		{"uppercase m prefix", "M 334", "ACM334"},
		{"already canonical", "ACM42", "ACM42"},
		{"punctuation noise", "a.c.m/99", "ACM99"},
		{"surrounding whitespace", "  acm08  ", "ACM08"},
		{"empty", "", ""},
		{"punctuation only", "--..--", ""},
		{"non member code", "XYZ123", "XYZ123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"07", "acm-07", "m12", "ACM42", "M 334", "xyz123"}
	for _, input := range inputs {
		once := Normalize(input)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}
