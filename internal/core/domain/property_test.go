package domain

import "testing"

func TestValidPostalCode(t *testing.T) {
	cases := []struct {
		cep  string
		want bool
	}{
		{"13015-001", true},
		{"13015001", true},
		{"01310-100", true},
		{"1301", false},
		{"13015-0011", false},
		{"13015_001", false},
		{"130-15001", false}, // hyphen in the wrong position
		{"abcde-fgh", false},
		{"11111111", false}, // run of identical digits
		{"00000-000", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidPostalCode(tc.cep); got != tc.want {
			t.Errorf("ValidPostalCode(%q) = %v, want %v", tc.cep, got, tc.want)
		}
	}
}

func TestValidStateCode(t *testing.T) {
	for _, uf := range []string{"SP", "RJ", "MG", "TO"} {
		if !ValidStateCode(uf) {
			t.Errorf("ValidStateCode(%q) = false", uf)
		}
	}
	for _, bad := range []string{"sp", "XX", "", "SPP"} {
		if ValidStateCode(bad) {
			t.Errorf("ValidStateCode(%q) = true", bad)
		}
	}
}
