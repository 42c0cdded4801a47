package withdraw

import "testing"

func TestValidCard(t *testing.T) {
	cases := []struct {
		number string
		want   bool
	}{
		{"4111111111111111", true},
		{"8600490744313347", true},
		{"8600490744313348", false},
		{"4111111111111112", false},
		{"411111111111111a", false},
		{"", false},
		{"4111", false},
	}
	for _, tc := range cases {
		if got := ValidCard(tc.number); got != tc.want {
			t.Errorf("ValidCard(%q) = %v, want %v", tc.number, got, tc.want)
		}
	}
}

func TestMaskCard(t *testing.T) {
	if got := MaskCard("4111111111111111"); got != "************1111" {
		t.Errorf("MaskCard = %q", got)
	}
	if got := MaskCard("1111"); got != "1111" {
		t.Errorf("short MaskCard = %q", got)
	}
}
