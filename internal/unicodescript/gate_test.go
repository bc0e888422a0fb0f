package unicodescript

import "testing"

func TestGate_CanFuzzyMatch(t *testing.T) {
	gate, err := New([]string{"Latin", "Greek", "Cyrillic"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cases := []struct {
		name  string
		token string
		want  bool
	}{
		{"ascii word", "street", true},
		{"mixed case", "Main", true},
		{"accented latin", "café", true},
		{"cyrillic", "улица", true},
		{"greek", "οδός", true},
		{"digits", "100", false},
		{"alphanumeric", "100a", false},
		{"cjk", "北京", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := gate.CanFuzzyMatch(tc.token); got != tc.want {
				t.Errorf("CanFuzzyMatch(%q) = %v, want %v", tc.token, got, tc.want)
			}
		})
	}
}

func TestNew_UnknownScript(t *testing.T) {
	if _, err := New([]string{"Klingon"}); err == nil {
		t.Fatal("expected an error for an unrecognized script name")
	}
}
