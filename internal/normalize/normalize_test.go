package normalize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "UBER RIDE", "uber ride"},
		{"collapse runs", "uber   ride", "uber ride"},
		{"trim", " Uber Ride ", "uber ride"},
		{"tabs and newlines", "uber\t\nride", "uber ride"},
		{"empty", "", ""},
		{"whitespace only", "   \t\n ", ""},
		{"already canonical", "uber ride", "uber ride"},
		{"unicode case", "CAFÉ LATTE", "café latte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestText_Idempotent(t *testing.T) {
	inputs := []string{"UBER RIDE", "  spaced   out  ", "", "mixed\tWHITESPACE\n", "plain"}

	for _, s := range inputs {
		once := Text(s)
		if twice := Text(once); twice != once {
			t.Errorf("Text not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}
