package core

import "testing"

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"", ColorDefault, false},
		{"default", ColorDefault, false},
		{"#ff8000", RGB(255, 128, 0), false},
		{"#F80", RGB(255, 136, 0), false},
		{"Cyan", ColorCyan, false},
		{"#12345", ColorDefault, true},
		{"chartreuse", ColorDefault, true},
		{"#gggggg", ColorDefault, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseColor(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseColor(%q) = %v, expected %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestColorHex(t *testing.T) {
	if ColorDefault.Hex() != "" {
		t.Errorf("default color should have empty hex, got %q", ColorDefault.Hex())
	}
	if got := RGB(0, 0, 0).Hex(); got != "#000000" {
		t.Errorf("black Hex() = %q, expected #000000", got)
	}
	if RGB(0, 0, 0).IsDefault() {
		t.Error("black must not be treated as the default color")
	}
}
