package preview

import "testing"

func TestDarkenHex(t *testing.T) {
	cases := []struct {
		hex    string
		amount int
		want   string
	}{
		{"#808080", 20, "#6c6c6c"},
		{"#ff0000", 20, "#eb0000"},
		{"#FF0000", 20, "#eb0000"},
		{"#102030", 40, "#000008"},
		{"#000000", 50, "#000000"},
		{"#ffffff", 0, "#ffffff"},
		{"garbage", 10, "#000000"},
		{"", 10, "#000000"},
	}
	for _, tc := range cases {
		if got := DarkenHex(tc.hex, tc.amount); got != tc.want {
			t.Errorf("DarkenHex(%q, %d) = %q, want %q", tc.hex, tc.amount, got, tc.want)
		}
	}
}

func TestDarkenHexNeverNegative(t *testing.T) {
	for amount := 0; amount <= 300; amount += 17 {
		got := DarkenHex("#336699", amount)
		if len(got) != 7 || got[0] != '#' {
			t.Fatalf("DarkenHex produced malformed color %q at amount %d", got, amount)
		}
	}
	if got := DarkenHex("#336699", 300); got != "#000000" {
		t.Errorf("full darken = %q, want #000000", got)
	}
}
