package preview

import "fmt"

// DarkenHex subtracts amount from each RGB channel of a #rrggbb color,
// flooring at 0. Pure and deterministic; no gamma correction, matching the
// extrusion shading the theme ships.
func DarkenHex(hex string, amount int) string {
	r, g, b := parseHex(hex)
	return fmt.Sprintf("#%02x%02x%02x", floor0(r-amount), floor0(g-amount), floor0(b-amount))
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}
	return hexPair(hex[0:2]), hexPair(hex[2:4]), hexPair(hex[4:6])
}

func hexPair(s string) int {
	v := 0
	for i := 0; i < 2; i++ {
		v <<= 4
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			v |= int(c - '0')
		case c >= 'a' && c <= 'f':
			v |= int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= int(c-'A') + 10
		default:
			return 0
		}
	}
	return v
}

func floor0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
