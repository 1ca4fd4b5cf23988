package format

import (
	"fmt"
	"strings"
	"time"
)

// FmtEUR renders an amount in integer cents the way the storefront displays
// prices: two decimals, comma as decimal separator, euro sign suffix.
// Example: FmtEUR(7470) => "74,70 €".
func FmtEUR(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("%d,%02d €", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// FmtCurrency formats amount in minor units for the currencies the upstream
// snapshots report.
func FmtCurrency(minor int64, currency string) string {
	switch strings.ToUpper(currency) {
	case "", "EUR":
		return FmtEUR(minor)
	case "USD":
		neg := minor < 0
		if neg {
			minor = -minor
		}
		s := fmt.Sprintf("$%s.%02d", thousandSep(minor/100), minor%100)
		if neg {
			return "-" + s
		}
		return s
	default:
		return fmt.Sprintf("%s %s", strings.ToUpper(currency), thousandSep(minor))
	}
}

func thousandSep(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FmtDate formats time in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
	switch strings.ToLower(lang) {
	case "de":
		return t.Format("02.01.2006")
	default:
		return t.Format("Jan 2, 2006")
	}
}
