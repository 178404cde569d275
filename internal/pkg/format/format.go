// Package format holds the display formatting helpers shared by the
// contribute, account and admin pages: currency from minor units, whole-dollar
// pledge amounts and short local dates.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Cents renders minor-currency units as "$12.34". Negative amounts keep the
// sign in front of the currency symbol.
func Cents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, groupThousands(cents/100), cents%100)
}

// Dollars0 renders a whole-dollar amount as "$50" (no decimals). Fractional
// input is rounded, matching how pledge amounts are displayed.
func Dollars0(dollars float64) string {
	n := int64(math.Round(dollars))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return sign + "$" + groupThousands(n)
}

// ParseDollarsToCents converts a free-form dollar string ("$12.50", "12,50" is
// not supported, "12.5") to cents. Malformed input yields 0.
func ParseDollarsToCents(input string) int64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, input)
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int64(math.Round(n * 100))
}

// LocalDate renders a unix-seconds timestamp as a short date ("Jan 2, 2006").
// A zero or negative timestamp has no meaningful date and renders empty.
func LocalDate(unix int64) string {
	if unix <= 0 {
		return ""
	}
	return time.Unix(unix, 0).Format("Jan 2, 2006")
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
