package monitor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ConvertPercent turns a "<count>/<total>" progress value into a percentage
// with two decimals, e.g. "12345/67890" becomes "18.18%". Whitespace around
// either number is ignored. Numbers are unsigned decimals: digits and at
// most one point. ok is false when s does not have that shape, the total is
// zero, or the result is not finite.
func ConvertPercent(s string) (string, bool) {
	count, total, found := strings.Cut(s, "/")
	if !found {
		return "", false
	}

	a, ok := parseDecimal(count)
	if !ok {
		return "", false
	}
	b, ok := parseDecimal(total)
	if !ok || b == 0 {
		return "", false
	}

	pct := a / b * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "", false
	}
	return fmt.Sprintf("%.2f%%", pct), true
}

// parseDecimal accepts only [0-9.] so ParseFloat's signs, exponents, hex
// and underscore forms are rejected.
func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
