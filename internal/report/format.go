package report

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatInt formats an integer with comma separators. Negative values keep
// the sign in front of the grouped digits.
func FormatInt(n int64) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatRate formats a growth rate to 4 decimal places.
func FormatRate(r float64) string {
	return fmt.Sprintf("%.4f", r)
}
