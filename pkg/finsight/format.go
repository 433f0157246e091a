package finsight

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// formatUSD renders a decimal as "$1,234,567" (rounded to whole dollars,
// negatives as "$-1,234").
func formatUSD(d decimal.Decimal) string {
	return "$" + groupDigits(d.Round(0).String())
}

// formatUSDFloat is formatUSD for already-derived float values.
func formatUSDFloat(f float64) string {
	return formatUSD(decimal.NewFromFloat(f))
}

// formatPercent renders a ratio percentage as "11.1%".
func formatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f)
}

// round1 rounds to one decimal place for percent fields.
func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// round2 rounds to two decimal places for statistics fields.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// groupDigits inserts thousands separators into a plain integer string.
func groupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")

	n := len(digits)
	if n <= 3 {
		if neg {
			return "-" + digits
		}
		return digits
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
