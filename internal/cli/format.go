// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatEuro formats a euro amount, dropping decimals as the value grows.
// e.g., 4.5 -> "€4.50", 42.25 -> "€42.3", 1234.4 -> "€1,234"
func FormatEuro(v float64) string {
	if v < 0 {
		return "-" + FormatEuro(-v)
	}
	if v >= 1000 {
		return "€" + FormatNumber(int64(math.Round(v)))
	}
	if v >= 100 {
		return fmt.Sprintf("€%.0f", v)
	}
	if v >= 10 {
		return fmt.Sprintf("€%.1f", v)
	}
	return fmt.Sprintf("€%.2f", v)
}

// FormatDecimal formats an exact balance with two decimals and separators.
func FormatDecimal(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + "€" + s
	}
	return sign + "€" + FormatNumber(n) + "." + frac
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatRatio formats a value that is already a percentage.
func FormatRatio(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDelta formats the change between two amounts with an explicit sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatEuro(delta)
	}
	return "-" + FormatEuro(-delta)
}

// FormatSlope formats a per-month trend.
func FormatSlope(slope float64) string {
	sign := "+"
	if slope < 0 {
		sign = "-"
		slope = -slope
	}
	return sign + FormatEuro(slope) + "/mo"
}
