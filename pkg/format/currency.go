// Package format renders monetary amounts the way Swedish reports print them.
package format

import (
	"strings"

	"github.com/carllingstrom/AI-Delning-sub001/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Currency returns a whole-kronor amount with space-separated thousands and a
// kr suffix (e.g., "-1 234 567 kr").
func Currency(amount float64) string {
	if !mathutil.Finite(amount) {
		return "n/a"
	}
	return formatDecimal(decimal.NewFromFloat(amount), 0) + " kr"
}

// NumericCurrency returns an amount with two decimals, a decimal comma and
// space-separated thousands but no currency suffix (e.g., "-1 234,56").
func NumericCurrency(amount float64) string {
	if !mathutil.Finite(amount) {
		return "n/a"
	}
	return formatDecimal(decimal.NewFromFloat(amount), 2)
}

func formatDecimal(d decimal.Decimal, places int32) string {
	rounded := d.Round(places)
	fixed := rounded.Abs().StringFixed(places)

	intPart, decPart, _ := strings.Cut(fixed, ".")
	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(' ')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	out := intPart
	if decPart != "" {
		out += "," + decPart
	}
	if rounded.IsNegative() {
		out = "-" + out
	}
	return out
}
