// Package core holds the treasury domain types shared by the import, ledger
// and report packages.
//
// This file contains the money formatting helpers used for report rows and
// dashboard labels.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders d with two decimals, "." as thousands separator and
// "," as decimal separator.
//
// Examples:
//
//	FormatAmount(1500)      -> "1.500,00"
//	FormatAmount(-1234.5)   -> "-1.234,50"
//	FormatAmount(0.1)       -> "0,10"
func FormatAmount(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte('.')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// FormatAmountOrBlank is FormatAmount except that zero renders as "".
func FormatAmountOrBlank(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return FormatAmount(d)
}
