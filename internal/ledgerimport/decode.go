package ledgerimport

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tesoreria/internal/core"
)

const isoDate = "2006-01-02"

// ParseAmount reads a locale-ambiguous amount.
//
// Currency symbols, letters and spaces are dropped first. When both '.' and ','
// remain, '.' is the thousands separator and ',' the decimal separator; a lone
// ',' is a decimal separator; anything else is parsed as is.
//
// Examples:
//
//	ParseAmount("1.234,50")  -> 1234.50
//	ParseAmount("$ 1234.50") -> 1234.50
//	ParseAmount("1234,50")   -> 1234.50
//	ParseAmount("abc")       -> ErrInvalidAmount
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		}
		return -1
	}, raw)
	if s == "" || s == "-" {
		return decimal.Zero, core.ErrInvalidAmount
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, core.ErrInvalidAmount
	}
	return d, nil
}

// ParseDate converts "d/m/yyyy" into "yyyy-mm-dd", zero-padding day and month.
// An empty value becomes the processing date. Values without '/' are returned
// trimmed and unchanged. The calendar is not checked: "31/02/2024" yields
// "2024-02-31".
func ParseDate(raw string, now time.Time) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return now.Format(isoDate)
	}
	// Drop a trailing time such as "05/03/2024 10:30".
	if f := strings.Fields(s); len(f) > 0 {
		s = f[0]
	}
	if !strings.Contains(s, "/") {
		return s
	}
	parts := strings.Split(s, "/")
	day := partAt(parts, 0)
	month := partAt(parts, 1)
	year := partAt(parts, 2)
	return year + "-" + pad2(month) + "-" + pad2(day)
}

// ParseCurrency uppercases raw, keeps only letters and falls back to base
// unless exactly three letters remain.
func ParseCurrency(raw, base string) string {
	s := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r - 'a' + 'A'
		}
		if r >= 'A' && r <= 'Z' {
			return r
		}
		return -1
	}, raw)
	if len(s) != 3 {
		return base
	}
	return s
}

func partAt(parts []string, i int) string {
	if i >= len(parts) {
		return ""
	}
	return strings.TrimSpace(parts[i])
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
