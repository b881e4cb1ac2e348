package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"0", "0,00"},
		{"0.1", "0,10"},
		{"12.345", "12,35"},
		{"999", "999,00"},
		{"1000", "1.000,00"},
		{"1500", "1.500,00"},
		{"1234567.891", "1.234.567,89"},
		{"-1234.5", "-1.234,50"},
	}
	for _, tc := range cases {
		got := FormatAmount(decimal.RequireFromString(tc.in))
		if got != tc.out {
			t.Fatalf("%s expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestFormatAmountOrBlank(t *testing.T) {
	if got := FormatAmountOrBlank(decimal.Zero); got != "" {
		t.Fatalf("expected blank for zero, got %q", got)
	}
	if got := FormatAmountOrBlank(decimal.NewFromInt(5)); got != "5,00" {
		t.Fatalf("expected 5,00, got %q", got)
	}
}
