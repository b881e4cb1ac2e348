package ledgerimport

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tesoreria/internal/core"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1.234,50", "1234.50", true},
		{"1234.50", "1234.50", true},
		{"1234,50", "1234.50", true},
		{"1.500,00", "1500", true},
		{"$ 1.234.567,89", "1234567.89", true},
		{"ARS 12", "12", true},
		{" 7 500,25 ", "7500.25", true},
		{"-350,00", "-350", true},
		{"0", "0", true},
		{"", "", false},
		{"abc", "", false},
		{"-", "", false},
		{"1,2,3", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %s (err=%v)", tc.in, got, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 7, 9, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		in   string
		want string
	}{
		{"05/03/2024", "2024-03-05"},
		{"5/3/2024", "2024-03-05"},
		{"31/02/2024", "2024-02-31"},
		{"05/03/2024 10:30", "2024-03-05"},
		{"", "2024-07-09"},
		{"   ", "2024-07-09"},
		{"2024-01-15", "2024-01-15"},
	}
	for _, tc := range cases {
		if got := ParseDate(tc.in, now); got != tc.want {
			t.Fatalf("ParseDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ARS", "ARS"},
		{"usd", "USD"},
		{" u$d ", "ARS"},
		{"US$D", "USD"},
		{"", "ARS"},
		{"EURO", "ARS"},
		{"$", "ARS"},
	}
	for _, tc := range cases {
		if got := ParseCurrency(tc.in, "ARS"); got != tc.want {
			t.Fatalf("ParseCurrency(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
