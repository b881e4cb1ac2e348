// Package ledger groups transactions into per-currency and per-month totals
// for the dashboard.
package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"tesoreria/internal/core"
)

// Mode selects how Aggregate groups its input.
type Mode string

const (
	ModeByMonth Mode = "month"
	ModeByRange Mode = "range"
)

// ParseMode accepts "month"/"by-month" and "range"/"by-explicit-range".
// Anything else falls back to ModeByMonth.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "range", "by-range", "by-explicit-range":
		return ModeByRange
	default:
		return ModeByMonth
	}
}

// Query describes one aggregation. From and To are inclusive ISO dates and may
// be empty.
type Query struct {
	Mode         Mode
	From         string
	To           string
	BaseCurrency string
}

// MonthCurrencyGroup is the ledger group for one calendar month and currency.
type MonthCurrencyGroup struct {
	Period       string             `json:"period"` // YYYY-MM
	Currency     string             `json:"currency"`
	Transactions []core.Transaction `json:"transactions"`
	core.Totals
}

// PeriodPoint is one bar of the dashboard chart.
type PeriodPoint struct {
	Period      string          `json:"period"`
	PeriodLabel string          `json:"periodLabel"`
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
}

// Summary is the result of Aggregate. Groups is only filled in ModeByMonth and
// is ordered by period, then currency.
type Summary struct {
	Mode   Mode                   `json:"mode"`
	Totals map[string]core.Totals `json:"totals"`
	Groups []MonthCurrencyGroup   `json:"groups,omitempty"`
}

// Aggregate totals txs per currency, resolving each transaction's sign from
// its movement type at call time. A reference to a movement type missing from
// the catalog counts as an expense, and a missing currency is read as the base
// currency.
func Aggregate(txs []core.Transaction, types []core.MovementType, q Query) Summary {
	base := q.BaseCurrency
	if base == "" {
		base = core.DefaultCurrency
	}
	categories := make(map[string]core.Category, len(types))
	for _, mt := range types {
		categories[mt.ID] = mt.Category
	}

	sum := Summary{
		Mode:   q.Mode,
		Totals: make(map[string]core.Totals),
	}
	if sum.Mode == "" {
		sum.Mode = ModeByMonth
	}

	type groupKey struct{ period, currency string }
	groups := make(map[groupKey]*MonthCurrencyGroup)

	for _, tx := range txs {
		if !inRange(tx.Date, q.From, q.To) {
			continue
		}
		cur := tx.CurrencyOr(base)
		cat, ok := categories[tx.MovementTypeID]
		if !ok {
			cat = core.Expense
		}

		tot := sum.Totals[cur]
		tot.Add(cat, tx.Amount)
		sum.Totals[cur] = tot

		if sum.Mode != ModeByMonth {
			continue
		}
		key := groupKey{period: tx.Period(), currency: cur}
		g, ok := groups[key]
		if !ok {
			g = &MonthCurrencyGroup{Period: key.period, Currency: cur}
			groups[key] = g
		}
		g.Transactions = append(g.Transactions, tx)
		g.Add(cat, tx.Amount)
	}

	if len(groups) > 0 {
		sum.Groups = make([]MonthCurrencyGroup, 0, len(groups))
		for _, g := range groups {
			sum.Groups = append(sum.Groups, *g)
		}
		sort.Slice(sum.Groups, func(i, j int) bool {
			if sum.Groups[i].Period != sum.Groups[j].Period {
				return sum.Groups[i].Period < sum.Groups[j].Period
			}
			return sum.Groups[i].Currency < sum.Groups[j].Currency
		})
	}
	return sum
}

// Chart returns the chronological income/expense series of one currency.
func (s Summary) Chart(currency string) []PeriodPoint {
	points := make([]PeriodPoint, 0, len(s.Groups))
	for _, g := range s.Groups {
		if g.Currency != currency {
			continue
		}
		points = append(points, PeriodPoint{
			Period:      g.Period,
			PeriodLabel: core.PeriodLabel(g.Period),
			Income:      g.Income,
			Expense:     g.Expense,
		})
	}
	return points
}

// Currencies lists the currency codes present in the summary, sorted.
func (s Summary) Currencies() []string {
	out := make([]string, 0, len(s.Totals))
	for c := range s.Totals {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Periods lists the distinct periods of the monthly groups in order.
func (s Summary) Periods() []string {
	var out []string
	for _, g := range s.Groups {
		if len(out) == 0 || out[len(out)-1] != g.Period {
			out = append(out, g.Period)
		}
	}
	return out
}

// inRange compares ISO dates as strings so malformed dates never panic.
func inRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}
