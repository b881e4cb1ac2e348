package core

import "github.com/shopspring/decimal"

// Totals accumulates income and expense for one currency. Balance is always
// derived, so Income - Expense = Balance holds by construction.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// Add books an amount on the side given by category and refreshes the balance.
func (t *Totals) Add(c Category, amount decimal.Decimal) {
	if c == Income {
		t.Income = t.Income.Add(amount)
	} else {
		t.Expense = t.Expense.Add(amount)
	}
	t.Balance = t.Income.Sub(t.Expense)
}

// Merge adds other into t.
func (t *Totals) Merge(other Totals) {
	t.Income = t.Income.Add(other.Income)
	t.Expense = t.Expense.Add(other.Expense)
	t.Balance = t.Income.Sub(t.Expense)
}

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the Spanish name of month (1-12), or "" when out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// PeriodLabel turns "2024-03" into "Mar 2024". Unparseable periods are returned as-is.
func PeriodLabel(period string) string {
	if len(period) != 7 || period[4] != '-' {
		return period
	}
	m := int(period[5]-'0')*10 + int(period[6]-'0')
	name := MonthName(m)
	if name == "" {
		return period
	}
	return name[:3] + " " + period[:4]
}
