// Package report builds the monthly financial report as a renderer-agnostic
// document: titled sections of labelled rows with numeric totals.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tesoreria/internal/core"
	"tesoreria/internal/ledgerimport"
)

const (
	DefaultTitle      = "Informe financiero mensual"
	DefaultOtherTitle = "Otros gastos"
	UnclassifiedLabel = "Sin clasificar"

	incomeTitle  = "INGRESOS"
	expenseTitle = "EGRESOS"
	resultLabel  = "RESULTADO DEL MES"
)

// Group is one expense sub-section. Key is compared, normalized, against
// MovementType.Subcategory; Title defaults to Key.
type Group struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// GroupsFromLabels builds groups whose title is the label itself.
func GroupsFromLabels(labels []string) []Group {
	out := make([]Group, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, Group{Key: l, Title: l})
		}
	}
	return out
}

// Input is everything Compose needs. Transactions outside the month, in
// another currency, or flagged ExcludeFromReport are ignored.
type Input struct {
	Year          int
	Month         int
	Currency      string
	BaseCurrency  string
	Transactions  []core.Transaction
	Types         []core.MovementType
	ExpenseGroups []Group
	Organization  string
	Center        string
	Title         string
	OtherTitle    string
}

type (
	Row struct {
		MovementTypeID string          `json:"movementTypeId,omitempty"`
		Label          string          `json:"label"`
		Amount         decimal.Decimal `json:"amount"`
		AmountText     string          `json:"amountText"`
	}

	Section struct {
		Title       string          `json:"title"`
		Rows        []Row           `json:"rows,omitempty"`
		Subsections []Section       `json:"subsections,omitempty"`
		TotalLabel  string          `json:"totalLabel"`
		Total       decimal.Decimal `json:"total"`
		TotalText   string          `json:"totalAmountText"`
	}

	Signature struct {
		Role  string `json:"role"`
		Label string `json:"label"`
	}

	Document struct {
		Title        string      `json:"title"`
		Period       string      `json:"period"`
		MonthName    string      `json:"monthName"`
		Year         int         `json:"year"`
		Month        int         `json:"month"`
		Organization string      `json:"organization"`
		Center       string      `json:"center"`
		Currency     string      `json:"currency"`
		Sections     []Section   `json:"sections"`
		Result       Row         `json:"result"`
		Signatures   []Signature `json:"signatures"`
	}
)

// Income returns the income section, or nil if the document has none.
func (d Document) Income() *Section { return d.section(incomeTitle) }

// Expense returns the expense section, or nil if the document has none.
func (d Document) Expense() *Section { return d.section(expenseTitle) }

func (d Document) section(title string) *Section {
	for i := range d.Sections {
		if d.Sections[i].Title == title {
			return &d.Sections[i]
		}
	}
	return nil
}

// Compose builds the report for one calendar month. It performs no I/O.
//
// The income section lists every INCOME type in catalog order. The expense
// section holds one sub-section per group, in the given order, plus a trailing
// "other" sub-section for EXPENSE types whose subcategory matches no group.
// The "other" sub-section is always present, even with no rows.
// Amounts for transactions whose movement type is not in the catalog are
// shown as an unclassified row of the "other" sub-section, the same way the
// ledger counts them as expenses. Zero amounts render as blank text.
func Compose(in Input) Document {
	base := in.BaseCurrency
	if base == "" {
		base = core.DefaultCurrency
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = base
	}
	period := fmt.Sprintf("%04d-%02d", in.Year, in.Month)

	known := make(map[string]bool, len(in.Types))
	for _, mt := range in.Types {
		known[mt.ID] = true
	}
	sums := make(map[string]decimal.Decimal)
	unclassified := decimal.Zero
	for _, tx := range in.Transactions {
		if tx.ExcludeFromReport || tx.Period() != period || tx.CurrencyOr(base) != currency {
			continue
		}
		if !known[tx.MovementTypeID] {
			unclassified = unclassified.Add(tx.Amount)
			continue
		}
		sums[tx.MovementTypeID] = sums[tx.MovementTypeID].Add(tx.Amount)
	}

	income := Section{Title: incomeTitle, TotalLabel: "TOTAL " + incomeTitle}
	groupIdx := make(map[string]int, len(in.ExpenseGroups))
	subs := make([]Section, len(in.ExpenseGroups))
	for i, g := range in.ExpenseGroups {
		title := g.Title
		if title == "" {
			title = g.Key
		}
		subs[i] = Section{Title: title, TotalLabel: "TOTAL " + strings.ToUpper(title)}
		if key := ledgerimport.Normalize(g.Key); key != "" {
			if _, dup := groupIdx[key]; !dup {
				groupIdx[key] = i
			}
		}
	}
	otherTitle := in.OtherTitle
	if otherTitle == "" {
		otherTitle = DefaultOtherTitle
	}
	other := Section{Title: otherTitle, TotalLabel: "TOTAL " + strings.ToUpper(otherTitle)}

	for _, mt := range in.Types {
		r := newRow(mt.ID, mt.Name, sums[mt.ID])
		switch mt.Category {
		case core.Income:
			income.add(r)
		case core.Expense:
			if i, ok := groupIdx[ledgerimport.Normalize(mt.Subcategory)]; ok {
				subs[i].add(r)
			} else {
				other.add(r)
			}
		}
	}
	if !unclassified.IsZero() {
		other.add(newRow(core.UnknownMovementTypeID, UnclassifiedLabel, unclassified))
	}
	subs = append(subs, other)

	expense := Section{Title: expenseTitle, TotalLabel: "TOTAL " + expenseTitle, Subsections: subs}
	for _, s := range subs {
		expense.Total = expense.Total.Add(s.Total)
	}
	income.finish()
	expense.finish()
	for i := range expense.Subsections {
		expense.Subsections[i].finish()
	}

	title := in.Title
	if title == "" {
		title = DefaultTitle
	}
	balance := income.Total.Sub(expense.Total)
	return Document{
		Title:        title,
		Period:       period,
		MonthName:    core.MonthName(in.Month),
		Year:         in.Year,
		Month:        in.Month,
		Organization: in.Organization,
		Center:       in.Center,
		Currency:     currency,
		Sections:     []Section{income, expense},
		Result:       Row{Label: resultLabel, Amount: balance, AmountText: core.FormatAmount(balance)},
		Signatures: []Signature{
			{Role: "treasurer", Label: "Tesorero"},
			{Role: "pastor", Label: "Pastor"},
		},
	}
}

func newRow(id, label string, amount decimal.Decimal) Row {
	return Row{MovementTypeID: id, Label: label, Amount: amount, AmountText: core.FormatAmountOrBlank(amount)}
}

func (s *Section) add(r Row) {
	s.Rows = append(s.Rows, r)
	s.Total = s.Total.Add(r.Amount)
}

func (s *Section) finish() {
	s.TotalText = core.FormatAmount(s.Total)
}
