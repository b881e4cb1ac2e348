package google

import (
	"fmt"

	"tesoreria/internal/report"
)

// BuildReportValues lays the document out as rows of at most four cells.
// Column A holds section titles and totals, B the row labels and C the
// amounts. Amounts are written as the formatted text of the document so the
// sheet matches the printed report exactly.
func BuildReportValues(doc report.Document) [][]any {
	var rows [][]any
	add := func(cells ...any) { rows = append(rows, cells) }

	add(doc.Title)
	if doc.Organization != "" {
		add(doc.Organization)
	}
	if doc.Center != "" {
		add("Centro", doc.Center)
	}
	add("Período", fmt.Sprintf("%s %d", doc.MonthName, doc.Year))
	add("Moneda", doc.Currency)

	for _, s := range doc.Sections {
		add("")
		add(s.Title)
		writeRows(add, s.Rows)
		for _, sub := range s.Subsections {
			add("", sub.Title)
			writeRows(add, sub.Rows)
			add("", sub.TotalLabel, sub.TotalText)
		}
		add(s.TotalLabel, "", s.TotalText)
	}

	add("")
	add(doc.Result.Label, "", doc.Result.AmountText)

	if len(doc.Signatures) > 0 {
		add("")
		add("")
		sig := make([]any, 0, len(doc.Signatures)*2)
		for i, s := range doc.Signatures {
			if i > 0 {
				sig = append(sig, "")
			}
			sig = append(sig, s.Label)
		}
		if len(sig) > 4 {
			sig = sig[:4]
		}
		add(sig...)
	}
	return rows
}

func writeRows(add func(...any), rows []report.Row) {
	for _, r := range rows {
		add("", r.Label, r.AmountText)
	}
}
