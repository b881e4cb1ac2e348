// Package ledgerimport turns delimited spreadsheet exports into candidate
// transactions reconciled against the movement-type catalog.
//
// Everything in this package is a pure function of its inputs: callers read
// the file and persist the result.
package ledgerimport

import "strings"

// Tokenize splits one line into its fields. Fields may be wrapped in double
// quotes, "" inside quotes is a literal quote, and delim has no meaning while
// a quote is open. An unterminated quote is closed by the end of the line.
// Tokenize never fails; malformed quoting is read as best it can be.
func Tokenize(line string, delim rune) []string {
	var (
		fields  []string
		field   strings.Builder
		inQuote bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuote && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
				continue
			}
			inQuote = !inQuote
		case r == delim && !inQuote:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	return append(fields, field.String())
}

// DetectDelimiter picks ';' or ',' by counting both in the header line.
// Ties go to ';'.
func DetectDelimiter(header string) rune {
	if strings.Count(header, ";") >= strings.Count(header, ",") {
		return ';'
	}
	return ','
}
