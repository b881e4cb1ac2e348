package ledgerimport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tesoreria/internal/core"
)

// Recognized header names, already normalized.
const (
	HeaderDate            = "fecha"
	HeaderAmount          = "monto"
	HeaderAmountAlt       = "monto2"
	HeaderDetail          = "detalle"
	HeaderCurrency        = "moneda"
	HeaderTypeDescription = "descripcion_tipo_movimiento"
	HeaderType            = "tipo_movimiento"
	HeaderDescription     = "descripcion"
)

// ErrEmptyFile is returned when the content has no header line.
var ErrEmptyFile = errors.New("import file is empty")

// MissingColumnsError aborts an import whose header lacks a mandatory column.
// Headers lists what was found so the export can be fixed.
type MissingColumnsError struct {
	Missing []string
	Headers []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required column(s) %s; detected headers: [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Headers, ", "))
}

// Options tunes a reconciliation run.
type Options struct {
	// BaseCurrency replaces missing or malformed currency codes.
	BaseCurrency string
	// DefaultCenterID is assigned to every row. When empty the first center
	// of the catalog is used.
	DefaultCenterID string
	// Now supplies the processing date for rows without one.
	Now func() time.Time
}

// Result is the outcome of a reconciliation. Imported rows carry no ID; the
// store assigns identity on write.
type Result struct {
	Imported     []core.Transaction
	Attempted    int
	Skipped      int
	Unclassified int
	Delimiter    rune
	Headers      []string
}

type columns struct {
	date, amount, detail, currency, source int
}

// Reconcile parses content and classifies every data row against types.
//
// The header must contain a date column and an amount column; otherwise a
// *MissingColumnsError is returned and nothing is imported. Once the header is
// accepted the run never aborts: rows with a zero or unreadable amount, or
// that fail to decode for any other reason, are counted in Skipped. Rows whose
// description matches no catalog entry are kept with core.UnknownMovementTypeID.
// Every amount is made non-negative; the sign comes from the movement type.
func Reconcile(content string, centers []core.Center, types []core.MovementType, opts Options) (Result, error) {
	lines := splitLines(content)
	if len(lines) == 0 {
		return Result{}, ErrEmptyFile
	}

	header := strings.TrimPrefix(lines[0], "\ufeff")
	delim := DetectDelimiter(header)
	rawHeaders := Tokenize(header, delim)
	headers := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		headers[i] = Normalize(h)
	}

	cols := resolveColumns(headers)
	var missing []string
	if cols.date < 0 {
		missing = append(missing, "Fecha")
	}
	if cols.amount < 0 {
		missing = append(missing, "Monto")
	}
	if len(missing) > 0 {
		return Result{Delimiter: delim, Headers: trimAll(rawHeaders)}, &MissingColumnsError{
			Missing: missing,
			Headers: trimAll(rawHeaders),
		}
	}

	base := opts.BaseCurrency
	if base == "" {
		base = core.DefaultCurrency
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	rc := rowContext{
		cols:       cols,
		delim:      delim,
		base:       base,
		today:      now(),
		centerID:   defaultCenter(centers, opts.DefaultCenterID),
		classifier: NewClassifier(types),
	}

	res := Result{
		Delimiter: delim,
		Headers:   trimAll(rawHeaders),
		Imported:  make([]core.Transaction, 0, len(lines)-1),
	}
	for _, line := range lines[1:] {
		res.Attempted++
		tx, classified, err := rc.decode(line)
		if err != nil {
			res.Skipped++
			continue
		}
		if !classified {
			res.Unclassified++
		}
		res.Imported = append(res.Imported, tx)
	}
	return res, nil
}

type rowContext struct {
	cols       columns
	delim      rune
	base       string
	today      time.Time
	centerID   string
	classifier *Classifier
}

var errZeroAmount = errors.New("zero amount")

func (rc rowContext) decode(line string) (tx core.Transaction, classified bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("decode row: %v", p)
		}
	}()

	fields := Tokenize(line, rc.delim)
	field := func(i int) string {
		if i < 0 || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	amount, err := ParseAmount(field(rc.cols.amount))
	if err != nil {
		return core.Transaction{}, false, err
	}
	if amount.IsZero() {
		return core.Transaction{}, false, errZeroAmount
	}

	detail := field(rc.cols.detail)
	source := field(rc.cols.source)
	if source == "" {
		source = detail
	}

	typeID := core.UnknownMovementTypeID
	if mt, ok := rc.classifier.Classify(source); ok {
		typeID = mt.ID
		classified = true
	}

	return core.Transaction{
		Date:           ParseDate(field(rc.cols.date), rc.today),
		CenterID:       rc.centerID,
		MovementTypeID: typeID,
		Detail:         detail,
		Amount:         amount.Abs(),
		Currency:       ParseCurrency(field(rc.cols.currency), rc.base),
	}, classified, nil
}

func resolveColumns(headers []string) columns {
	cols := columns{
		date:     indexOf(headers, HeaderDate),
		amount:   indexOf(headers, HeaderAmountAlt),
		detail:   indexOf(headers, HeaderDetail),
		currency: indexOf(headers, HeaderCurrency),
		source:   indexOf(headers, HeaderTypeDescription),
	}
	if cols.amount < 0 {
		cols.amount = indexOf(headers, HeaderAmount)
	}
	if cols.source < 0 {
		cols.source = indexOf(headers, HeaderType)
	}
	if cols.source < 0 {
		cols.source = indexOf(headers, HeaderDescription)
	}
	return cols
}

func defaultCenter(centers []core.Center, configured string) string {
	if configured != "" {
		return configured
	}
	if len(centers) > 0 {
		return centers[0].ID
	}
	return ""
}

func splitLines(content string) []string {
	raw := strings.Split(content, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

func indexOf(list []string, name string) int {
	for i, v := range list {
		if v == name {
			return i
		}
	}
	return -1
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
