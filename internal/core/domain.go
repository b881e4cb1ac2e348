package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  Category = "INCOME"
	Expense Category = "EXPENSE"
)

// UnknownMovementTypeID tags imported rows whose description matched no catalog entry.
const UnknownMovementTypeID = "unknown"

// DefaultCurrency is the base currency used when none is configured.
const DefaultCurrency = "ARS"

type (
	Category string

	// MovementType is a catalog entry. Subcategory is only used to group
	// expense rows in the monthly report.
	MovementType struct {
		ID          string   `json:"id" yaml:"id"`
		Name        string   `json:"name" yaml:"name"`
		Category    Category `json:"category" yaml:"category"`
		Subcategory string   `json:"subcategory,omitempty" yaml:"subcategory"`
	}

	Center struct {
		ID   string `json:"id" yaml:"id"`
		Name string `json:"name" yaml:"name"`
	}

	Transaction struct {
		ID                string          `json:"id"`
		Date              string          `json:"date"` // YYYY-MM-DD
		CenterID          string          `json:"centerId"`
		MovementTypeID    string          `json:"movementTypeId"`
		Detail            string          `json:"detail"`
		Amount            decimal.Decimal `json:"amount"`
		Currency          string          `json:"currency"`
		Attachment        string          `json:"attachment,omitempty"`
		ExcludeFromReport bool            `json:"excludeFromPdf,omitempty"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrEmptyDate        = errors.New("empty date")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyID          = errors.New("empty id")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrEmptyMovementRef = errors.New("empty movement type reference")
)

// IsValid reports whether c is one of the two known categories.
func (c Category) IsValid() bool {
	return c == Income || c == Expense
}

// ParseCategory accepts the category in any case, e.g. "income" or "Expense".
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (m MovementType) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if !m.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, m.Category)
	}
	return nil
}

func (c Center) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Validate checks a transaction before it is written. The currency must be one
// of the accepted codes; an empty allowed list accepts any 3-letter code.
func (t Transaction) Validate(allowed []string) error {
	if strings.TrimSpace(t.Date) == "" {
		return ErrEmptyDate
	}
	if strings.TrimSpace(t.MovementTypeID) == "" {
		return ErrEmptyMovementRef
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if len(t.Currency) != 3 {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, t.Currency)
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, code := range allowed {
		if strings.EqualFold(code, t.Currency) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q not in %v", ErrInvalidCurrency, t.Currency, allowed)
}

// Period returns the YYYY-MM part of the transaction date. Malformed dates
// shorter than seven characters are returned unchanged.
func (t Transaction) Period() string {
	return PeriodOf(t.Date)
}

// PeriodOf returns the YYYY-MM prefix of an ISO date.
func PeriodOf(date string) string {
	date = strings.TrimSpace(date)
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// CurrencyOr returns the transaction currency, or base for legacy records without one.
func (t Transaction) CurrencyOr(base string) string {
	if c := strings.TrimSpace(t.Currency); c != "" {
		return strings.ToUpper(c)
	}
	return base
}

// Catalog is a snapshot of the reference data the engine works against.
type Catalog struct {
	Centers       []Center       `json:"centers" yaml:"centers"`
	MovementTypes []MovementType `json:"movementTypes" yaml:"movement_types"`
}

// MovementTypeByID builds a lookup table keyed by movement type ID.
func (c Catalog) MovementTypeByID() map[string]MovementType {
	out := make(map[string]MovementType, len(c.MovementTypes))
	for _, mt := range c.MovementTypes {
		out[mt.ID] = mt
	}
	return out
}

// CenterName returns the name of the center with the given ID, or "" if unknown.
func (c Catalog) CenterName(id string) string {
	for _, ct := range c.Centers {
		if ct.ID == id {
			return ct.Name
		}
	}
	return ""
}
