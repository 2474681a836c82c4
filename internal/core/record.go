package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the on-disk and display form of a record date.
const DateLayout = "2006-01-02"

// Amounts must stay below 10^15 with at most 30 decimal places, which keeps
// formatting and arithmetic on stored values small.
const (
	maxAmountDigits = 15
	maxAmountScale  = 30
)

var maxAmount = decimal.New(1, maxAmountDigits)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind tells whether a record adds to or subtracts from the balance.
	Kind string

	// Record is one ledger entry. Fields are unexported so a Record cannot be
	// changed after NewRecord returns it.
	Record struct {
		kind     Kind
		category string
		amount   decimal.Decimal
		date     string
	}
)

// ParseKind accepts "income" or "expense" in any letter case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", &ValidationError{Field: "kind", Value: s, Err: ErrInvalidKind}
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case Income, Expense:
		return true
	default:
		return false
	}
}

// Title returns the capitalised form used for display.
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

func (k Kind) String() string {
	return string(k)
}

// NewRecord builds a record dated today in local time.
func NewRecord(kind Kind, category string, amount decimal.Decimal) (Record, error) {
	return NewRecordOn(kind, category, amount, time.Now().Format(DateLayout))
}

// NewRecordOn builds a record with an explicit YYYY-MM-DD date. The date is
// kept exactly as given.
func NewRecordOn(kind Kind, category string, amount decimal.Decimal, date string) (Record, error) {
	if !kind.Valid() {
		return Record{}, &ValidationError{Field: "kind", Value: string(kind), Err: ErrInvalidKind}
	}
	if strings.TrimSpace(category) == "" {
		return Record{}, &ValidationError{Field: "category", Value: category, Err: ErrEmptyCategory}
	}
	if err := checkAmount(amount); err != nil {
		return Record{}, err
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return Record{}, &ValidationError{Field: "date", Value: date, Err: ErrInvalidDate}
	}
	return Record{
		kind:     kind,
		category: category,
		amount:   amount,
		date:     date,
	}, nil
}

// checkAmount runs before anything formats the amount: String on a value like
// 1e900000000 would build a string of that many digits.
func checkAmount(amount decimal.Decimal) error {
	exp := amount.Exponent()
	if exp > maxAmountDigits || exp < -maxAmountScale {
		value := fmt.Sprintf("%se%d", amount.Coefficient().String(), exp)
		return &ValidationError{Field: "amount", Value: value, Err: ErrInvalidAmount}
	}
	if amount.IsNegative() || amount.Cmp(maxAmount) >= 0 {
		return &ValidationError{Field: "amount", Value: amount.String(), Err: ErrInvalidAmount}
	}
	return nil
}

func (r Record) Kind() Kind              { return r.kind }
func (r Record) Category() string        { return r.category }
func (r Record) Amount() decimal.Decimal { return r.amount }
func (r Record) Date() string            { return r.date }

// IsExpense is shorthand for r.Kind() == Expense.
func (r Record) IsExpense() bool { return r.kind == Expense }

// Signed returns the amount as it contributes to the balance.
func (r Record) Signed() decimal.Decimal {
	if r.kind == Expense {
		return r.amount.Neg()
	}
	return r.amount
}

// Equal compares all fields; amounts are compared numerically so 1.5 and
// 1.50 are the same amount.
func (r Record) Equal(o Record) bool {
	return r.kind == o.kind &&
		r.category == o.category &&
		r.date == o.date &&
		r.amount.Equal(o.amount)
}

// String renders "<date> - <Kind>: <category> - $<amount>".
func (r Record) String() string {
	return fmt.Sprintf("%s - %s: %s - %s", r.date, r.kind.Title(), r.category, FormatAmount(r.amount))
}

// FormatAmount renders an amount with a dollar sign and two decimals.
func FormatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
