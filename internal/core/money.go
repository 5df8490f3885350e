// Package core provides money parsing and handling utilities.
//
// Amounts are stored as integer cents. Parsing goes through shopspring/decimal
// so that inputs like "23.505" or "1e3" are read exactly before rounding.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmount bounds parsed values so cents always fit in an int64.
var maxAmount = decimal.New(1, 15)

var errAmountRange = errors.New("amount out of range")

// Amount is a nullable money value. The zero value is null (unknown amount),
// which is distinct from a known zero.
type Amount struct {
	Cents int64
	Valid bool
}

// NewAmount returns a known amount of the given cents.
func NewAmount(cents int64) Amount {
	return Amount{Cents: cents, Valid: true}
}

// IsMissingAmount reports whether raw is a missing-value marker rather than
// something that should be parsed as a number.
func IsMissingAmount(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "-", "nan", "null", "none", "na", "n/a", "<na>":
		return true
	}
	return false
}

// ParseAmount converts a decimal string to an Amount rounded half away from
// zero to the cent. Missing-value markers produce a null Amount.
//
// Examples:
//
//	ParseAmount("23.50")  -> {2350, true}
//	ParseAmount("-4.005") -> {-401, true}
//	ParseAmount("-")      -> {0, false}
func ParseAmount(raw string) (Amount, error) {
	if IsMissingAmount(raw) {
		return Amount{}, nil
	}
	s := strings.TrimPrefix(strings.TrimSpace(raw), "+")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return Amount{}, errAmountRange
	}
	return NewAmount(d.Shift(2).Round(0).IntPart()), nil
}

// Decimal returns the amount in currency units. Null amounts return zero.
func (a Amount) Decimal() decimal.Decimal {
	if !a.Valid {
		return decimal.Zero
	}
	return decimal.New(a.Cents, -2)
}

// String renders the amount as a plain decimal ("23.5"), or "-" when null.
func (a Amount) String() string {
	if !a.Valid {
		return "-"
	}
	return a.Decimal().String()
}

// MarshalJSON writes a JSON number, or null for unknown amounts.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(a.Decimal().String()), nil
}

// Percent returns part/total*100 rounded to two places, or zero when total
// is not positive.
func Percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	p := decimal.NewFromInt(part).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(total)).Round(2)
	return p.InexactFloat64()
}
