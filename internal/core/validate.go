package core

import (
	"errors"
	"strings"
)

// Validator turns raw rows into transactions.
type Validator struct {
	categorizer *Categorizer
}

// NewValidator returns a Validator using c for auto-categorization, or the
// default table when c is nil.
func NewValidator(c *Categorizer) *Validator {
	if c == nil {
		c = DefaultCategorizer()
	}
	return &Validator{categorizer: c}
}

// Categorizer exposes the table used for auto-categorization.
func (v *Validator) Categorizer() *Categorizer {
	return v.categorizer
}

// Validate parses raw into a Transaction. An explicit category is trimmed and
// title-cased; otherwise it is derived from the description. The category is
// not normalized here, see Prepare.
func (v *Validator) Validate(raw RawRow) (Transaction, error) {
	date, err := ParseDate(raw.Date)
	if err != nil {
		return Transaction{}, &Error{Kind: KindRowValidation, Err: ErrInvalidDate}
	}

	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		if errors.Is(err, errAmountRange) {
			return Transaction{}, &Error{Kind: KindRowValidation, Err: errAmountRange}
		}
		return Transaction{}, &Error{Kind: KindRowValidation, Err: ErrAmountNotNumeric}
	}

	desc := strings.TrimSpace(raw.Description)
	category := strings.TrimSpace(raw.Category)
	if category != "" {
		category = TitleCase(category)
	} else {
		category = v.categorizer.Categorize(desc)
	}

	return Transaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Category:    category,
	}, nil
}

// Prepare validates raw and normalizes the resulting category, producing a
// record ready for storage.
func (v *Validator) Prepare(raw RawRow) (Transaction, error) {
	t, err := v.Validate(raw)
	if err != nil {
		return Transaction{}, err
	}
	t.Category = NormalizeCategory(t.Category)
	return t, nil
}
