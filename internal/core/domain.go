package core

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only accepted calendar date format, on input and output.
const DateLayout = "2006-01-02"

// FallbackCategory is assigned when no keyword matches a description.
const FallbackCategory = "outros"

type (
	Date struct {
		time.Time
	}

	// Transaction is a validated financial record owned by a single user.
	Transaction struct {
		ID          int64
		UserID      int64
		Date        Date
		Description string
		Amount      Amount
		Category    string
	}

	// RawRow is an unvalidated tuple produced by an importer. Line is the
	// 1-based position used in user-facing error messages.
	RawRow struct {
		Line        int
		Date        string
		Description string
		Amount      string
		Category    string
	}

	// RowError ties a validation reason to the row that produced it.
	RowError struct {
		Line   int
		Reason string
	}

	// BatchResult collects the outcome of a single import call. A batch with
	// any error must not be persisted.
	BatchResult struct {
		Records []Transaction
		Errors  []RowError
	}

	User struct {
		ID           int64
		Username     string
		PasswordHash string
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (e RowError) String() string {
	return "Linha " + strconv.Itoa(e.Line) + ": " + e.Reason
}

// OK reports whether the batch can be committed.
func (b BatchResult) OK() bool {
	return len(b.Errors) == 0
}

// Details renders every row error as "Linha N: reason".
func (b BatchResult) Details() []string {
	out := make([]string, 0, len(b.Errors))
	for _, e := range b.Errors {
		out = append(out, e.String())
	}
	return out
}
