package core

import "time"

// monthNames are the short Portuguese labels used by the monthly chart.
var monthNames = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// MonthName returns the short label for month 1-12, or "" when out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// Filter narrows aggregation and list queries. Zero values disable a clause.
// Categories is a membership set used by listings; Category is the exact
// single label used by aggregations.
type Filter struct {
	UserID     int64
	Category   string
	Categories []string
	From       *time.Time
	To         *time.Time
	MinAmount  *Amount
	MaxAmount  *Amount
	Search     string
}

// CategoryTotal is one row of the grouped-by-category chart.
type CategoryTotal struct {
	Category string
	Total    Amount
	Percent  float64
}

// MonthTotal is one row of the grouped-by-month chart.
type MonthTotal struct {
	Month int
	Total Amount
}

// MonthlySummary holds months with data, ascending, and their overall sum.
type MonthlySummary struct {
	Months []MonthTotal
	Total  Amount
}

// Spend identifies a single record in the insights output.
type Spend struct {
	Description string
	Amount      Amount
}

// Insights summarizes a user's filtered records. Pointer fields are nil when
// the set is empty.
type Insights struct {
	TopCategory      *string
	TopCategoryTotal Amount
	Average          Amount
	Largest          *Spend
	Smallest         *Spend
	BestDayOfMonth   *int
}

// WithPercentages fills Percent for every row using the sum of all rows.
func WithPercentages(rows []CategoryTotal) []CategoryTotal {
	var total int64
	for _, r := range rows {
		total += r.Total.Cents
	}
	for i := range rows {
		rows[i].Percent = Percent(rows[i].Total.Cents, total)
	}
	return rows
}
