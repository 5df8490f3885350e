package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"gastos/internal/core"
)

// categoryMatch selects how Filter categories turn into SQL. Listings accept
// a set of labels, aggregations a single exact label.
type categoryMatch int

const (
	matchMembership categoryMatch = iota
	matchExact
)

// whereClause builds the conditions shared by listing and aggregation
// queries. The clause always starts with the user scope.
func whereClause(f core.Filter, match categoryMatch) (string, []any) {
	conds := []string{"user_id = ?"}
	args := []any{f.UserID}

	switch match {
	case matchExact:
		if c := strings.ToLower(strings.TrimSpace(f.Category)); c != "" {
			conds = append(conds, "lower(category) = ?")
			args = append(args, c)
		}
	case matchMembership:
		var labels []string
		for _, c := range f.Categories {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				labels = append(labels, c)
			}
		}
		if len(labels) > 0 {
			conds = append(conds, "lower(category) IN ("+placeholders(len(labels))+")")
			for _, c := range labels {
				args = append(args, c)
			}
		}
	}

	if f.From != nil {
		conds = append(conds, "date >= ?")
		args = append(args, f.From.Format(core.DateLayout))
	}
	if f.To != nil {
		conds = append(conds, "date <= ?")
		args = append(args, f.To.Format(core.DateLayout))
	}
	if f.MinAmount != nil && f.MinAmount.Valid {
		conds = append(conds, "amount_cents >= ?")
		args = append(args, f.MinAmount.Cents)
	}
	if f.MaxAmount != nil && f.MaxAmount.Valid {
		conds = append(conds, "amount_cents <= ?")
		args = append(args, f.MaxAmount.Cents)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		conds = append(conds, `lower(description) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(s))+"%")
	}
	return strings.Join(conds, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ListTransactions returns the user's records matching f, oldest first.
// Categories in f are a membership set.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	where, args := whereClause(f, matchMembership)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE "+where+" ORDER BY date, id", args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		row, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t, err := transactionToCore(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SumByCategory groups known amounts by category, largest first, with each
// category's share of the filtered total.
func (r *SQLiteRepository) SumByCategory(ctx context.Context, f core.Filter) ([]core.CategoryTotal, error) {
	where, args := whereClause(f, matchExact)
	rows, err := r.db.QueryContext(ctx, `
SELECT lower(category) AS cat, SUM(amount_cents) AS total
FROM transactions
WHERE `+where+` AND amount_cents IS NOT NULL
GROUP BY cat
ORDER BY total DESC, cat`, args...)
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	defer rows.Close()

	out := []core.CategoryTotal{}
	for rows.Next() {
		var ct core.CategoryTotal
		var total int64
		if err := rows.Scan(&ct.Category, &total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		ct.Total = core.NewAmount(total)
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return core.WithPercentages(out), nil
}

// SumByMonth groups known amounts by calendar month regardless of year.
func (r *SQLiteRepository) SumByMonth(ctx context.Context, f core.Filter) (core.MonthlySummary, error) {
	where, args := whereClause(f, matchExact)
	rows, err := r.db.QueryContext(ctx, `
SELECT CAST(strftime('%m', date) AS INTEGER) AS month, SUM(amount_cents) AS total
FROM transactions
WHERE `+where+` AND amount_cents IS NOT NULL
GROUP BY month
ORDER BY month`, args...)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("sum by month: %w", err)
	}
	defer rows.Close()

	summary := core.MonthlySummary{Months: []core.MonthTotal{}, Total: core.NewAmount(0)}
	for rows.Next() {
		var month int
		var total int64
		if err := rows.Scan(&month, &total); err != nil {
			return core.MonthlySummary{}, fmt.Errorf("scan month total: %w", err)
		}
		summary.Months = append(summary.Months, core.MonthTotal{Month: month, Total: core.NewAmount(total)})
		summary.Total.Cents += total
	}
	return summary, rows.Err()
}

// Insights computes the summary figures over records with a known amount.
// The independent queries run concurrently.
func (r *SQLiteRepository) Insights(ctx context.Context, f core.Filter) (core.Insights, error) {
	where, args := whereClause(f, matchExact)
	where += " AND amount_cents IS NOT NULL"

	var ins core.Insights
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var cat string
		var total int64
		err := r.db.QueryRowContext(ctx, `
SELECT lower(category) AS cat, SUM(amount_cents) AS total FROM transactions
WHERE `+where+` GROUP BY cat ORDER BY total DESC, cat LIMIT 1`, args...).Scan(&cat, &total)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("top category: %w", err)
		}
		ins.TopCategory = &cat
		ins.TopCategoryTotal = core.NewAmount(total)
		return nil
	})

	g.Go(func() error {
		var avg sql.NullFloat64
		err := r.db.QueryRowContext(ctx,
			`SELECT AVG(amount_cents) FROM transactions WHERE `+where, args...).Scan(&avg)
		if err != nil {
			return fmt.Errorf("average amount: %w", err)
		}
		ins.Average = core.NewAmount(int64(math.Round(avg.Float64)))
		return nil
	})

	g.Go(func() error {
		s, err := r.extremeSpend(ctx, where, args, "DESC")
		ins.Largest = s
		return err
	})

	g.Go(func() error {
		s, err := r.extremeSpend(ctx, where, args, "ASC")
		ins.Smallest = s
		return err
	})

	g.Go(func() error {
		var day int
		var avg float64
		err := r.db.QueryRowContext(ctx, `
SELECT CAST(strftime('%d', date) AS INTEGER) AS day, AVG(amount_cents) AS avg_cents FROM transactions
WHERE `+where+` GROUP BY day ORDER BY avg_cents DESC, day LIMIT 1`, args...).Scan(&day, &avg)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("best day of month: %w", err)
		}
		ins.BestDayOfMonth = &day
		return nil
	})

	if err := g.Wait(); err != nil {
		return core.Insights{}, err
	}
	return ins, nil
}

// extremeSpend returns the single largest (DESC) or smallest (ASC) record.
func (r *SQLiteRepository) extremeSpend(ctx context.Context, where string, args []any, order string) (*core.Spend, error) {
	var s core.Spend
	var cents int64
	err := r.db.QueryRowContext(ctx, `
SELECT description, amount_cents FROM transactions
WHERE `+where+` ORDER BY amount_cents `+order+`, id LIMIT 1`, args...).Scan(&s.Description, &cents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("extreme spend %s: %w", order, err)
	}
	s.Amount = core.NewAmount(cents)
	return &s, nil
}
