package services

import (
	"context"

	"gastos/internal/amqp"
	"gastos/internal/core"
)

// TransactionStore persists transactions scoped to their owner.
// storage.SQLiteRepository implements it.
type TransactionStore interface {
	InsertBatch(ctx context.Context, userID int64, records []core.Transaction) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, userID int64, rec core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, rec core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error
	ListTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error)
	Categories(ctx context.Context, userID int64) ([]string, error)
}

// AggregateStore answers the chart queries.
type AggregateStore interface {
	SumByCategory(ctx context.Context, f core.Filter) ([]core.CategoryTotal, error)
	SumByMonth(ctx context.Context, f core.Filter) (core.MonthlySummary, error)
	Insights(ctx context.Context, f core.Filter) (core.Insights, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (core.User, error)
	UserByUsername(ctx context.Context, username string) (core.User, error)
}

// EventPublisher is satisfied by *amqp.Client. A nil publisher disables
// events.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.Event) error
}
