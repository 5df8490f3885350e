package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

type Transaction struct {
	ID          int64
	UserID      int64
	Date        string
	Description string
	AmountCents sql.NullInt64
	Category    string
}

const transactionColumns = `id, user_id, date, description, amount_cents, category`

func scanTransaction(row interface{ Scan(...interface{}) error }) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Date, &t.Description, &t.AmountCents, &t.Category)
	return t, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (username, password_hash) VALUES (?, ?)
RETURNING id, username, password_hash
`

type CreateUserParams struct {
	Username     string
	PasswordHash string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.Username, arg.PasswordHash)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.PasswordHash)
	return i, err
}

const getUserByUsername = `-- name: GetUserByUsername :one
SELECT id, username, password_hash FROM users WHERE username = ?
`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.PasswordHash)
	return i, err
}

const getUser = `-- name: GetUser :one
SELECT id, username, password_hash FROM users WHERE id = ?
`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.PasswordHash)
	return i, err
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (user_id, date, description, amount_cents, category)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + transactionColumns + `
`

type CreateTransactionParams struct {
	UserID      int64
	Date        string
	Description string
	AmountCents sql.NullInt64
	Category    string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.UserID, arg.Date, arg.Description, arg.AmountCents, arg.Category)
	return scanTransaction(row)
}

const getTransaction = `-- name: GetTransaction :one
SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND user_id = ?
`

type GetTransactionParams struct {
	ID     int64
	UserID int64
}

func (q *Queries) GetTransaction(ctx context.Context, arg GetTransactionParams) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, arg.ID, arg.UserID))
}

const updateTransaction = `-- name: UpdateTransaction :one
UPDATE transactions
SET date = ?, description = ?, amount_cents = ?, category = ?
WHERE id = ? AND user_id = ?
RETURNING ` + transactionColumns + `
`

type UpdateTransactionParams struct {
	Date        string
	Description string
	AmountCents sql.NullInt64
	Category    string
	ID          int64
	UserID      int64
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, updateTransaction,
		arg.Date, arg.Description, arg.AmountCents, arg.Category, arg.ID, arg.UserID)
	return scanTransaction(row)
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ? AND user_id = ?
`

type DeleteTransactionParams struct {
	ID     int64
	UserID int64
}

func (q *Queries) DeleteTransaction(ctx context.Context, arg DeleteTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listCategories = `-- name: ListCategories :many
SELECT DISTINCT lower(category) AS category FROM transactions
WHERE user_id = ? ORDER BY 1
`

func (q *Queries) ListCategories(ctx context.Context, userID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		items = append(items, category)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
