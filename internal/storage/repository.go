package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gastos/internal/core"

	_ "modernc.org/sqlite"
)

const (
	msgTransactionNotFound = "Transação não encontrada"
	msgUserNotFound        = "Usuário não encontrado"
	msgUserExists          = "Usuário já existe"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping backs the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateUser stores a new account. A taken username is a KindConflict error.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string) (core.User, error) {
	u, err := r.queries.CreateUser(ctx, CreateUserParams{Username: username, PasswordHash: passwordHash})
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ConflictError(msgUserExists)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User saved to SQLite", "user_id", u.ID, "username", u.Username)
	return userToCore(u), nil
}

func (r *SQLiteRepository) UserByUsername(ctx context.Context, username string) (core.User, error) {
	u, err := r.queries.GetUserByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.NotFoundError(msgUserNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return userToCore(u), nil
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id int64) (core.User, error) {
	u, err := r.queries.GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.NotFoundError(msgUserNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return userToCore(u), nil
}

// InsertBatch stores every record for userID in one database transaction.
// Either all records are committed or none are.
func (r *SQLiteRepository) InsertBatch(ctx context.Context, userID int64, records []core.Transaction) ([]core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	saved := make([]core.Transaction, 0, len(records))
	for i, rec := range records {
		row, err := qtx.CreateTransaction(ctx, createParams(userID, rec))
		if err != nil {
			return nil, fmt.Errorf("insert record %d: %w", i+1, err)
		}
		t, err := transactionToCore(row)
		if err != nil {
			return nil, err
		}
		saved = append(saved, t)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	slog.InfoContext(ctx, "Batch saved to SQLite", "user_id", userID, "count", len(saved))
	return saved, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, userID int64, rec core.Transaction) (core.Transaction, error) {
	row, err := r.queries.CreateTransaction(ctx, createParams(userID, rec))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"description", row.Description,
		"amount_cents", row.AmountCents.Int64,
		"date", row.Date)

	return transactionToCore(row)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, GetTransactionParams{ID: id, UserID: userID})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.NotFoundError(msgTransactionNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return transactionToCore(row)
}

// UpdateTransaction replaces every field of the record identified by
// rec.ID and rec.UserID.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, rec core.Transaction) (core.Transaction, error) {
	row, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		Date:        rec.Date.String(),
		Description: rec.Description,
		AmountCents: amountToNull(rec.Amount),
		Category:    rec.Category,
		ID:          rec.ID,
		UserID:      rec.UserID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.NotFoundError(msgTransactionNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", rec.ID, err)
	}
	return transactionToCore(row)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, DeleteTransactionParams{ID: id, UserID: userID})
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return core.NotFoundError(msgTransactionNotFound)
	}
	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id, "user_id", userID)
	return nil
}

// Categories returns the distinct lower-cased labels in use by userID.
func (r *SQLiteRepository) Categories(ctx context.Context, userID int64) ([]string, error) {
	cats, err := r.queries.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

func createParams(userID int64, rec core.Transaction) CreateTransactionParams {
	category := rec.Category
	if category == "" {
		category = core.FallbackCategory
	}
	return CreateTransactionParams{
		UserID:      userID,
		Date:        rec.Date.String(),
		Description: rec.Description,
		AmountCents: amountToNull(rec.Amount),
		Category:    category,
	}
}

func amountToNull(a core.Amount) sql.NullInt64 {
	return sql.NullInt64{Int64: a.Cents, Valid: a.Valid}
}

func transactionToCore(t Transaction) (core.Transaction, error) {
	date, err := core.ParseDate(t.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d has malformed date %q: %w", t.ID, t.Date, err)
	}
	return core.Transaction{
		ID:          t.ID,
		UserID:      t.UserID,
		Date:        date,
		Description: t.Description,
		Amount:      core.Amount{Cents: t.AmountCents.Int64, Valid: t.AmountCents.Valid},
		Category:    t.Category,
	}, nil
}

func userToCore(u User) core.User {
	return core.User{ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
