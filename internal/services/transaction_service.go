package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/cache"
	"gastos/internal/core"
	"gastos/internal/importer"
	"gastos/internal/log"
)

// Import sources, also used as event and log labels.
const (
	SourceCSV = "csv"
	SourcePDF = "pdf"
)

// ImportResult reports a committed batch.
type ImportResult struct {
	BatchID      string
	Transactions []core.Transaction
}

// TransactionInput is a record as submitted by a client, before validation.
// Amount holds the literal text of the submitted value; "" means null.
type TransactionInput struct {
	Date        string
	Description string
	Amount      string
	Category    string
}

// TransactionPatch carries the fields of a partial update. Nil fields are
// left unchanged.
type TransactionPatch struct {
	Date        *string
	Description *string
	Amount      *string
	Category    *string
}

// TransactionService orchestrates imports and record mutations across the
// store, the event queue and the chart cache. Writes are committed first;
// publishing and cache invalidation never undo a commit.
type TransactionService struct {
	store     TransactionStore
	validator *core.Validator
	importer  *importer.Importer
	events    EventPublisher
	charts    cache.Cache[any]
}

// NewTransactionService wires the service. events and charts may be nil.
func NewTransactionService(store TransactionStore, v *core.Validator, im *importer.Importer, events EventPublisher, charts cache.Cache[any]) *TransactionService {
	if v == nil {
		v = core.NewValidator(nil)
	}
	if im == nil {
		im = importer.New(v)
	}
	return &TransactionService{
		store:     store,
		validator: v,
		importer:  im,
		events:    events,
		charts:    charts,
	}
}

// ImportCSV validates a tabular upload and commits it as one batch.
func (s *TransactionService) ImportCSV(ctx context.Context, userID int64, r io.Reader) (ImportResult, error) {
	batch, err := s.importer.ImportCSV(r)
	if err != nil {
		return ImportResult{}, err
	}
	return s.commit(ctx, userID, SourceCSV, batch, "Erros encontrados no CSV")
}

// ImportPDF validates a document upload and commits it as one batch.
func (s *TransactionService) ImportPDF(ctx context.Context, userID int64, r io.Reader) (ImportResult, error) {
	batch, err := s.importer.ImportDocument(r)
	if err != nil {
		return ImportResult{}, err
	}
	return s.commit(ctx, userID, SourcePDF, batch, "Erros encontrados no PDF")
}

func (s *TransactionService) commit(ctx context.Context, userID int64, source string, batch core.BatchResult, failMsg string) (ImportResult, error) {
	batchID := amqp.NewBatchID()
	seen := len(batch.Records) + len(batch.Errors)
	slogger := log.NewStructuredLogger(log.FromContext(ctx))

	if !batch.OK() {
		slogger.LogImport(ctx, userID, source, batchID, seen, 0, len(batch.Errors))
		return ImportResult{}, core.BatchError(failMsg, batch)
	}

	saved, err := s.store.InsertBatch(ctx, userID, batch.Records)
	if err != nil {
		return ImportResult{}, fmt.Errorf("save batch: %w", err)
	}
	slogger.LogImport(ctx, userID, source, batchID, seen, len(saved), 0)

	ids := make([]int64, len(saved))
	for i, t := range saved {
		ids[i] = t.ID
	}
	s.publish(ctx, amqp.NewBatchImportedEvent(batchID, userID, source, ids))
	s.invalidate(ctx, userID)

	return ImportResult{BatchID: batchID, Transactions: saved}, nil
}

// Create validates a single record like an imported row and stores it.
func (s *TransactionService) Create(ctx context.Context, userID int64, in TransactionInput) (core.Transaction, error) {
	rec, err := s.validator.Prepare(core.RawRow{
		Line:        1,
		Date:        in.Date,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
	})
	if err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.CreateTransaction(ctx, userID, rec)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	logMutation(ctx, log.OpCreate, userID, saved)
	s.publish(ctx, amqp.NewTransactionChangedEvent(userID, saved.ID, amqp.ActionCreated))
	s.invalidate(ctx, userID)
	return saved, nil
}

// Update applies a partial patch. The merged record is re-validated, so an
// emptied category is derived from the description again.
func (s *TransactionService) Update(ctx context.Context, userID, id int64, p TransactionPatch) (core.Transaction, error) {
	cur, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	raw := core.RawRow{
		Line:        1,
		Date:        cur.Date.String(),
		Description: cur.Description,
		Amount:      cur.Amount.String(),
		Category:    cur.Category,
	}
	if p.Date != nil {
		raw.Date = *p.Date
	}
	if p.Description != nil {
		raw.Description = *p.Description
	}
	if p.Amount != nil {
		raw.Amount = *p.Amount
	}
	if p.Category != nil {
		raw.Category = *p.Category
	}

	rec, err := s.validator.Prepare(raw)
	if err != nil {
		return core.Transaction{}, err
	}
	rec.ID = cur.ID
	rec.UserID = userID

	updated, err := s.store.UpdateTransaction(ctx, rec)
	if err != nil {
		return core.Transaction{}, err
	}
	logMutation(ctx, log.OpUpdate, userID, updated)
	s.publish(ctx, amqp.NewTransactionChangedEvent(userID, id, amqp.ActionUpdated))
	s.invalidate(ctx, userID)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	log.NewStructuredLogger(log.FromContext(ctx)).LogMutation(ctx, log.OpDelete,
		log.NewFields().WithUser(userID).WithTransactionID(id))
	s.publish(ctx, amqp.NewTransactionChangedEvent(userID, id, amqp.ActionDeleted))
	s.invalidate(ctx, userID)
	return nil
}

// List returns the user's records matching f; the category clause is a
// membership test over f.Categories.
func (s *TransactionService) List(ctx context.Context, userID int64, f core.Filter) ([]core.Transaction, error) {
	f.UserID = userID
	f.Category = ""
	return s.store.ListTransactions(ctx, f)
}

func (s *TransactionService) Categories(ctx context.Context, userID int64) ([]string, error) {
	return s.store.Categories(ctx, userID)
}

// publish is best-effort: a failure is logged and the caller proceeds.
func (s *TransactionService) publish(ctx context.Context, ev *amqp.Event) {
	if s.events == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping event", "type", ev.Type)
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		fields := log.NewFields().WithUser(ev.UserID)
		fields[log.FieldBatchID] = ev.BatchID
		fields["type"] = ev.Type
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Failed to publish event", err,
			log.ComponentAMQP, log.OpPublish, fields)
	}
}

func (s *TransactionService) invalidate(ctx context.Context, userID int64) {
	if s.charts == nil {
		return
	}
	if n := s.charts.DeletePrefix(cache.UserPrefix(userID)); n > 0 {
		slog.DebugContext(ctx, "Chart cache invalidated", log.FieldUserID, userID, "entries", n)
	}
}

func logMutation(ctx context.Context, op string, userID int64, t core.Transaction) {
	log.NewStructuredLogger(log.FromContext(ctx)).LogMutation(ctx, op,
		log.NewFields().WithUser(userID).WithTransaction(t.ID, t.Description, t.Amount.Cents, t.Category))
}
