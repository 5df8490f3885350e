// Package worker mirrors committed transactions to a spreadsheet as events
// arrive from the queue.
package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/sheets"
)

// ActionImported labels rows that came from an import batch.
const ActionImported = "imported"

const defaultConcurrency = 4

// TransactionReader loads a record for its owner.
type TransactionReader interface {
	GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
}

// SyncWorker turns queue events into appended sheet rows.
type SyncWorker struct {
	store       TransactionReader
	writer      sheets.TransactionWriter
	concurrency int
	logger      *log.Logger
}

func NewSyncWorker(store TransactionReader, writer sheets.TransactionWriter, concurrency int, logger *log.Logger) *SyncWorker {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &SyncWorker{
		store:       store,
		writer:      writer,
		concurrency: concurrency,
		logger:      logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent appends one row per transaction in ev. Records deleted before
// the event was processed are skipped. A returned error asks the consumer to
// redeliver.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.Event) error {
	rows, err := w.rowsFor(ctx, ev)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		w.logger.DebugContext(ctx, "Nothing to mirror", "type", ev.Type, log.FieldUserID, ev.UserID)
		return nil
	}

	ref, err := w.writer.AppendRows(ctx, rows)
	if err != nil {
		return fmt.Errorf("append rows: %w", err)
	}
	w.logger.InfoContext(ctx, "Transactions mirrored",
		log.FieldOperation, log.OpAppend,
		log.FieldUserID, ev.UserID,
		log.FieldBatchID, ev.BatchID,
		log.FieldSheetsRange, ref,
		"rows", len(rows))
	return nil
}

func (w *SyncWorker) rowsFor(ctx context.Context, ev *amqp.Event) ([]sheets.Row, error) {
	action := ev.Action
	if ev.Type == amqp.EventBatchImported {
		action = ActionImported
	}

	if action == amqp.ActionDeleted {
		rows := make([]sheets.Row, 0, len(ev.TransactionIDs))
		for _, id := range ev.TransactionIDs {
			rows = append(rows, sheets.Row{
				Transaction: core.Transaction{ID: id, UserID: ev.UserID},
				Action:      action,
			})
		}
		return rows, nil
	}

	loaded := make([]*core.Transaction, len(ev.TransactionIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i, id := range ev.TransactionIDs {
		g.Go(func() error {
			t, err := w.store.GetTransaction(gctx, ev.UserID, id)
			if core.IsKind(err, core.KindNotFound) {
				w.logger.WarnContext(gctx, "Transaction gone before mirroring",
					log.FieldTransactionID, id,
					log.FieldUserID, ev.UserID)
				return nil
			}
			if err != nil {
				return fmt.Errorf("load transaction %d: %w", id, err)
			}
			loaded[i] = &t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]sheets.Row, 0, len(loaded))
	for _, t := range loaded {
		if t == nil {
			continue
		}
		rows = append(rows, sheets.Row{Transaction: *t, Action: action, BatchID: ev.BatchID})
	}
	return rows, nil
}
