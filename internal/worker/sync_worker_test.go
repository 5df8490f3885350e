package worker

import (
	"context"
	"errors"
	"testing"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/sheets/memory"
)

type fakeReader map[int64]core.Transaction

func (f fakeReader) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	if id == 500 {
		return core.Transaction{}, errors.New("db down")
	}
	t, ok := f[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, core.NotFoundError("Transação não encontrada")
	}
	return t, nil
}

func newTestWorker() (*SyncWorker, *memory.Store) {
	reader := fakeReader{
		1: {ID: 1, UserID: 7, Date: core.NewDate(2024, 1, 5), Description: "Uber", Amount: core.NewAmount(2350), Category: "transporte"},
		2: {ID: 2, UserID: 7, Date: core.NewDate(2024, 1, 6), Description: "Netflix", Category: "assinaturas"},
		3: {ID: 3, UserID: 8, Description: "someone else"},
	}
	store := memory.New()
	return NewSyncWorker(reader, store, 2, log.New(log.DefaultConfig())), store
}

func TestHandleEvent_BatchImported(t *testing.T) {
	w, store := newTestWorker()

	ev := amqp.NewBatchImportedEvent("batch-1", 7, "csv", []int64{2, 1, 3, 99})
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	rows := store.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (foreign and missing ids skipped), got %d", len(rows))
	}
	if rows[0].Transaction.ID != 2 || rows[1].Transaction.ID != 1 {
		t.Errorf("rows should keep event order: %+v", rows)
	}
	for _, r := range rows {
		if r.Action != ActionImported || r.BatchID != "batch-1" {
			t.Errorf("unexpected row: %+v", r)
		}
	}
}

func TestHandleEvent_Changed(t *testing.T) {
	w, store := newTestWorker()
	ctx := context.Background()

	if err := w.HandleEvent(ctx, amqp.NewTransactionChangedEvent(7, 1, amqp.ActionUpdated)); err != nil {
		t.Fatal(err)
	}
	if err := w.HandleEvent(ctx, amqp.NewTransactionChangedEvent(7, 42, amqp.ActionDeleted)); err != nil {
		t.Fatal(err)
	}

	rows := store.Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Action != amqp.ActionUpdated || rows[0].Transaction.Description != "Uber" {
		t.Errorf("unexpected update row: %+v", rows[0])
	}
	if rows[1].Action != amqp.ActionDeleted || rows[1].Transaction.ID != 42 || rows[1].Transaction.UserID != 7 {
		t.Errorf("unexpected delete row: %+v", rows[1])
	}
}

func TestHandleEvent_LoadFailureIsRetried(t *testing.T) {
	w, store := newTestWorker()

	err := w.HandleEvent(context.Background(), amqp.NewBatchImportedEvent("b", 7, "csv", []int64{1, 500}))
	if err == nil {
		t.Fatal("expected error so the message is redelivered")
	}
	if len(store.Rows()) != 0 {
		t.Error("nothing should be written when a load fails")
	}
}

func TestHandleEvent_NothingToWrite(t *testing.T) {
	w, store := newTestWorker()
	if err := w.HandleEvent(context.Background(), amqp.NewBatchImportedEvent("b", 7, "csv", []int64{99})); err != nil {
		t.Fatal(err)
	}
	if len(store.Rows()) != 0 {
		t.Error("expected no rows")
	}
}
