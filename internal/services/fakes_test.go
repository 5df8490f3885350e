package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"gastos/internal/amqp"
	"gastos/internal/core"
)

type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]core.Transaction
	failOn  string

	sumCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[int64]core.Transaction{}}
}

var errFake = errors.New("store failure")

func (f *fakeStore) InsertBatch(_ context.Context, userID int64, records []core.Transaction) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "insert" {
		return nil, errFake
	}
	out := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		f.nextID++
		r.ID, r.UserID = f.nextID, userID
		f.records[r.ID] = r
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) CreateTransaction(ctx context.Context, userID int64, rec core.Transaction) (core.Transaction, error) {
	out, err := f.InsertBatch(ctx, userID, []core.Transaction{rec})
	if err != nil {
		return core.Transaction{}, err
	}
	return out[0], nil
}

func (f *fakeStore) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok || r.UserID != userID {
		return core.Transaction{}, core.NotFoundError("Transação não encontrada")
	}
	return r, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, rec core.Transaction) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[rec.ID]; !ok || r.UserID != rec.UserID {
		return core.Transaction{}, core.NotFoundError("Transação não encontrada")
	}
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[id]; !ok || r.UserID != userID {
		return core.NotFoundError("Transação não encontrada")
	}
	delete(f.records, id)
	return nil
}

func (f *fakeStore) ListTransactions(_ context.Context, flt core.Filter) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Transaction
	for _, r := range f.records {
		if r.UserID == flt.UserID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) Categories(_ context.Context, userID int64) ([]string, error) {
	return []string{"mercado"}, nil
}

func (f *fakeStore) SumByCategory(_ context.Context, flt core.Filter) ([]core.CategoryTotal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sumCalls++
	if f.failOn == "aggregate" {
		return nil, errFake
	}
	return []core.CategoryTotal{{Category: flt.Category, Total: core.NewAmount(int64(len(f.records))), Percent: 100}}, nil
}

func (f *fakeStore) SumByMonth(_ context.Context, flt core.Filter) (core.MonthlySummary, error) {
	return core.MonthlySummary{Total: core.NewAmount(0)}, nil
}

func (f *fakeStore) Insights(_ context.Context, flt core.Filter) (core.Insights, error) {
	cat := flt.Category
	return core.Insights{TopCategory: &cat}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev *amqp.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type+":"+e.Action)
	}
	return out
}

type fakeUsers struct {
	byName map[string]core.User
	nextID int64
}

func (f *fakeUsers) CreateUser(_ context.Context, username, hash string) (core.User, error) {
	if _, ok := f.byName[username]; ok {
		return core.User{}, core.ConflictError(MsgUserExists)
	}
	f.nextID++
	u := core.User{ID: f.nextID, Username: username, PasswordHash: hash}
	f.byName[username] = u
	return u, nil
}

func (f *fakeUsers) UserByUsername(_ context.Context, username string) (core.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return core.User{}, core.NotFoundError("Usuário não encontrado")
	}
	return u, nil
}
