package services

import (
	"context"
	"errors"
	"sync"

	"fincontrol/internal/core"
)

type fakeExtractor struct {
	items []core.LineItem
	err   error
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) ([]core.LineItem, error) {
	f.calls++
	return f.items, f.err
}

type publishedSync struct {
	id      string
	version int64
}

type fakePublisher struct {
	mu      sync.Mutex
	synced  []publishedSync
	deleted []string
	err     error
}

func (f *fakePublisher) PublishTransactionSync(_ context.Context, id string, version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = append(f.synced, publishedSync{id, version})
	return f.err
}

func (f *fakePublisher) PublishTransactionDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.err
}

type fakeMirror struct {
	saved   map[string]core.Transaction
	deleted []string
	err     error
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{saved: map[string]core.Transaction{}}
}

func (f *fakeMirror) SaveTransaction(_ context.Context, tx core.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.saved[tx.ID] = tx
	return nil
}

func (f *fakeMirror) DeleteTransaction(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

var errBoom = errors.New("boom")

func cents(c int64) core.Money { return core.Money{Cents: c} }

func expenseTx(id, date string, amount int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Amount:      cents(amount),
		Description: "Mercado " + id,
		Category:    "Alimentação",
		Kind:        core.KindExpense,
		Date:        date,
		Method:      core.MethodDebit,
	}
}
