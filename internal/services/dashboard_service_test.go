package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fincontrol/internal/core"
	"fincontrol/internal/metrics"
	"fincontrol/internal/store/memory"
)

type failingStore struct {
	*memory.Store
}

func (failingStore) ListGoals(context.Context) ([]core.Goal, error) {
	return nil, errBoom
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	txs := []core.Transaction{
		{ID: "i1", Amount: cents(500000), Description: "Salário", Category: "Salário", Kind: core.KindIncome, Date: "2024-03-01", Method: core.MethodDebit},
		expenseTx("e1", "2024-03-05", 300000),
		expenseTx("e2", "2024-02-10", 50000),
		{ID: "i2", Amount: cents(100000), Description: "Freela", Category: "Renda Extra", Kind: core.KindIncome, Date: "2024-02-20", Method: core.MethodDebit},
	}
	for _, tx := range txs {
		if err := store.SaveTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestDashboardService_Snapshot(t *testing.T) {
	svc := NewDashboardService(seededStore(t), metrics.DefaultOptions, 0)
	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Transactions) != 4 || len(snap.Categories) != len(core.DefaultCategories()) {
		t.Fatalf("snapshot = %d txs, %d categories", len(snap.Transactions), len(snap.Categories))
	}
	if snap.Profile.MonthlyIncomeLimit.Cents != 500000 {
		t.Errorf("profile = %+v", snap.Profile)
	}

	bad := NewDashboardService(failingStore{memory.New()}, metrics.DefaultOptions, 0)
	if _, err := bad.Snapshot(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("err = %v", err)
	}
}

func TestDashboardService_DashboardCaching(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	svc := NewDashboardService(store, metrics.DefaultOptions, time.Minute)
	defer svc.Close()
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC) }

	d, err := svc.Dashboard(ctx, metrics.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if d.Totals.Income.Cents != 600000 || d.Totals.Expense.Cents != 350000 {
		t.Fatalf("totals = %+v", d.Totals)
	}
	if len(d.Months) != 4 {
		t.Errorf("months = %d", len(d.Months))
	}

	if err := store.SaveTransaction(ctx, expenseTx("e3", "2024-03-10", 1000)); err != nil {
		t.Fatal(err)
	}
	cached, _ := svc.Dashboard(ctx, metrics.Options{})
	if cached.Totals.Expense.Cents != 350000 {
		t.Errorf("expected cached dashboard, expense = %d", cached.Totals.Expense.Cents)
	}

	svc.Invalidate()
	fresh, _ := svc.Dashboard(ctx, metrics.Options{})
	if fresh.Totals.Expense.Cents != 351000 {
		t.Errorf("after invalidate expense = %d", fresh.Totals.Expense.Cents)
	}

	six, _ := svc.Dashboard(ctx, metrics.Options{Months: 6})
	if len(six.Months) != 6 {
		t.Errorf("override months = %d", len(six.Months))
	}
}

// slowListStore reads transactions and then holds the first caller until
// release is closed, so a write can land while a dashboard is being built.
type slowListStore struct {
	*memory.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *slowListStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.Store.ListTransactions(ctx)
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.release
	}
	return txs, err
}

func TestDashboardService_WriteDuringBuildIsNotCached(t *testing.T) {
	ctx := context.Background()
	store := &slowListStore{
		Store:   memory.New(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := NewDashboardService(store, metrics.DefaultOptions, time.Minute)
	defer svc.Close()
	txs := NewTransactionService(store, WithChangeHook(svc.Invalidate))

	done := make(chan error, 1)
	go func() {
		_, err := svc.Dashboard(ctx, metrics.Options{})
		done <- err
	}()

	<-store.entered
	if _, err := txs.Create(ctx, TransactionInput{Transaction: expenseTx("late", "2024-03-10", 500)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	close(store.release)
	if err := <-done; err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	d, err := svc.Dashboard(ctx, metrics.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if d.Totals.Expense.Cents != 500 {
		t.Errorf("expense after completed write = %d, want 500", d.Totals.Expense.Cents)
	}
}

func TestDashboardService_Analysis(t *testing.T) {
	svc := NewDashboardService(seededStore(t), metrics.DefaultOptions, 0)
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC) }

	a, err := svc.Analysis(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Months) != 3 {
		t.Fatalf("months = %d", len(a.Months))
	}
	if a.Best == nil || a.Best.Label != "2024-03" {
		t.Errorf("best = %+v", a.Best)
	}
	if a.Worst == nil || a.Worst.Label != "2024-01" {
		t.Errorf("worst = %+v", a.Worst)
	}
}
