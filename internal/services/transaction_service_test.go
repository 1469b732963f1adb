package services

import (
	"context"
	"errors"
	"testing"

	"fincontrol/internal/core"
	"fincontrol/internal/ports"
	"fincontrol/internal/store/memory"
)

func TestTransactionService_CreateAssignsIDAndPublishes(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	pub := &fakePublisher{}
	changes := 0
	svc := NewTransactionService(store, WithPublisher(pub), WithChangeHook(func() { changes++ }))

	in := expenseTx("", "2024-03-05", 4590)
	in.Recurrence = core.Weekly // dropped: not recurrent
	tx, err := svc.Create(ctx, TransactionInput{Transaction: in})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tx.ID == "" {
		t.Fatal("expected generated ID")
	}
	if tx.Recurrence != "" {
		t.Errorf("recurrence kept on non-recurrent transaction: %q", tx.Recurrence)
	}
	if _, err := store.GetTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("not stored: %v", err)
	}
	if len(pub.synced) != 1 || pub.synced[0].id != tx.ID || pub.synced[0].version != 1 {
		t.Errorf("published = %+v", pub.synced)
	}
	if changes != 1 {
		t.Errorf("change hook calls = %d", changes)
	}
}

func TestTransactionService_CreateValidation(t *testing.T) {
	svc := NewTransactionService(memory.New())
	tests := []struct {
		name   string
		mutate func(*core.Transaction)
		want   error
	}{
		{"zero amount", func(tx *core.Transaction) { tx.Amount = cents(0) }, core.ErrInvalidAmount},
		{"blank description", func(tx *core.Transaction) { tx.Description = "  " }, core.ErrEmptyDescription},
		{"bad kind", func(tx *core.Transaction) { tx.Kind = "TRANSFER" }, core.ErrInvalidKind},
		{"bad date", func(tx *core.Transaction) { tx.Date = "05/03/2024" }, core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := expenseTx("", "2024-03-05", 100)
			tt.mutate(&tx)
			_, err := svc.Create(context.Background(), TransactionInput{Transaction: tx})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransactionService_Extraction(t *testing.T) {
	ctx := context.Background()
	item := core.LineItem{Label: "Arroz", Amount: cents(1200), Quantity: "1"}

	t.Run("details replaced by extracted items", func(t *testing.T) {
		ext := &fakeExtractor{items: []core.LineItem{item}}
		svc := NewTransactionService(memory.New(), WithExtractor(ext))
		tx, err := svc.Create(ctx, TransactionInput{Transaction: expenseTx("a", "2024-03-05", 5000), DetailsText: "arroz 12"})
		if err != nil {
			t.Fatal(err)
		}
		if len(tx.Details) != 1 || tx.Details[0] != item {
			t.Errorf("details = %+v", tx.Details)
		}
	})

	t.Run("no extractor configured", func(t *testing.T) {
		store := memory.New()
		svc := NewTransactionService(store)
		_, err := svc.Create(ctx, TransactionInput{Transaction: expenseTx("a", "2024-03-05", 5000), DetailsText: "arroz"})
		if !errors.Is(err, ErrExtractorUnavailable) {
			t.Fatalf("err = %v", err)
		}
		if txs, _ := store.ListTransactions(ctx); len(txs) != 0 {
			t.Error("transaction saved despite extraction error")
		}
	})

	t.Run("extractor failure is surfaced", func(t *testing.T) {
		svc := NewTransactionService(memory.New(), WithExtractor(&fakeExtractor{err: errBoom}))
		_, err := svc.Create(ctx, TransactionInput{Transaction: expenseTx("a", "2024-03-05", 5000), DetailsText: "arroz"})
		if !errors.Is(err, ErrExtraction) || !errors.Is(err, errBoom) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("empty details text skips extraction", func(t *testing.T) {
		ext := &fakeExtractor{}
		svc := NewTransactionService(memory.New(), WithExtractor(ext))
		if _, err := svc.Create(ctx, TransactionInput{Transaction: expenseTx("a", "2024-03-05", 5000), DetailsText: "  "}); err != nil {
			t.Fatal(err)
		}
		if ext.calls != 0 {
			t.Errorf("extractor called %d times", ext.calls)
		}
	})
}

func TestTransactionService_PublishFailureDoesNotFail(t *testing.T) {
	store := memory.New()
	svc := NewTransactionService(store, WithPublisher(&fakePublisher{err: errBoom}))
	tx, err := svc.Create(context.Background(), TransactionInput{Transaction: expenseTx("a", "2024-03-05", 100)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.GetTransaction(context.Background(), tx.ID); err != nil {
		t.Fatal("transaction not saved")
	}
}

func TestTransactionService_CardUsageFollowsTransactions(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	card := core.CreditCard{ID: "c1", Name: "Visa", Limit: cents(100000), ClosingDay: 5, DueDay: 12}
	if err := store.SaveCard(ctx, card); err != nil {
		t.Fatal(err)
	}
	svc := NewTransactionService(store)

	credit := expenseTx("t1", "2024-03-05", 25000)
	credit.Method = core.MethodCredit
	credit.CardID = "c1"
	if _, err := svc.Create(ctx, TransactionInput{Transaction: credit}); err != nil {
		t.Fatal(err)
	}
	untagged := expenseTx("t2", "2024-03-06", 9900)
	untagged.Method = core.MethodCredit
	if _, err := svc.Create(ctx, TransactionInput{Transaction: untagged}); err != nil {
		t.Fatal(err)
	}

	got, _ := store.GetCard(ctx, "c1")
	if got.Used.Cents != 25000 {
		t.Fatalf("used after create = %d, want 25000", got.Used.Cents)
	}

	credit.Amount = cents(30000)
	if _, err := svc.Update(ctx, TransactionInput{Transaction: credit}); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetCard(ctx, "c1")
	if got.Used.Cents != 30000 {
		t.Fatalf("used after update = %d, want 30000", got.Used.Cents)
	}

	if err := svc.Delete(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetCard(ctx, "c1")
	if got.Used.Cents != 0 {
		t.Fatalf("used after delete = %d, want 0", got.Used.Cents)
	}
}

func TestTransactionService_UpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), WithPublisher(pub))
	if _, err := svc.Update(ctx, TransactionInput{Transaction: expenseTx("nope", "2024-03-05", 100)}); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("update err = %v", err)
	}
	if err := svc.Delete(ctx, "nope"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("delete err = %v", err)
	}
	if len(pub.deleted) != 0 {
		t.Errorf("delete published for missing transaction: %v", pub.deleted)
	}

	tx, _ := svc.Create(ctx, TransactionInput{Transaction: expenseTx("x", "2024-03-05", 100)})
	if err := svc.Delete(ctx, tx.ID); err != nil {
		t.Fatal(err)
	}
	if len(pub.deleted) != 1 || pub.deleted[0] != "x" {
		t.Errorf("deleted published = %v", pub.deleted)
	}
}

func TestTransactionService_Search(t *testing.T) {
	ctx := context.Background()
	svc := NewTransactionService(memory.New())
	for _, tx := range []core.Transaction{
		expenseTx("a", "2024-03-05", 100),
		expenseTx("b", "2024-03-06", 200),
		{ID: "c", Amount: cents(300), Description: "Farmácia", Category: "Saúde", Kind: core.KindExpense, Date: "2024-03-05", Method: core.MethodCash},
	} {
		if _, err := svc.Create(ctx, TransactionInput{Transaction: tx}); err != nil {
			t.Fatal(err)
		}
	}

	groups, err := svc.Search(ctx, "saude")
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || len(groups[0].Transactions) != 1 || groups[0].Transactions[0].ID != "c" {
		t.Fatalf("search saude = %+v", groups)
	}

	all, _ := svc.Search(ctx, "")
	if len(all) != 2 || all[0].Date != "2024-03-06" {
		t.Fatalf("groups = %+v", all)
	}
}
