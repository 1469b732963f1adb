package services

import (
	"context"
	"testing"
	"time"

	"fincontrol/internal/core"
	"fincontrol/internal/store/memory"
)

func TestRecurringProcessor_ProcessDue(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	rent := expenseTx("rent", "2024-01-10", 150000)
	rent.Category = "Moradia"
	rent.Recurrent = true
	rent.Recurrence = core.Monthly

	gym := expenseTx("gym", "2024-03-01", 9000)
	gym.Recurrent = true
	gym.Recurrence = core.Weekly

	future := expenseTx("future", "2024-06-01", 100)
	future.Recurrent = true
	future.Recurrence = core.Daily

	for _, tx := range []core.Transaction{rent, gym, future, expenseTx("plain", "2024-01-01", 100)} {
		if err := store.SaveTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	pub := &fakePublisher{}
	proc := NewRecurringProcessor(store, NewTransactionService(store, WithPublisher(pub)))
	now := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)

	n, err := proc.ProcessDue(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("created = %d, want 2 (rent and gym)", n)
	}

	txs, _ := store.ListTransactions(ctx)
	var occ []core.Transaction
	for _, tx := range txs {
		if tx.RecurringFrom != "" {
			occ = append(occ, tx)
		}
	}
	if len(occ) != 2 {
		t.Fatalf("occurrences = %+v", occ)
	}
	for _, o := range occ {
		if o.Date != "2024-03-12" || o.Recurrent || o.Recurrence != "" || o.ID == o.RecurringFrom {
			t.Errorf("bad occurrence %+v", o)
		}
	}
	if len(pub.synced) != 2 {
		t.Errorf("published = %d", len(pub.synced))
	}

	again, err := proc.ProcessDue(ctx, now.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if again != 0 {
		t.Errorf("second run same day created %d", again)
	}

	later, _ := proc.ProcessDue(ctx, time.Date(2024, 3, 19, 8, 0, 0, 0, time.UTC))
	if later != 1 {
		t.Errorf("a week later created %d, want 1 (gym)", later)
	}
}

func TestRecurringProcessor_DefaultsToMonthly(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	tx := expenseTx("sub", "2024-01-20", 3990)
	tx.Recurrent = true
	if err := store.SaveTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}
	proc := NewRecurringProcessor(store, NewTransactionService(store))

	if n, _ := proc.ProcessDue(ctx, time.Date(2024, 2, 19, 0, 0, 0, 0, time.UTC)); n != 0 {
		t.Errorf("before target day created %d", n)
	}
	if n, _ := proc.ProcessDue(ctx, time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)); n != 1 {
		t.Errorf("on target day created %d", n)
	}
}

func TestRecurringProcessor_NotInitialized(t *testing.T) {
	if _, err := (&RecurringProcessor{}).ProcessDue(context.Background(), time.Now()); err == nil {
		t.Error("expected error")
	}
}

func TestRecurringIndex(t *testing.T) {
	tmpl := expenseTx("t", "2024-01-05", 100)
	tmpl.Recurrent = true
	o1 := expenseTx("o1", "2024-02-05", 100)
	o1.RecurringFrom = "t"
	o2 := expenseTx("o2", "2024-03-05", 100)
	o2.RecurringFrom = "t"

	templates, latest := recurringIndex([]core.Transaction{o2, tmpl, o1})
	if len(templates) != 1 || templates[0].ID != "t" {
		t.Fatalf("templates = %+v", templates)
	}
	if got := latest["t"]; !got.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("latest = %v", got)
	}
}
