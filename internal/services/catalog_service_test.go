package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fincontrol/internal/core"
	"fincontrol/internal/ports"
	"fincontrol/internal/store/memory"
)

func TestCatalogService_SaveCardDerivesUsage(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	tx := expenseTx("t1", "2024-03-05", 12000)
	tx.Method = core.MethodCredit
	tx.CardID = "c1"
	if err := store.SaveTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}

	svc := NewCatalogService(store, nil)
	card, err := svc.SaveCard(ctx, core.CreditCard{ID: "c1", Name: "Visa", Limit: cents(50000), Used: cents(999999)})
	if err != nil {
		t.Fatal(err)
	}
	if card.Used.Cents != 12000 {
		t.Errorf("used = %d, want derived 12000", card.Used.Cents)
	}

	if _, err := svc.SaveCard(ctx, core.CreditCard{Name: "Sem limite"}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero limit err = %v", err)
	}
}

func TestCatalogService_DeleteCategoryKeepsTransactions(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	if err := store.SaveTransaction(ctx, expenseTx("t1", "2024-03-05", 100)); err != nil {
		t.Fatal(err)
	}
	changed := 0
	svc := NewCatalogService(store, func() { changed++ })

	cats, _ := svc.Categories(ctx)
	var foodID string
	for _, c := range cats {
		if c.Name == "Alimentação" {
			foodID = c.ID
		}
	}
	if foodID == "" {
		t.Fatal("default category missing")
	}
	if err := svc.DeleteCategory(ctx, foodID); err != nil {
		t.Fatal(err)
	}
	tx, err := store.GetTransaction(ctx, "t1")
	if err != nil || tx.Category != "Alimentação" {
		t.Fatalf("transaction changed: %+v, %v", tx, err)
	}
	if changed != 1 {
		t.Errorf("change hook calls = %d", changed)
	}
	if err := svc.DeleteCategory(ctx, foodID); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestCatalogService_SaveCategoryAssignsID(t *testing.T) {
	svc := NewCatalogService(memory.New(), nil)
	c, err := svc.SaveCategory(context.Background(), core.Category{Name: "  Pets ", Kind: core.KindExpense, Color: "bg-pink-500"})
	if err != nil {
		t.Fatal(err)
	}
	if c.ID == "" || c.Name != "Pets" {
		t.Errorf("category = %+v", c)
	}
	if _, err := svc.SaveCategory(context.Background(), core.Category{Name: "X", Kind: "OTHER"}); !errors.Is(err, core.ErrInvalidKind) {
		t.Errorf("err = %v", err)
	}
}

func TestCatalogService_Deposit(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewCatalogService(store, nil)
	svc.now = func() time.Time { return time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC) }

	g, err := svc.SaveGoal(ctx, core.Goal{Name: "Viagem", Target: cents(100000), Current: cents(20000), Deadline: "2024-12-31", MonthlyAllocation: cents(10000)})
	if err != nil {
		t.Fatal(err)
	}

	progress, err := svc.Deposit(ctx, g.ID, cents(30000))
	if err != nil {
		t.Fatal(err)
	}
	if progress.Goal.Current.Cents != 50000 || progress.Percent != 50 {
		t.Errorf("progress = %+v", progress)
	}
	stored, _ := store.GetGoal(ctx, g.ID)
	if stored.Current.Cents != 50000 {
		t.Errorf("stored current = %d", stored.Current.Cents)
	}

	if _, err := svc.Deposit(ctx, g.ID, cents(0)); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero deposit err = %v", err)
	}
	if _, err := svc.Deposit(ctx, "missing", cents(100)); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("missing goal err = %v", err)
	}
}

func TestCatalogService_Profile(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(memory.New(), nil)

	p, err := svc.Profile(ctx)
	if err != nil || p.MonthlyIncomeLimit.Cents != 500000 {
		t.Fatalf("default profile = %+v, %v", p, err)
	}
	p.MonthlyIncomeLimit = cents(-1)
	if _, err := svc.SaveProfile(ctx, p); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative limit err = %v", err)
	}
	p.MonthlyIncomeLimit = cents(800000)
	p.Name = " Ana "
	saved, err := svc.SaveProfile(ctx, p)
	if err != nil || saved.Name != "Ana" {
		t.Fatalf("saved = %+v, %v", saved, err)
	}
}
