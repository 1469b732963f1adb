package metrics

import (
	"math"
	"testing"

	"fincontrol/internal/core"
)

func cents(c int64) core.Money { return core.Money{Cents: c} }

func expense(id, category, date string, amount int64) core.Transaction {
	return core.Transaction{ID: id, Amount: cents(amount), Description: id, Category: category, Kind: core.KindExpense, Date: date, Method: core.MethodDebit}
}

func income(id, date string, amount int64) core.Transaction {
	return core.Transaction{ID: id, Amount: cents(amount), Description: id, Category: "Salário", Kind: core.KindIncome, Date: date, Method: core.MethodDebit}
}

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name          string
		txs           []core.Transaction
		inc, exp, bal int64
	}{
		{"empty", nil, 0, 0, 0},
		{"income only", []core.Transaction{income("a", "2024-01-01", 1000)}, 1000, 0, 1000},
		{"expense only", []core.Transaction{expense("a", "X", "2024-01-01", 250)}, 0, 250, -250},
		{"mixed cents", []core.Transaction{
			income("a", "2024-01-01", 10001),
			expense("b", "X", "2024-01-02", 3333),
			expense("c", "Y", "bad date", 1),
		}, 10001, 3334, 6667},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotals(tc.txs)
			if got.Income.Cents != tc.inc || got.Expense.Cents != tc.exp || got.Balance.Cents != tc.bal {
				t.Fatalf("got %+v, want income=%d expense=%d balance=%d", got, tc.inc, tc.exp, tc.bal)
			}
			if got.Income.Cents-got.Expense.Cents != got.Balance.Cents {
				t.Fatalf("balance must equal income minus expense")
			}
		})
	}
}

func TestBreakdownByCategory(t *testing.T) {
	txs := []core.Transaction{
		expense("1", "Lazer", "2024-03-01", 300),
		expense("2", "Alimentação", "2024-03-02", 500),
		income("3", "2024-03-03", 9999),
		expense("4", "Transporte", "2024-03-04", 300),
		expense("5", "Alimentação", "2024-03-05", 100),
		expense("6", "Saúde", "2024-03-06", 1),
	}
	got := BreakdownByCategory(txs, core.KindExpense)

	wantOrder := []string{"Alimentação", "Lazer", "Transporte", "Saúde"}
	if len(got) != len(wantOrder) {
		t.Fatalf("expected %d rows, got %d", len(wantOrder), len(got))
	}
	for i, name := range wantOrder {
		if got[i].Name != name {
			t.Errorf("row %d: got %q, want %q", i, got[i].Name, name)
		}
	}
	if got[0].Amount.Cents != 600 {
		t.Errorf("expected Alimentação to sum 600, got %d", got[0].Amount.Cents)
	}

	var sum float64
	for _, s := range got {
		sum += s.Percent
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Fatalf("percentages must sum to 100, got %v", sum)
	}

	if rows := BreakdownByCategory(nil, core.KindExpense); rows == nil || len(rows) != 0 {
		t.Fatalf("empty input must give an empty, non-nil breakdown")
	}
}

func TestBreakdownZeroTotal(t *testing.T) {
	txs := []core.Transaction{expense("1", "Lazer", "2024-03-01", 0)}
	got := BreakdownByCategory(txs, core.KindExpense)
	if len(got) != 1 || got[0].Percent != 0 {
		t.Fatalf("zero total must yield 0%%, got %+v", got)
	}
}

func TestTopCategories(t *testing.T) {
	txs := []core.Transaction{
		expense("1", "A", "2024-03-01", 100),
		expense("2", "B", "2024-03-01", 300),
		expense("3", "C", "2024-03-01", 200),
	}
	cases := []struct {
		n    int
		want []string
	}{
		{0, nil},
		{-1, nil},
		{2, []string{"B", "C"}},
		{10, []string{"B", "C", "A"}},
	}
	for _, tc := range cases {
		got := TopCategories(txs, core.KindExpense, tc.n)
		if len(got) != len(tc.want) {
			t.Fatalf("n=%d: got %d rows, want %d", tc.n, len(got), len(tc.want))
		}
		for i := range tc.want {
			if got[i].Name != tc.want[i] {
				t.Errorf("n=%d row %d: got %q, want %q", tc.n, i, got[i].Name, tc.want[i])
			}
		}
	}
}

func TestRecent(t *testing.T) {
	txs := []core.Transaction{
		expense("old", "A", "2024-01-01", 1),
		expense("broken", "A", "yesterday", 1),
		expense("new-1", "A", "2024-03-10", 1),
		expense("mid", "A", "2024-02-15", 1),
		expense("new-2", "A", "2024-03-10", 1),
	}
	got := Recent(txs, 4)
	want := []string{"new-1", "new-2", "mid", "old"}
	if len(got) != len(want) {
		t.Fatalf("expected %d transactions, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
	if txs[0].ID != "old" {
		t.Fatalf("input must not be reordered")
	}
	if len(Recent(txs, 0)) != 0 {
		t.Fatalf("n=0 must return nothing")
	}
}

func TestSearch(t *testing.T) {
	txs := []core.Transaction{
		{ID: "1", Description: "Almoço no centro", Category: "Alimentação"},
		{ID: "2", Description: "Uber", Category: "Transporte"},
		{ID: "3", Description: "Farmácia", Category: "Saúde"},
	}
	cases := []struct {
		term string
		want []string
	}{
		{"", []string{"1", "2", "3"}},
		{"ALMOCO", []string{"1"}},
		{"alimentacao", []string{"1"}},
		{"saude", []string{"3"}},
		{"  uber ", []string{"2"}},
		{"xyz", nil},
	}
	for _, tc := range cases {
		got := Search(txs, tc.term)
		if len(got) != len(tc.want) {
			t.Fatalf("%q: got %d results, want %d", tc.term, len(got), len(tc.want))
		}
		for i := range tc.want {
			if got[i].ID != tc.want[i] {
				t.Errorf("%q result %d: got %s, want %s", tc.term, i, got[i].ID, tc.want[i])
			}
		}
	}
}

func TestGroupByDate(t *testing.T) {
	txs := []core.Transaction{
		expense("a", "X", "2024-03-01", 100),
		income("b", "2024-03-05", 1000),
		expense("c", "X", "2024-3-5", 50),
		expense("d", "X", "n/a", 7),
	}
	groups := GroupByDate(txs)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Date != "2024-03-05" || len(groups[0].Transactions) != 2 {
		t.Fatalf("unexpected first group %+v", groups[0])
	}
	if groups[0].Income.Cents != 1000 || groups[0].Expense.Cents != 50 {
		t.Fatalf("unexpected day sums %+v", groups[0])
	}
	if groups[1].Date != "2024-03-01" || groups[2].Date != "n/a" {
		t.Fatalf("unexpected group order: %s, %s", groups[1].Date, groups[2].Date)
	}
}

func TestInMonth(t *testing.T) {
	txs := []core.Transaction{
		expense("a", "X", "2024-03-01", 1),
		expense("b", "X", "2024-04-01", 1),
		expense("c", "X", "2023-03-15", 1),
		expense("d", "X", "garbage", 1),
	}
	got := InMonth(txs, 2024, 3)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("unexpected %+v", got)
	}
}
