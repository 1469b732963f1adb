// Package metrics derives the numbers and flags shown by the dashboard from a
// snapshot of records. Every function is pure: inputs are never mutated, no
// I/O is performed and the current date is always passed explicitly.
package metrics

import (
	"sort"
	"strings"

	"fincontrol/internal/core"
)

// Totals holds the income and expense sums of a transaction list.
type Totals struct {
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Balance core.Money `json:"balance"`
}

// CategoryShare is one row of a category breakdown.
type CategoryShare struct {
	Name    string     `json:"name"`
	Amount  core.Money `json:"amount"`
	Percent float64    `json:"percent"`
	Color   string     `json:"color,omitempty"`
}

// DayGroup collects the transactions dated on the same calendar day.
type DayGroup struct {
	Date         string             `json:"date"`
	Income       core.Money         `json:"income"`
	Expense      core.Money         `json:"expense"`
	Transactions []core.Transaction `json:"transactions"`
}

// ComputeTotals sums income and expense amounts. Balance is income minus
// expense with no rounding beyond cents.
func ComputeTotals(txs []core.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Kind {
		case core.KindIncome:
			t.Income = t.Income.Add(tx.Amount)
		case core.KindExpense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// InMonth returns the transactions dated in the given year and month.
// Transactions with malformed dates are left out.
func InMonth(txs []core.Transaction, year, month int) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		y, m, _, ok := core.SplitDate(tx.Date)
		if ok && y == year && m == month {
			out = append(out, tx)
		}
	}
	return out
}

// BreakdownByCategory groups transactions of the given kind by category name
// and reports each group's share of the kind's total. Rows are sorted by
// amount, largest first; equal amounts keep first-encountered order.
func BreakdownByCategory(txs []core.Transaction, kind core.Kind) []CategoryShare {
	index := make(map[string]int)
	var (
		shares []CategoryShare
		total  int64
	)
	for _, tx := range txs {
		if tx.Kind != kind {
			continue
		}
		i, seen := index[tx.Category]
		if !seen {
			i = len(shares)
			index[tx.Category] = i
			shares = append(shares, CategoryShare{Name: tx.Category})
		}
		shares[i].Amount = shares[i].Amount.Add(tx.Amount)
		total += tx.Amount.Cents
	}
	if len(shares) == 0 {
		return []CategoryShare{}
	}

	if total != 0 {
		for i := range shares {
			shares[i].Percent = float64(shares[i].Amount.Cents) / float64(total) * 100
		}
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Amount.Cents > shares[j].Amount.Cents
	})
	return shares
}

// TopCategories returns the first n rows of the category breakdown.
func TopCategories(txs []core.Transaction, kind core.Kind, n int) []CategoryShare {
	if n <= 0 {
		return []CategoryShare{}
	}
	shares := BreakdownByCategory(txs, kind)
	if len(shares) > n {
		shares = shares[:n]
	}
	return shares
}

// Recent returns up to n transactions, newest date first. Transactions on the
// same date keep their input order; malformed dates sort last.
func Recent(txs []core.Transaction, n int) []core.Transaction {
	if n <= 0 || len(txs) == 0 {
		return []core.Transaction{}
	}
	sorted := sortedByDateDesc(txs)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Search filters transactions whose description or category contains term,
// ignoring case and accents. An empty term matches everything.
func Search(txs []core.Transaction, term string) []core.Transaction {
	needle := core.NormalizeName(term)
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if needle == "" ||
			strings.Contains(core.NormalizeName(tx.Description), needle) ||
			strings.Contains(core.NormalizeName(tx.Category), needle) {
			out = append(out, tx)
		}
	}
	return out
}

// GroupByDate groups transactions by calendar day, newest day first.
// Transactions with malformed dates are grouped under their raw date string
// after all well-formed days.
func GroupByDate(txs []core.Transaction) []DayGroup {
	index := make(map[string]int)
	groups := []DayGroup{}
	for _, tx := range sortedByDateDesc(txs) {
		key := tx.Date
		if d, err := core.ParseDate(tx.Date); err == nil {
			key = d.String()
		}
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Date: key})
		}
		g := &groups[i]
		g.Transactions = append(g.Transactions, tx)
		switch tx.Kind {
		case core.KindIncome:
			g.Income = g.Income.Add(tx.Amount)
		case core.KindExpense:
			g.Expense = g.Expense.Add(tx.Amount)
		}
	}
	return groups
}

// sortedByDateDesc returns a copy of txs ordered by date, newest first.
func sortedByDateDesc(txs []core.Transaction) []core.Transaction {
	type keyed struct {
		tx  core.Transaction
		key int
		ok  bool
	}
	items := make([]keyed, len(txs))
	for i, tx := range txs {
		y, m, d, ok := core.SplitDate(tx.Date)
		items[i] = keyed{tx: tx, key: y*10000 + m*100 + d, ok: ok}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ok != items[j].ok {
			return items[i].ok
		}
		return items[i].key > items[j].key
	})
	out := make([]core.Transaction, len(items))
	for i, it := range items {
		out[i] = it.tx
	}
	return out
}
