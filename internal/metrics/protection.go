package metrics

import (
	"time"

	"fincontrol/internal/core"
)

// IsProtected reports whether an expense was filed under the reserve category
// during now's calendar month. Category names are compared after accent and
// case folding.
func IsProtected(txs []core.Transaction, reserveName string, now time.Time) bool {
	want := core.NormalizeName(reserveName)
	if want == "" {
		return false
	}
	for _, tx := range InMonth(txs, now.Year(), int(now.Month())) {
		if tx.Kind == core.KindExpense && core.NormalizeName(tx.Category) == want {
			return true
		}
	}
	return false
}

// ReserveContribution sums the reserve-category expenses of now's month.
func ReserveContribution(txs []core.Transaction, reserveName string, now time.Time) core.Money {
	want := core.NormalizeName(reserveName)
	var sum core.Money
	for _, tx := range InMonth(txs, now.Year(), int(now.Month())) {
		if tx.Kind == core.KindExpense && core.NormalizeName(tx.Category) == want {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}
