package metrics

import "fincontrol/internal/core"

// AlertPercent is the share of the monthly limit above which spending alerts.
const AlertPercent = 80.0

// BudgetStatus compares spending with the profile's monthly income limit.
type BudgetStatus struct {
	Limit       core.Money `json:"limit"`
	Spent       core.Money `json:"spent"`
	UsedPercent float64    `json:"usedPercent"`
	Alert       bool       `json:"alert"`
}

// SpendingAlert flags spending above 80% of the monthly income limit. A
// limit of zero or less never alerts.
func SpendingAlert(expense core.Money, profile core.UserProfile) BudgetStatus {
	s := BudgetStatus{Limit: profile.MonthlyIncomeLimit, Spent: expense}
	if s.Limit.Cents <= 0 {
		return s
	}
	s.UsedPercent = float64(expense.Cents) / float64(s.Limit.Cents) * 100
	s.Alert = expense.Cents*100 > s.Limit.Cents*int64(AlertPercent)
	return s
}
