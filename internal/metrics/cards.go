package metrics

import "fincontrol/internal/core"

// UnhealthyPercent is the display utilization above which a card is flagged.
const UnhealthyPercent = 80.0

// Utilization is the derived view of a credit card's usage.
type Utilization struct {
	CardID         string     `json:"cardId"`
	Name           string     `json:"name"`
	Limit          core.Money `json:"limit"`
	Used           core.Money `json:"used"`
	Ratio          float64    `json:"ratio"`
	DisplayPercent float64    `json:"displayPercent"`
	Available      core.Money `json:"available"`
	OverLimit      bool       `json:"overLimit"`
	Unhealthy      bool       `json:"unhealthy"`
}

// CardSummary totals limits and usage across cards.
type CardSummary struct {
	Limit     core.Money `json:"limit"`
	Used      core.Money `json:"used"`
	Available core.Money `json:"available"`
}

// CardUtilization computes used/limit. Ratio is unclamped and may exceed 1;
// DisplayPercent is clamped to [0, 100]. Available may be negative.
func CardUtilization(c core.CreditCard) Utilization {
	u := Utilization{
		CardID:    c.ID,
		Name:      c.Name,
		Limit:     c.Limit,
		Used:      c.Used,
		Available: c.Limit.Sub(c.Used),
	}
	if c.Limit.Cents > 0 {
		u.Ratio = float64(c.Used.Cents) / float64(c.Limit.Cents)
	}
	u.DisplayPercent = clampPercent(u.Ratio * 100)
	u.OverLimit = u.Ratio > 1
	u.Unhealthy = u.DisplayPercent > UnhealthyPercent
	return u
}

// CardTotals sums limit and used over all cards.
func CardTotals(cards []core.CreditCard) CardSummary {
	var s CardSummary
	for _, c := range cards {
		s.Limit = s.Limit.Add(c.Limit)
		s.Used = s.Used.Add(c.Used)
	}
	s.Available = s.Limit.Sub(s.Used)
	return s
}

// DerivedCardUsage sums the credit-method expenses tagged with the card's ID.
func DerivedCardUsage(c core.CreditCard, txs []core.Transaction) core.Money {
	var used core.Money
	for _, tx := range txs {
		if tx.CardID == c.ID && tx.Kind == core.KindExpense && tx.Method == core.MethodCredit {
			used = used.Add(tx.Amount)
		}
	}
	return used
}

// ReconcileCards returns copies of cards whose Used field is recomputed from
// the transactions.
func ReconcileCards(cards []core.CreditCard, txs []core.Transaction) []core.CreditCard {
	usage := make(map[string]core.Money, len(cards))
	for _, tx := range txs {
		if tx.CardID != "" && tx.Kind == core.KindExpense && tx.Method == core.MethodCredit {
			usage[tx.CardID] = usage[tx.CardID].Add(tx.Amount)
		}
	}
	out := make([]core.CreditCard, len(cards))
	for i, c := range cards {
		c.Used = usage[c.ID]
		out[i] = c
	}
	return out
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
