package metrics

import (
	"time"

	"fincontrol/internal/core"
)

// chartColors is cycled for breakdown rows without a matching category.
var chartColors = []string{"#10b981", "#3b82f6", "#f43f5e", "#f59e0b", "#8b5cf6", "#ec4899"}

// Options tunes BuildDashboard. Zero values fall back to DefaultOptions.
type Options struct {
	Months          int
	Top             int
	Recent          int
	ReserveCategory string
}

// DefaultOptions matches the home screen: four months, top five categories,
// four recent transactions.
var DefaultOptions = Options{
	Months:          4,
	Top:             5,
	Recent:          4,
	ReserveCategory: core.DefaultReserveCategory,
}

// Dashboard is every derived value shown on the home screen.
type Dashboard struct {
	GeneratedAt   time.Time          `json:"generatedAt"`
	Totals        Totals             `json:"totals"`
	Month         Totals             `json:"month"`
	Risk          RiskAssessment     `json:"risk"`
	Breakdown     []CategoryShare    `json:"breakdown"`
	TopCategories []CategoryShare    `json:"topCategories"`
	Months        []Bucket           `json:"months"`
	Protected     bool               `json:"protected"`
	Reserve       core.Money         `json:"reserveThisMonth"`
	Cards         []Utilization      `json:"cards"`
	CardTotals    CardSummary        `json:"cardTotals"`
	Goals         []GoalProgress     `json:"goals"`
	Budget        BudgetStatus       `json:"budget"`
	Recent        []core.Transaction `json:"recent"`
}

func (o Options) withDefaults() Options {
	if o.Months <= 0 {
		o.Months = DefaultOptions.Months
	}
	if o.Top <= 0 {
		o.Top = DefaultOptions.Top
	}
	if o.Recent <= 0 {
		o.Recent = DefaultOptions.Recent
	}
	if o.ReserveCategory == "" {
		o.ReserveCategory = DefaultOptions.ReserveCategory
	}
	return o
}

// BuildDashboard recomputes the dashboard from the snapshot.
func BuildDashboard(s core.Snapshot, now time.Time, opts Options) Dashboard {
	opts = opts.withDefaults()

	totals := ComputeTotals(s.Transactions)
	breakdown := ColorShares(BreakdownByCategory(s.Transactions, core.KindExpense), s.Categories)
	top := breakdown
	if len(top) > opts.Top {
		top = top[:opts.Top]
	}

	cards := make([]Utilization, 0, len(s.Cards))
	for _, c := range s.Cards {
		cards = append(cards, CardUtilization(c))
	}

	goals := make([]GoalProgress, 0, len(s.Goals))
	for _, g := range s.Goals {
		goals = append(goals, Progress(g, now))
	}

	return Dashboard{
		GeneratedAt:   now,
		Totals:        totals,
		Month:         ComputeTotals(InMonth(s.Transactions, now.Year(), int(now.Month()))),
		Risk:          AssessRisk(totals),
		Breakdown:     breakdown,
		TopCategories: top,
		Months:        WindowBuckets(s.Transactions, now, opts.Months),
		Protected:     IsProtected(s.Transactions, opts.ReserveCategory, now),
		Reserve:       ReserveContribution(s.Transactions, opts.ReserveCategory, now),
		Cards:         cards,
		CardTotals:    CardTotals(s.Cards),
		Goals:         goals,
		Budget:        SpendingAlert(totals.Expense, s.Profile),
		Recent:        Recent(s.Transactions, opts.Recent),
	}
}

// ColorShares returns a copy of shares with the color of the matching
// category, or a chart color when no category matches.
func ColorShares(shares []CategoryShare, categories []core.Category) []CategoryShare {
	colors := make(map[string]string, len(categories))
	for _, c := range categories {
		key := core.NormalizeName(c.Name)
		if _, ok := colors[key]; !ok && c.Color != "" {
			colors[key] = c.Color
		}
	}
	out := make([]CategoryShare, len(shares))
	for i, s := range shares {
		if c, ok := colors[core.NormalizeName(s.Name)]; ok {
			s.Color = c
		} else {
			s.Color = chartColors[i%len(chartColors)]
		}
		out[i] = s
	}
	return out
}
