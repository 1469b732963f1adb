package metrics

import (
	"time"

	"fincontrol/internal/core"
)

// Feasibility reports whether a goal's monthly allocation reaches its target
// by the deadline.
type Feasibility struct {
	HasDeadline     bool       `json:"hasDeadline"`
	MonthsRemaining int        `json:"monthsRemaining"`
	Projected       core.Money `json:"projected"`
	Gap             core.Money `json:"gap"`
	Feasible        bool       `json:"feasible"`
}

// GoalProgress is the derived view of one goal.
type GoalProgress struct {
	Goal        core.Goal   `json:"goal"`
	Percent     float64     `json:"percent"`
	Remaining   core.Money  `json:"remaining"`
	Feasibility Feasibility `json:"feasibility"`
}

// GoalPercent is current/target as a percentage capped at 100. A target of
// zero or less yields 0.
func GoalPercent(current, target core.Money) float64 {
	if target.Cents <= 0 || current.Cents <= 0 {
		return 0
	}
	if current.Cents >= target.Cents {
		return 100
	}
	return float64(current.Cents) / float64(target.Cents) * 100
}

// GoalRemaining is target minus current, never negative.
func GoalRemaining(current, target core.Money) core.Money {
	if r := target.Sub(current); r.Cents > 0 {
		return r
	}
	return core.Money{}
}

// ParseDeadline reads a goal deadline. Besides Y-M-D it accepts timestamps
// whose first ten characters are a Y-M-D date.
func ParseDeadline(s string) (core.Date, bool) {
	if d, err := core.ParseDate(s); err == nil {
		return d, true
	}
	if len(s) > 10 {
		if d, err := core.ParseDate(s[:10]); err == nil {
			return d, true
		}
	}
	return core.Date{}, false
}

// MonthsUntil counts whole calendar months from now to deadline. A month is
// counted only once its day of month is reached; past deadlines give 0.
func MonthsUntil(deadline core.Date, now time.Time) int {
	months := (deadline.Year()-now.Year())*12 + deadline.Month() - int(now.Month())
	if deadline.Day() < now.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// CheckFeasibility projects current plus monthly allocation over the months
// left until the deadline and compares the result with the target. Without a
// usable deadline the goal is feasible only if it is already reached.
func CheckFeasibility(g core.Goal, now time.Time) Feasibility {
	deadline, ok := ParseDeadline(g.Deadline)
	if !ok {
		return Feasibility{
			Projected: g.Current,
			Gap:       GoalRemaining(g.Current, g.Target),
			Feasible:  g.Current.Cents >= g.Target.Cents,
		}
	}

	months := MonthsUntil(deadline, now)
	projected := g.Current.Add(core.Money{Cents: g.MonthlyAllocation.Cents * int64(months)})
	return Feasibility{
		HasDeadline:     true,
		MonthsRemaining: months,
		Projected:       projected,
		Gap:             GoalRemaining(projected, g.Target),
		Feasible:        projected.Cents >= g.Target.Cents,
	}
}

// Progress derives percent, remaining amount and feasibility for a goal.
func Progress(g core.Goal, now time.Time) GoalProgress {
	return GoalProgress{
		Goal:        g,
		Percent:     GoalPercent(g.Current, g.Target),
		Remaining:   GoalRemaining(g.Current, g.Target),
		Feasibility: CheckFeasibility(g, now),
	}
}

// Deposit returns a copy of g with amount added to its current amount.
func Deposit(g core.Goal, amount core.Money) (core.Goal, error) {
	if err := amount.Validate(); err != nil {
		return g, err
	}
	g.Current = g.Current.Add(amount)
	return g, nil
}
