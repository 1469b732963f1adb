// Package services orchestrates the application's use cases on top of the
// stores, the metrics engine and the sync transport.
//
// This file holds the Strategy registry that decides when a recurring
// transaction is due for its next occurrence. Each recurrence type has its
// own checker.
package services

import (
	"fmt"
	"time"

	"fincontrol/internal/core"
)

// DuenessChecker decides whether a recurring transaction needs a new
// occurrence.
type DuenessChecker interface {
	// IsDue reports whether an occurrence is due at now, given the date of
	// the latest occurrence (or of the recurring transaction itself) and the
	// date the recurrence started on.
	IsDue(lastExecution, now time.Time, startDate core.Date) bool
}

// DailyChecker is due once per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(lastExecution, now time.Time, _ core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	return dayOf(lastExecution).Before(dayOf(now))
}

// WeeklyChecker is due when seven calendar days have passed.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastExecution, now time.Time, _ core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	return !dayOf(now).Before(dayOf(lastExecution).AddDate(0, 0, 7))
}

// MonthlyChecker is due once per month, on or after the start date's day.
// Days past the end of a short month fall on its last day.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastExecution, now time.Time, startDate core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	if lastExecution.Year() == now.Year() && lastExecution.Month() == now.Month() {
		return false
	}
	if !lastExecution.Before(now) {
		return false
	}
	return now.Day() >= clampDay(now.Year(), now.Month(), startDate.Day())
}

// YearlyChecker is due once per year, on or after the start date's month
// and day.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(lastExecution, now time.Time, startDate core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	if lastExecution.Year() >= now.Year() {
		return false
	}
	target := time.Month(startDate.Month())
	switch {
	case now.Month() < target:
		return false
	case now.Month() == target:
		return now.Day() >= clampDay(now.Year(), target, startDate.Day())
	default:
		return true
	}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// clampDay limits day to the length of the given month.
func clampDay(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

var duenessStrategies = map[core.RecurrenceType]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the checker for a recurrence type.
func GetDuenessChecker(r core.RecurrenceType) (DuenessChecker, error) {
	checker, ok := duenessStrategies[r]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence type: %q", r)
	}
	return checker, nil
}

// RegisterDuenessChecker adds or replaces the checker for a recurrence type.
// Call it during start-up only; the registry is not guarded.
func RegisterDuenessChecker(r core.RecurrenceType, checker DuenessChecker) {
	duenessStrategies[r] = checker
}
