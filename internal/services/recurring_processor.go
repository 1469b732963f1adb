package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fincontrol/internal/core"
	"fincontrol/internal/ports"
)

// RecurringProcessor materializes occurrences of recurring transactions.
// An occurrence is a plain copy dated on the processing day whose
// RecurringFrom points at the recurring transaction. At most one occurrence
// per recurring transaction is created per run.
type RecurringProcessor struct {
	store        ports.TransactionStore
	transactions *TransactionService
}

func NewRecurringProcessor(store ports.TransactionStore, transactions *TransactionService) *RecurringProcessor {
	return &RecurringProcessor{store: store, transactions: transactions}
}

// ProcessDue creates the occurrences due at now and returns how many were
// created. Failures on single templates are logged and skipped.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.transactions == nil {
		return 0, errors.New("processor not properly initialized")
	}

	txs, err := p.store.ListTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	templates, latest := recurringIndex(txs)
	slog.InfoContext(ctx, "Processing recurring transactions",
		"templates", len(templates),
		"processing_date", now.Format("2006-01-02"))

	created := 0
	for _, tmpl := range templates {
		start, err := core.ParseDate(tmpl.Date)
		if err != nil {
			slog.WarnContext(ctx, "Skipping recurring transaction with bad date", "id", tmpl.ID, "date", tmpl.Date)
			continue
		}
		if dayOf(now).Before(start.Time) {
			continue
		}

		recurrence := tmpl.Recurrence
		if recurrence == "" {
			recurrence = core.Monthly
		}
		checker, err := GetDuenessChecker(recurrence)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check if transaction is due", "id", tmpl.ID, "error", err)
			continue
		}
		if !checker.IsDue(latest[tmpl.ID], now, start) {
			continue
		}

		occ := occurrenceOf(tmpl, now)
		saved, err := p.transactions.Create(ctx, TransactionInput{Transaction: occ})
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create occurrence",
				"recurring_id", tmpl.ID,
				"description", tmpl.Description,
				"error", err)
			continue
		}

		created++
		slog.InfoContext(ctx, "Created occurrence of recurring transaction",
			"recurring_id", tmpl.ID,
			"id", saved.ID,
			"amount_cents", saved.Amount.Cents,
			"frequency", recurrence)
	}

	slog.InfoContext(ctx, "Recurring transaction processing complete",
		"created", created,
		"total_checked", len(templates))
	return created, nil
}

// recurringIndex returns the recurring transactions and, per template ID,
// the date of its latest occurrence or of the template itself.
func recurringIndex(txs []core.Transaction) ([]core.Transaction, map[string]time.Time) {
	var templates []core.Transaction
	latest := make(map[string]time.Time)
	bump := func(id, date string) {
		d, err := core.ParseDate(date)
		if err != nil {
			return
		}
		if d.After(latest[id]) {
			latest[id] = d.Time
		}
	}
	for _, tx := range txs {
		if tx.Recurrent {
			templates = append(templates, tx)
			bump(tx.ID, tx.Date)
		}
		if tx.RecurringFrom != "" {
			bump(tx.RecurringFrom, tx.Date)
		}
	}
	return templates, latest
}

func occurrenceOf(tmpl core.Transaction, now time.Time) core.Transaction {
	occ := tmpl
	occ.ID = ""
	occ.Date = core.NewDate(now.Year(), int(now.Month()), now.Day()).String()
	occ.Recurrent = false
	occ.Recurrence = ""
	occ.RecurringFrom = tmpl.ID
	if len(tmpl.Details) > 0 {
		occ.Details = append([]core.LineItem(nil), tmpl.Details...)
	}
	return occ
}
