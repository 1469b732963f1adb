package google

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"fincontrol/internal/core"
)

// Column layouts. Column A always holds the record ID.
var (
	transactionHeader = []string{"ID", "Date", "Type", "Description", "Amount", "Category", "PaymentMethod", "IsRecurrent", "RecurrenceType", "CardID", "RecurringFrom", "Details"}
	categoryHeader    = []string{"ID", "Name", "Icon", "Color", "Type"}
	goalHeader        = []string{"ID", "Name", "Target", "Current", "Deadline", "MonthlyAllocation", "Icon"}
	cardHeader        = []string{"ID", "Name", "Bank", "Limit", "Used", "ClosingDay", "DueDay", "Color"}
	profileHeader     = []string{"ID", "Name", "Email", "Avatar", "MonthlyIncomeLimit", "MemberSince"}
)

func transactionRow(tx core.Transaction) []any {
	details := ""
	if len(tx.Details) > 0 {
		if b, err := json.Marshal(tx.Details); err == nil {
			details = string(b)
		}
	}
	return []any{
		tx.ID,
		tx.Date,
		string(tx.Kind),
		tx.Description,
		tx.Amount.String(),
		tx.Category,
		string(tx.Method),
		strconv.FormatBool(tx.Recurrent),
		string(tx.Recurrence),
		tx.CardID,
		tx.RecurringFrom,
		details,
	}
}

// parseTransactionRow converts a sheet row into a Transaction. Rows without an
// ID or with an unreadable amount are skipped.
func parseTransactionRow(row []string) (core.Transaction, bool) {
	id := strings.TrimSpace(safeGet(row, 0))
	if id == "" {
		return core.Transaction{}, false
	}
	cents, ok := parseAmountCell(safeGet(row, 4))
	if !ok {
		return core.Transaction{}, false
	}
	tx := core.Transaction{
		ID:            id,
		Date:          strings.TrimSpace(safeGet(row, 1)),
		Kind:          core.Kind(strings.ToUpper(strings.TrimSpace(safeGet(row, 2)))),
		Description:   strings.TrimSpace(safeGet(row, 3)),
		Amount:        core.Money{Cents: cents},
		Category:      strings.TrimSpace(safeGet(row, 5)),
		Method:        core.PaymentMethod(strings.ToUpper(strings.TrimSpace(safeGet(row, 6)))),
		Recurrent:     parseBoolCell(safeGet(row, 7)),
		Recurrence:    core.RecurrenceType(strings.ToLower(strings.TrimSpace(safeGet(row, 8)))),
		CardID:        strings.TrimSpace(safeGet(row, 9)),
		RecurringFrom: strings.TrimSpace(safeGet(row, 10)),
	}
	if raw := strings.TrimSpace(safeGet(row, 11)); raw != "" {
		var details []core.LineItem
		if err := json.Unmarshal([]byte(raw), &details); err == nil {
			tx.Details = details
		}
	}
	return tx, true
}

func categoryRow(c core.Category) []any {
	return []any{c.ID, c.Name, c.Icon, c.Color, string(c.Kind)}
}

func parseCategoryRow(row []string) (core.Category, bool) {
	id := strings.TrimSpace(safeGet(row, 0))
	name := strings.TrimSpace(safeGet(row, 1))
	if id == "" || name == "" {
		return core.Category{}, false
	}
	return core.Category{
		ID:    id,
		Name:  name,
		Icon:  strings.TrimSpace(safeGet(row, 2)),
		Color: strings.TrimSpace(safeGet(row, 3)),
		Kind:  core.Kind(strings.ToUpper(strings.TrimSpace(safeGet(row, 4)))),
	}, true
}

func goalRow(g core.Goal) []any {
	return []any{g.ID, g.Name, g.Target.String(), g.Current.String(), g.Deadline, g.MonthlyAllocation.String(), g.Icon}
}

func parseGoalRow(row []string) (core.Goal, bool) {
	id := strings.TrimSpace(safeGet(row, 0))
	if id == "" {
		return core.Goal{}, false
	}
	target, ok := parseAmountCell(safeGet(row, 2))
	if !ok {
		return core.Goal{}, false
	}
	current, _ := parseAmountCell(safeGet(row, 3))
	monthly, _ := parseAmountCell(safeGet(row, 5))
	return core.Goal{
		ID:                id,
		Name:              strings.TrimSpace(safeGet(row, 1)),
		Target:            core.Money{Cents: target},
		Current:           core.Money{Cents: current},
		Deadline:          strings.TrimSpace(safeGet(row, 4)),
		MonthlyAllocation: core.Money{Cents: monthly},
		Icon:              strings.TrimSpace(safeGet(row, 6)),
	}, true
}

func cardRow(c core.CreditCard) []any {
	return []any{c.ID, c.Name, c.Bank, c.Limit.String(), c.Used.String(), strconv.Itoa(c.ClosingDay), strconv.Itoa(c.DueDay), c.Color}
}

func parseCardRow(row []string) (core.CreditCard, bool) {
	id := strings.TrimSpace(safeGet(row, 0))
	if id == "" {
		return core.CreditCard{}, false
	}
	limit, ok := parseAmountCell(safeGet(row, 3))
	if !ok {
		return core.CreditCard{}, false
	}
	used, _ := parseAmountCell(safeGet(row, 4))
	closing, _ := strconv.Atoi(strings.TrimSpace(safeGet(row, 5)))
	due, _ := strconv.Atoi(strings.TrimSpace(safeGet(row, 6)))
	return core.CreditCard{
		ID:         id,
		Name:       strings.TrimSpace(safeGet(row, 1)),
		Bank:       strings.TrimSpace(safeGet(row, 2)),
		Limit:      core.Money{Cents: limit},
		Used:       core.Money{Cents: used},
		ClosingDay: closing,
		DueDay:     due,
		Color:      strings.TrimSpace(safeGet(row, 7)),
	}, true
}

func profileRow(p core.UserProfile) []any {
	return []any{profileRowID, p.Name, p.Email, p.Avatar, p.MonthlyIncomeLimit.String(), p.MemberSince}
}

func parseProfileRow(row []string) (core.UserProfile, bool) {
	if strings.TrimSpace(safeGet(row, 0)) != profileRowID {
		return core.UserProfile{}, false
	}
	limit, _ := parseAmountCell(safeGet(row, 4))
	return core.UserProfile{
		Name:               strings.TrimSpace(safeGet(row, 1)),
		Email:              strings.TrimSpace(safeGet(row, 2)),
		Avatar:             strings.TrimSpace(safeGet(row, 3)),
		MonthlyIncomeLimit: core.Money{Cents: limit},
		MemberSince:        strings.TrimSpace(safeGet(row, 5)),
	}, true
}

// parseAmountCell reads an amount as typed by a person or written by this
// client: "1234.56", "1234,56", "R$ 1.234,56" and "1,234.56" are all
// accepted. The last separator is the decimal one, unless it is the only
// kind present and groups digits in threes ("1.234", "1,234,567"), which is
// read as thousands grouping.
func parseAmountCell(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "€")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return 0, false
	}
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
	case lastDot >= 0 && lastComma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case lastDot >= 0 && isGrouped(s, "."):
		s = strings.ReplaceAll(s, ".", "")
	case lastComma >= 0 && isGrouped(s, ","):
		s = strings.ReplaceAll(s, ",", "")
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return 0, false
	}
	return cents, true
}

// isGrouped reports whether every group after the first sep holds exactly
// three digits.
func isGrouped(s, sep string) bool {
	parts := strings.Split(s, sep)
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	head := parts[0]
	return len(head) > 0 && len(head) <= 3 && head[0] != '0'
}

func parseBoolCell(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "sim", "x":
		return true
	}
	return false
}

func toStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func safeGet(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
