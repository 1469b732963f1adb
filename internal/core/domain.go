package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "INCOME"
	KindExpense Kind = "EXPENSE"

	MethodCash   PaymentMethod = "CASH"
	MethodDebit  PaymentMethod = "DEBIT"
	MethodCredit PaymentMethod = "CREDIT"

	Monthly RecurrenceType = "monthly"
	Yearly  RecurrenceType = "yearly"
	Weekly  RecurrenceType = "weekly"
	Daily   RecurrenceType = "daily"
)

// DefaultReserveCategory is the category name treated as the emergency reserve
// when no other name is configured.
const DefaultReserveCategory = "Reserva de Emergência"

type (
	Kind           string
	PaymentMethod  string
	RecurrenceType string

	Date struct {
		time.Time
	}

	// LineItem is one entry of a transaction's itemized details as returned by
	// the extraction collaborator. It is never reconciled against the
	// transaction amount.
	LineItem struct {
		Label    string `json:"item"`
		Amount   Money  `json:"amount"`
		Quantity string `json:"quantity,omitempty"`
		Category string `json:"category,omitempty"`
	}

	Transaction struct {
		ID          string         `json:"id"`
		Amount      Money          `json:"amount"`
		Description string         `json:"description"`
		Category    string         `json:"category"` // name reference, not an ID
		Kind        Kind           `json:"type"`
		Date        string         `json:"date"` // Y-M-D
		Method      PaymentMethod  `json:"paymentMethod"`
		Recurrent   bool           `json:"isRecurrent"`
		Recurrence  RecurrenceType `json:"recurrenceType,omitempty"`
		CardID      string         `json:"cardId,omitempty"`
		Details     []LineItem     `json:"details,omitempty"`
		// RecurringFrom is set on occurrences generated from a recurrent
		// transaction and holds the ID of that transaction.
		RecurringFrom string `json:"recurringFrom,omitempty"`
	}

	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Icon  string `json:"iconName"`
		Color string `json:"color"`
		Kind  Kind   `json:"type"`
	}

	Goal struct {
		ID                string `json:"id"`
		Name              string `json:"name"`
		Target            Money  `json:"targetAmount"`
		Current           Money  `json:"currentAmount"`
		Deadline          string `json:"deadline,omitempty"`
		MonthlyAllocation Money  `json:"monthlyAllocation"`
		Icon              string `json:"icon,omitempty"`
	}

	CreditCard struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Bank       string `json:"bank,omitempty"`
		Limit      Money  `json:"limit"`
		Used       Money  `json:"used"`
		ClosingDay int    `json:"closingDay"`
		DueDay     int    `json:"dueDay"`
		Color      string `json:"color"`
	}

	UserProfile struct {
		Name               string `json:"name"`
		Email              string `json:"email"`
		Avatar             string `json:"avatar"`
		MonthlyIncomeLimit Money  `json:"monthlyIncomeLimit"`
		MemberSince        string `json:"memberSince"`
	}

	// Snapshot is the set of collections the metrics engine works on.
	Snapshot struct {
		Transactions []Transaction
		Categories   []Category
		Goals        []Goal
		Cards        []CreditCard
		Profile      UserProfile
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrMissingID        = errors.New("missing identifier")
	ErrEmptyDescription = errors.New("empty description")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidKind      = errors.New("invalid transaction type")
	ErrInvalidMethod    = errors.New("invalid payment method")
	ErrInvalidRecurring = errors.New("invalid recurrence type")
)

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case MethodCash, MethodDebit, MethodCredit:
		return true
	}
	return false
}

func (r RecurrenceType) Valid() bool {
	switch r {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date as Y-M-D.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// SplitDate breaks a Y-M-D string into its numeric parts. It reports false
// unless the string has exactly three dash-separated integer components with
// a month in 1..12 and a day in 1..31.
func SplitDate(s string) (year, month, day int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, false
		}
		nums[i] = n
	}
	if nums[1] < 1 || nums[1] > 12 || nums[2] < 1 || nums[2] > 31 {
		return 0, 0, 0, false
	}
	return nums[0], nums[1], nums[2], true
}

// ParseDate parses a Y-M-D string into a Date.
func ParseDate(s string) (Date, error) {
	y, m, d, ok := SplitDate(s)
	if !ok {
		return Date{}, ErrInvalidDate
	}
	return NewDate(y, m, d), nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionLong
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if !t.Method.Valid() {
		return ErrInvalidMethod
	}
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	if t.Recurrent && t.Recurrence != "" && !t.Recurrence.Valid() {
		return ErrInvalidRecurring
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.Target.Validate(); err != nil {
		return err
	}
	if g.Current.Cents < 0 || g.MonthlyAllocation.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if err := c.Limit.Validate(); err != nil {
		return err
	}
	if c.Used.Cents < 0 {
		return ErrInvalidAmount
	}
	if c.ClosingDay < 0 || c.ClosingDay > 31 || c.DueDay < 0 || c.DueDay > 31 {
		return ErrInvalidDay
	}
	return nil
}
