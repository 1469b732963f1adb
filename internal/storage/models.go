package storage

import "time"

type Transaction struct {
	ID             string
	AmountCents    int64
	Description    string
	Category       string
	Type           string
	Date           string
	PaymentMethod  string
	IsRecurrent    bool
	RecurrenceType string
	RecurringFrom  string
	CardID         string
	Details        string
	Version        int64
	SyncStatus     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Category struct {
	ID       string
	Name     string
	IconName string
	Color    string
	Type     string
}

type Goal struct {
	ID                     string
	Name                   string
	TargetAmountCents      int64
	CurrentAmountCents     int64
	Deadline               string
	MonthlyAllocationCents int64
	Icon                   string
}

type CreditCard struct {
	ID         string
	Name       string
	Bank       string
	LimitCents int64
	UsedCents  int64
	ClosingDay int64
	DueDay     int64
	Color      string
}

type Profile struct {
	Name                    string
	Email                   string
	Avatar                  string
	MonthlyIncomeLimitCents int64
	MemberSince             string
}
