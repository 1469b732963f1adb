package metrics

import (
	"fmt"
	"sort"
	"time"

	"fincontrol/internal/core"
)

// Granularity selects the calendar unit transactions are bucketed by.
type Granularity int

const (
	ByMonth Granularity = iota
	ByDay
)

// BucketKey identifies a calendar month (Day == 0) or a calendar day.
type BucketKey struct {
	Year  int
	Month int
	Day   int
}

// Bucket accumulates income and expense for one calendar unit.
type Bucket struct {
	Key     BucketKey  `json:"-"`
	Label   string     `json:"label"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Balance core.Money `json:"balance"`
}

func (k BucketKey) String() string {
	if k.Day == 0 {
		return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
	}
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, k.Month, k.Day)
}

func (k BucketKey) ordinal() int {
	return k.Year*10000 + k.Month*100 + k.Day
}

func (g Granularity) key(y, m, d int) BucketKey {
	if g == ByMonth {
		return BucketKey{Year: y, Month: m}
	}
	return BucketKey{Year: y, Month: m, Day: d}
}

// BucketTransactions groups transactions by month or by day. Keys in seed are
// materialized as zero buckets so a fixed window shows empty periods. Dates
// that do not split into year, month and day integers are skipped. The result
// is ordered chronologically.
func BucketTransactions(txs []core.Transaction, g Granularity, seed []BucketKey) []Bucket {
	buckets := make(map[BucketKey]*Bucket)
	get := func(k BucketKey) *Bucket {
		b, ok := buckets[k]
		if !ok {
			b = &Bucket{Key: k, Label: k.String()}
			buckets[k] = b
		}
		return b
	}

	for _, k := range seed {
		get(g.key(k.Year, k.Month, k.Day))
	}

	for _, tx := range txs {
		y, m, d, ok := core.SplitDate(tx.Date)
		if !ok {
			continue
		}
		b := get(g.key(y, m, d))
		switch tx.Kind {
		case core.KindIncome:
			b.Income = b.Income.Add(tx.Amount)
		case core.KindExpense:
			b.Expense = b.Expense.Add(tx.Amount)
		}
	}

	out := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		b.Balance = b.Income.Sub(b.Expense)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.ordinal() < out[j].Key.ordinal()
	})
	return out
}

// LastMonths returns the keys of the n calendar months ending with now's
// month, oldest first.
func LastMonths(now time.Time, n int) []BucketKey {
	if n <= 0 {
		return nil
	}
	keys := make([]BucketKey, n)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		t := first.AddDate(0, i-(n-1), 0)
		keys[i] = BucketKey{Year: t.Year(), Month: int(t.Month())}
	}
	return keys
}

// WindowBuckets buckets transactions by month and keeps only the n months
// ending with now's month.
func WindowBuckets(txs []core.Transaction, now time.Time, n int) []Bucket {
	seed := LastMonths(now, n)
	if len(seed) == 0 {
		return []Bucket{}
	}
	lo, hi := seed[0].ordinal(), seed[len(seed)-1].ordinal()
	all := BucketTransactions(txs, ByMonth, seed)
	out := make([]Bucket, 0, len(seed))
	for _, b := range all {
		if o := b.Key.ordinal(); o >= lo && o <= hi {
			out = append(out, b)
		}
	}
	return out
}

// BestMonth returns the bucket with the highest balance; the earliest wins
// ties. ok is false when buckets is empty.
func BestMonth(buckets []Bucket) (best Bucket, ok bool) {
	for i, b := range buckets {
		if i == 0 || b.Balance.Cents > best.Balance.Cents {
			best = b
		}
	}
	return best, len(buckets) > 0
}

// WorstMonth returns the bucket with the lowest balance; the earliest wins
// ties. ok is false when buckets is empty.
func WorstMonth(buckets []Bucket) (worst Bucket, ok bool) {
	for i, b := range buckets {
		if i == 0 || b.Balance.Cents < worst.Balance.Cents {
			worst = b
		}
	}
	return worst, len(buckets) > 0
}
