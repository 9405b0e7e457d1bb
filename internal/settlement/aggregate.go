package settlement

import (
	"sort"
	"time"

	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Window bounds an aggregation. From and To are inclusive calendar days and
// either may be nil for an open end. Today is the anchor day that always gets
// a bucket when it falls inside the window.
type Window struct {
	From  *time.Time
	To    *time.Time
	Today time.Time
}

func (w Window) containsDay(d time.Time) bool {
	if w.From != nil && StartOfDay(d).Before(StartOfDay(*w.From)) {
		return false
	}
	if w.To != nil && StartOfDay(d).After(StartOfDay(*w.To)) {
		return false
	}
	return true
}

func (w Window) containsMonth(year int, month time.Month) bool {
	key := monthKey(year, month)
	if w.From != nil && key < monthKey(w.From.Year(), w.From.Month()) {
		return false
	}
	if w.To != nil && key > monthKey(w.To.Year(), w.To.Month()) {
		return false
	}
	return true
}

func monthKey(year int, month time.Month) int {
	return year*12 + int(month) - 1
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// DailyBucket is the cash movement of a single day
type DailyBucket struct {
	Date              time.Time       `json:"date"`
	TotalIn           decimal.Decimal `json:"total_in"`
	TotalOut          decimal.Decimal `json:"total_out"`
	Net               decimal.Decimal `json:"net"`
	CumulativeBalance decimal.Decimal `json:"cumulative_balance"`
	ReconciledBalance decimal.Decimal `json:"reconciled_balance"`
}

// MonthlyBucket is the cash movement of a calendar month
type MonthlyBucket struct {
	Year              int             `json:"year"`
	Month             time.Month      `json:"month"`
	TotalIn           decimal.Decimal `json:"total_in"`
	TotalOut          decimal.Decimal `json:"total_out"`
	Net               decimal.Decimal `json:"net"`
	CumulativeBalance decimal.Decimal `json:"cumulative_balance"`
	ReconciledBalance decimal.Decimal `json:"reconciled_balance"`
}

// AggregateDaily groups parcels by scheduled day inside the window and runs a
// prefix sum of net starting at seed. Buckets come out sorted by date.
func AggregateDaily(parcels []CashParcel, window Window, seed decimal.Decimal) []DailyBucket {
	byDay := make(map[int]*DailyBucket)
	bucketFor := func(day time.Time) *DailyBucket {
		key := dayKey(day)
		if b, ok := byDay[key]; ok {
			return b
		}
		b := &DailyBucket{Date: StartOfDay(day), TotalIn: decimal.Zero, TotalOut: decimal.Zero}
		byDay[key] = b
		return b
	}

	for _, p := range parcels {
		if !window.containsDay(p.ScheduledDate) {
			continue
		}
		b := bucketFor(p.ScheduledDate)
		if p.Kind == shared.EntryKindExpense {
			b.TotalOut = b.TotalOut.Add(p.Amount)
		} else {
			b.TotalIn = b.TotalIn.Add(p.Amount)
		}
	}

	if !window.Today.IsZero() && window.containsDay(window.Today) {
		bucketFor(window.Today)
	}

	buckets := make([]DailyBucket, 0, len(byDay))
	for _, b := range byDay {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date.Before(buckets[j].Date)
	})

	running := seed
	for i := range buckets {
		buckets[i].Net = buckets[i].TotalIn.Sub(buckets[i].TotalOut)
		running = running.Add(buckets[i].Net)
		buckets[i].CumulativeBalance = running
		buckets[i].ReconciledBalance = running
	}
	return buckets
}

// AggregateMonthly is AggregateDaily at (year, month) granularity. The month
// holding today is always present when inside the window.
func AggregateMonthly(parcels []CashParcel, window Window, seed decimal.Decimal) []MonthlyBucket {
	byMonth := make(map[int]*MonthlyBucket)
	bucketFor := func(year int, month time.Month) *MonthlyBucket {
		key := monthKey(year, month)
		if b, ok := byMonth[key]; ok {
			return b
		}
		b := &MonthlyBucket{Year: year, Month: month, TotalIn: decimal.Zero, TotalOut: decimal.Zero}
		byMonth[key] = b
		return b
	}

	for _, p := range parcels {
		year, month := p.ScheduledDate.Year(), p.ScheduledDate.Month()
		if !window.containsMonth(year, month) {
			continue
		}
		b := bucketFor(year, month)
		if p.Kind == shared.EntryKindExpense {
			b.TotalOut = b.TotalOut.Add(p.Amount)
		} else {
			b.TotalIn = b.TotalIn.Add(p.Amount)
		}
	}

	if !window.Today.IsZero() && window.containsMonth(window.Today.Year(), window.Today.Month()) {
		bucketFor(window.Today.Year(), window.Today.Month())
	}

	buckets := make([]MonthlyBucket, 0, len(byMonth))
	for _, b := range byMonth {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return monthKey(buckets[i].Year, buckets[i].Month) < monthKey(buckets[j].Year, buckets[j].Month)
	})

	running := seed
	for i := range buckets {
		buckets[i].Net = buckets[i].TotalIn.Sub(buckets[i].TotalOut)
		running = running.Add(buckets[i].Net)
		buckets[i].CumulativeBalance = running
		buckets[i].ReconciledBalance = running
	}
	return buckets
}
