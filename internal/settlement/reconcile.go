package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconcileDaily shifts the series so the bucket dated today carries
// realBalance. The shape of the curve before and after today is preserved.
// It returns the applied offset.
//
// The seed is recovered from the first bucket, so
// offset = realBalance - (seed + sum of net through today).
func ReconcileDaily(buckets []DailyBucket, today time.Time, realBalance decimal.Decimal) decimal.Decimal {
	if len(buckets) == 0 {
		return decimal.Zero
	}

	accumulated := buckets[0].CumulativeBalance.Sub(buckets[0].Net)
	for _, b := range buckets {
		if !onOrBefore(b.Date, today) {
			break
		}
		accumulated = b.CumulativeBalance
	}

	offset := realBalance.Sub(accumulated)
	for i := range buckets {
		buckets[i].ReconciledBalance = buckets[i].CumulativeBalance.Add(offset)
	}
	return offset
}

// ReconcileMonthly anchors the monthly series on the month holding today
func ReconcileMonthly(buckets []MonthlyBucket, today time.Time, realBalance decimal.Decimal) decimal.Decimal {
	if len(buckets) == 0 {
		return decimal.Zero
	}

	current := monthKey(today.Year(), today.Month())
	accumulated := buckets[0].CumulativeBalance.Sub(buckets[0].Net)
	for _, b := range buckets {
		if monthKey(b.Year, b.Month) > current {
			break
		}
		accumulated = b.CumulativeBalance
	}

	offset := realBalance.Sub(accumulated)
	for i := range buckets {
		buckets[i].ReconciledBalance = buckets[i].CumulativeBalance.Add(offset)
	}
	return offset
}
