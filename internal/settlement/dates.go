package settlement

import "time"

// Clock supplies the current instant. Production code uses SystemClock; tests
// pin "today" with FixedClock.
type Clock func() time.Time

// SystemClock returns time.Now
func SystemClock() time.Time { return time.Now() }

// FixedClock returns a Clock that always reports t
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddCalendarDays adds n calendar days and normalizes to midnight
func AddCalendarDays(t time.Time, n int) time.Time {
	return StartOfDay(t).AddDate(0, 0, n)
}

// AddBusinessDays walks forward one calendar day at a time, counting only
// Monday through Friday, until n business days have been counted.
func AddBusinessDays(t time.Time, n int) time.Time {
	current := StartOfDay(t)
	for added := 0; added < n; {
		current = current.AddDate(0, 0, 1)
		if isBusinessDay(current) {
			added++
		}
	}
	return current
}

// AddCalendarMonths adds n months. Days past the end of the target month
// overflow into the following month (Jan 31 + 1 month = Mar 3 or Mar 2).
func AddCalendarMonths(t time.Time, n int) time.Time {
	return StartOfDay(t).AddDate(0, n, 0)
}

func isBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// sameDay reports whether a and b fall on the same calendar day
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// onOrBefore reports whether day a is not after day b, ignoring clock time
func onOrBefore(a, b time.Time) bool {
	return !StartOfDay(a).After(StartOfDay(b))
}
