package settlement

import (
	"encoding/json"
	"strings"
	"time"
)

// manualDateKeys are the object fields that may hold an installment date, in
// lookup order.
var manualDateKeys = []string{"vencimento", "due_date", "data", "date"}

// ManualDates is the parsed form of a row's per-installment override dates.
// It is either Valid with at least one date or Missing; the parser never
// returns an error.
type ManualDates struct {
	dates []time.Time
}

// ValidManualDates wraps a non-empty ordered date list. An empty list yields Missing.
func ValidManualDates(dates []time.Time) ManualDates {
	if len(dates) == 0 {
		return ManualDates{}
	}
	copied := make([]time.Time, len(dates))
	copy(copied, dates)
	return ManualDates{dates: copied}
}

// MissingManualDates is the absent variant
func MissingManualDates() ManualDates { return ManualDates{} }

// Valid reports whether override dates are present
func (m ManualDates) Valid() bool { return len(m.dates) > 0 }

// Dates returns the override dates, nil when Missing
func (m ManualDates) Dates() []time.Time {
	if !m.Valid() {
		return nil
	}
	out := make([]time.Time, len(m.dates))
	copy(out, m.dates)
	return out
}

// ParseManualDates decodes the raw JSON stored for manual installment dates.
// Both `["2026-01-10", ...]` and `[{"vencimento": "2026-01-10"}, ...]` are
// accepted. Any element that cannot be read makes the whole value Missing.
func ParseManualDates(raw string, loc *time.Location) ManualDates {
	s := strings.TrimSpace(raw)
	if s == "" || s == "null" {
		return MissingManualDates()
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(s), &elements); err != nil {
		// Some rows were double-encoded as a JSON string holding the array.
		var inner string
		if errInner := json.Unmarshal([]byte(s), &inner); errInner != nil || inner == s {
			return MissingManualDates()
		}
		return ParseManualDates(inner, loc)
	}

	dates := make([]time.Time, 0, len(elements))
	for _, element := range elements {
		d, ok := manualDateElement(element, loc)
		if !ok {
			return MissingManualDates()
		}
		dates = append(dates, d)
	}
	return ValidManualDates(dates)
}

func manualDateElement(element json.RawMessage, loc *time.Location) (time.Time, bool) {
	var asString string
	if err := json.Unmarshal(element, &asString); err == nil {
		return ParseDate(asString, loc)
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(element, &asObject); err != nil {
		return time.Time{}, false
	}
	for _, key := range manualDateKeys {
		value, ok := asObject[key]
		if !ok {
			continue
		}
		var field string
		if err := json.Unmarshal(value, &field); err != nil {
			return time.Time{}, false
		}
		return ParseDate(field, loc)
	}
	return time.Time{}, false
}
