package settlement

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	plainAmount     = regexp.MustCompile(`^-?\d+([.,]\d+)?$`)
	groupedBRAmount = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+(,\d+)?$`)
)

// ToAmount converts a raw stored amount into a decimal. Legacy rows carry
// amounts as free text, so anything that does not parse (empty, "abc", "NaN")
// becomes zero instead of an error. Negative values are kept as-is.
//
// Accepted forms: "1234.56", "1234,56" and "1.234,56". Any other grouping,
// such as "1,234.56", is ambiguous and yields zero.
func ToAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)

	switch {
	case plainAmount.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	case groupedBRAmount.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	default:
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ToInstallmentCount parses an installment count, defaulting to 1 for
// missing, non-numeric or non-positive values.
func ToInstallmentCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02",
	"02/01/2006",
}

// ParseDate parses a stored date and normalizes it to midnight in loc.
// Date-only values are read as calendar days in loc; timestamps carrying an
// offset are converted to loc first.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		return StartOfDay(t.In(loc)), true
	}
	return time.Time{}, false
}

// ParseOptionalDate is ParseDate returning nil when the value is absent or invalid
func ParseOptionalDate(raw string, loc *time.Location) *time.Time {
	t, ok := ParseDate(raw, loc)
	if !ok {
		return nil
	}
	return &t
}
