// Package settlement projects accrual-basis ledger entries onto the dates their
// cash actually clears. It resolves payment-method settlement rules, splits
// amounts into installments, aggregates the resulting parcels into daily and
// monthly series and reconciles those series against a real bank balance.
//
// Everything in this package is a pure function of its inputs. "Today" is
// always passed in explicitly (see Clock) so results are reproducible.
package settlement

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Method is the canonical payment method a free-text label resolves to
type Method string

const (
	MethodCredito       Method = "CREDITO"
	MethodDebito        Method = "DEBITO"
	MethodPix           Method = "PIX"
	MethodBoleto        Method = "BOLETO"
	MethodCheque        Method = "CHEQUE"
	MethodTransferencia Method = "TRANSFERENCIA"
	MethodConvenio      Method = "CONVENIO"
	MethodDinheiro      Method = "DINHEIRO"
	MethodOutro         Method = "OUTRO"
)

// methodRule maps label keywords to a method. Rules are evaluated in order and
// the first rule with any matching keyword wins, so a label holding both
// "CREDITO" and "CONVENIO" resolves to CREDITO.
type methodRule struct {
	method   Method
	keywords []string
}

var methodRules = []methodRule{
	{MethodCredito, []string{"CREDITO"}},
	{MethodDebito, []string{"DEBITO"}},
	{MethodPix, []string{"PIX"}},
	{MethodBoleto, []string{"BOLETO"}},
	{MethodCheque, []string{"CHEQUE"}},
	{MethodTransferencia, []string{"TRANSFER", "TED", "DOC"}},
	{MethodConvenio, []string{"CONVENIO"}},
	{MethodDinheiro, []string{"DINHEIRO", "CASH"}},
}

// NormalizeLabel strips diacritics and upper-cases a label
func NormalizeLabel(label string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	result, _, err := transform.String(t, label)
	if err != nil {
		result = label
	}
	return strings.ToUpper(strings.TrimSpace(result))
}

// ResolveMethod classifies a payment-method label. Unknown labels fall through
// to MethodOutro.
func ResolveMethod(label string) Method {
	normalized := NormalizeLabel(label)
	if normalized == "" {
		return MethodOutro
	}
	for _, rule := range methodRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(normalized, keyword) {
				return rule.method
			}
		}
	}
	return MethodOutro
}

// BaseOffset describes how the base settlement date is derived from the issue
// date when no explicit settlement date is recorded.
type BaseOffset int

const (
	OffsetNone BaseOffset = iota
	OffsetThirtyDays
	OffsetOneBusinessDay
)

// Spacing describes how installment i is shifted from the base date
type Spacing int

const (
	SpacingNone Spacing = iota
	SpacingThirtyDays
	SpacingMonthly
)

// Policy is the settlement-offset policy for a canonical method
type Policy struct {
	Method  Method
	Base    BaseOffset
	Spacing Spacing
}

// PolicyFor returns the offset policy of a method
func PolicyFor(m Method) Policy {
	switch m {
	case MethodBoleto, MethodCheque:
		return Policy{Method: m, Base: OffsetNone, Spacing: SpacingNone}
	case MethodCredito, MethodConvenio:
		return Policy{Method: m, Base: OffsetThirtyDays, Spacing: SpacingThirtyDays}
	case MethodDebito:
		// Installments without manual dates fall one calendar month apart.
		return Policy{Method: m, Base: OffsetOneBusinessDay, Spacing: SpacingMonthly}
	default:
		return Policy{Method: m, Base: OffsetNone, Spacing: SpacingMonthly}
	}
}

// baseDate applies the policy's base offset to the issue date
func (p Policy) baseDate(issue time.Time) time.Time {
	switch p.Base {
	case OffsetThirtyDays:
		return AddCalendarDays(issue, 30)
	case OffsetOneBusinessDay:
		return AddBusinessDays(issue, 1)
	default:
		return StartOfDay(issue)
	}
}

// installmentDate shifts the base date for installment index i
func (p Policy) installmentDate(base time.Time, index int) time.Time {
	if index == 0 {
		return base
	}
	switch p.Spacing {
	case SpacingThirtyDays:
		return AddCalendarDays(base, 30*index)
	case SpacingMonthly:
		return AddCalendarMonths(base, index)
	default:
		return base
	}
}
