package settlement

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Split divides total into n installments. Every installment gets the total
// divided by n truncated down to cents; the leftover cents go to the last one,
// so the parts always sum to the total rounded to cents.
func Split(total decimal.Decimal, n int) []decimal.Decimal {
	if n < 1 {
		n = 1
	}
	total = total.Round(2)
	count := decimal.NewFromInt(int64(n))

	base := total.Div(count).Mul(hundred).Floor().Div(hundred)
	parts := make([]decimal.Decimal, n)
	for i := range parts {
		parts[i] = base
	}

	remainder := total.Sub(base.Mul(count)).Mul(hundred).Round(0).Div(hundred)
	parts[n-1] = parts[n-1].Add(remainder)
	return parts
}
