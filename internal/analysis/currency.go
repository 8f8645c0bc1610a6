package analysis

import (
	"strings"

	"github.com/shopspring/decimal"
)

const currencySymbol = "€"

// FormatCurrency renders an amount as "1.234,56 €", rounding half away from
// zero to cents. Non-finite values render as zero.
func FormatCurrency(v float64) string {
	if !isFinite(v) {
		return "0,00 " + currencySymbol
	}

	d := decimal.NewFromFloat(v).Round(2)
	negative := d.IsNegative()
	if negative {
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(cents)
	b.WriteByte(' ')
	b.WriteString(currencySymbol)

	return b.String()
}
