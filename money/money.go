// Package money holds the decimal amount type exchanged with the finance API
// and the display helpers used by the command line.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal monetary value. It is sent to the API as a bare JSON
// number and accepts both numbers and numeric strings when decoding.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// Parse accepts "1234.56" and the comma decimal form "1234,56".
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Decimal: d}, nil
}

func FromFloat(f float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(f)}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.Decimal.UnmarshalJSON(data)
}

// FormatBRL renders the amount as Brazilian reais, e.g. "R$ 1.234,56".
func FormatBRL(a Amount) string {
	neg := a.IsNegative()
	fixed := a.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return sign + "R$ " + b.String() + "," + frac
}
