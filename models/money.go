package models

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits every amount is held at
const MoneyScale int32 = 2

// ZeroMoney is a convenience zero value at money scale
var ZeroMoney = decimal.New(0, -MoneyScale)

// NormalizeMoney rounds an amount to money scale
func NormalizeMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// ParseMoney parses a decimal string and rounds it to money scale
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return NormalizeMoney(d), nil
}

// SplitEvenly divides total into n parts in minor units. Every part gets total/n
// rounded down and the leftover minor units go to the first part, so the parts
// always sum to total exactly.
func SplitEvenly(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}

	minor := total.Shift(MoneyScale).IntPart()
	share := minor / int64(n)
	leftover := minor - share*int64(n)

	parts := make([]decimal.Decimal, n)
	for i := range parts {
		units := share
		if i == 0 {
			units += leftover
		}
		parts[i] = decimal.New(units, -MoneyScale)
	}
	return parts
}
