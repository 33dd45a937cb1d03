// Package decimal wraps shopspring/decimal with the coercion and rounding
// helpers the agent uses for monetary values.
package decimal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero.
var Zero = decimal.Zero

// FromWire coerces a wire numeric field to a decimal. Empty or malformed
// values become zero; response fields are frequently absent.
func FromWire(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero
	}
	return d
}

// FromString parses a decimal from a string.
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses a decimal from a string, panics on error. Test use.
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MinorUnits converts an amount to an integer count of minor currency
// units, for exact equality comparisons.
func MinorUnits(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Gross computes the gross value of net at a percentage rate, rounded to
// 2 places.
func Gross(net, ratePercent decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return net.Mul(ratePercent.Div(hundred).Add(decimal.NewFromInt(1))).Round(2)
}

// Sum adds a slice of decimals.
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}
