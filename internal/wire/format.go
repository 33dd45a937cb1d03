package wire

import "github.com/shopspring/decimal"

// FormatAmount renders a monetary or quantity value with exactly three
// decimal digits and a dot separator, independent of the host locale.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(3)
}

// FormatBool renders the literal true/false tokens the schema expects,
// never 1/0.
func FormatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
