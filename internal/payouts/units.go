package payouts

import "github.com/shopspring/decimal"

// ToUnits converts a planck-denominated total into token units by shifting
// the decimal point. It is used for display only; Summary.Total is never
// rounded.
func ToUnits(total float64, decimals int32) decimal.Decimal {
	return decimal.NewFromFloat(total).Shift(-decimals)
}

// FormatUnits renders ToUnits with the symbol appended when one is set.
func FormatUnits(total float64, decimals int32, symbol string) string {
	s := ToUnits(total, decimals).String()
	if symbol == "" {
		return s
	}
	return s + " " + symbol
}
