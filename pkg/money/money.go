// Package money centralizes decimal rounding rules for currency and rates.
package money

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	// CurrencyPlaces is the scale of every persisted or displayed amount.
	CurrencyPlaces = 2
	// RatePlaces is the scale of commission rates and margins.
	RatePlaces = 4
)

var (
	Zero    = decimal.Zero
	One     = decimal.NewFromInt(1)
	Hundred = decimal.NewFromInt(100)
)

// Round rounds to currency scale, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// RoundRate rounds to rate scale, half away from zero.
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RatePlaces)
}

// Percent returns part/whole*100 at currency scale, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return Zero
	}
	return Round(part.Mul(Hundred).Div(whole))
}

// Fixed renders d with exactly two decimals as a JSON number.
func Fixed(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(CurrencyPlaces))
}

// FixedRate renders a rate with four decimals as a JSON number.
func FixedRate(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(RatePlaces))
}

// Sum adds the values and rounds to currency scale.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return Round(total)
}

// MustParse parses a literal amount and panics on malformed input.
func MustParse(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}
