// Package core provides the household budget domain types.
//
// This file contains the fixed-point Money type, parsing of user-entered
// amounts and the supported household currencies.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	NGN Currency = "NGN"
	CAD Currency = "CAD"
	AUD Currency = "AUD"
)

// Currency is an ISO 4217 code supported for a household.
type Currency string

var currencySymbols = map[Currency]string{
	USD: "$",
	EUR: "€",
	GBP: "£",
	NGN: "₦",
	CAD: "C$",
	AUD: "A$",
}

// Currencies lists the supported codes in display order.
func Currencies() []Currency {
	return []Currency{USD, EUR, GBP, NGN, CAD, AUD}
}

func (c Currency) Valid() bool {
	_, ok := currencySymbols[c]
	return ok
}

// Symbol returns the display symbol, "$" for unknown codes.
func (c Currency) Symbol() string {
	if s, ok := currencySymbols[c]; ok {
		return s
	}
	return "$"
}

// Format renders an amount with the currency symbol, e.g. "$85.00".
func (c Currency) Format(m Money) string {
	if m.Cents < 0 {
		return "-" + c.Symbol() + Money{Cents: -m.Cents}.String()
	}
	return c.Symbol() + m.String()
}

// Money is an amount in integer cents. Sums never go through floating point.
type Money struct {
	Cents int64
}

// Cents is a shorthand constructor used heavily by tests and aggregators.
func Cents(c int64) Money {
	return Money{Cents: c}
}

// maxAmount bounds parsed amounts well inside int64 cents.
var maxAmount = decimal.New(1, 13)

// ParseAmount converts a user-entered decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Signs, exponents, zero and
// non-numeric input are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,34")  -> 1234 cents
//	ParseAmount("12.345") -> 1235 cents
//	ParseAmount("12.344") -> 1234 cents
func ParseAmount(s string) (Money, error) {
	m, err := parseUnsigned(s)
	if err != nil {
		return Money{}, err
	}
	if m.Cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// ParseBound is ParseAmount for range limits such as filter bounds: zero is
// accepted, everything else ParseAmount rejects still is.
func ParseBound(s string) (Money, error) {
	return parseUnsigned(s)
}

func parseUnsigned(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return Money{}, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	if s == "." {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	return FromDecimal(d), nil
}

// FromDecimal rounds a decimal to the nearest cent, halves away from zero.
func FromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// Decimal returns the exact decimal value of the amount.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }
func (m Money) IsPositive() bool  { return m.Cents > 0 }

// Div splits the amount n ways, rounded to the nearest cent. Div by a
// non-positive n is zero.
func (m Money) Div(n int) Money {
	if n <= 0 {
		return Money{}
	}
	return FromDecimal(m.Decimal().Div(decimal.NewFromInt(int64(n))))
}

// Float returns the value in major units for ratio and display math.
// Use Cents for sums.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// PercentOf returns m as a percentage of total, or 0 when total is not positive.
func (m Money) PercentOf(total Money) float64 {
	if total.Cents <= 0 {
		return 0
	}
	return float64(m.Cents) * 100 / float64(total.Cents)
}

// String renders the amount with two decimals, e.g. "85.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a plain JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string. Magnitudes at or
// above maxAmount are rejected.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
		}
	} else {
		raw = string(data)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w: %s out of range", ErrInvalidAmount, data)
	}
	*m = FromDecimal(d)
	return nil
}

// Sum adds up the amounts returned by fn for every item.
func Sum[T any](items []T, fn func(T) Money) Money {
	var total Money
	for _, it := range items {
		total = total.Add(fn(it))
	}
	return total
}
