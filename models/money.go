package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in cents.
// It marshals to JSON as a decimal dollar amount (e.g. 82.50) so the spreadsheet
// backend and the storefront see plain numbers.
type Money int64

// MoneyFromFloat converts a dollar amount to cents, rounding half away from zero.
func MoneyFromFloat(dollars float64) Money {
	return Money(math.Round(dollars * 100))
}

// ParseMoney parses strings like "82.5", "$82.50" or "1,200.00".
func ParseMoney(s string) (Money, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "$")
	clean = strings.ReplaceAll(clean, ",", "")
	if clean == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return MoneyFromFloat(f), nil
}

// Times returns the amount multiplied by qty.
func (m Money) Times(qty int) Money {
	return m * Money(qty)
}

// Dollars returns the amount as a float dollar value.
func (m Money) Dollars() float64 {
	return float64(m) / 100
}

// String returns the amount with two decimals and no currency symbol.
func (m Money) String() string {
	neg := m < 0
	v := int64(m)
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d.%02d", v/100, v%100)
	if neg {
		return "-" + s
	}
	return s
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*m = 0
		return nil
	}
	raw = strings.Trim(raw, `"`)
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
