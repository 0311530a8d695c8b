package domain

import (
	"fmt"
	"math"
	"strconv"
)

// Money is a currency amount in cents.
// All arithmetic stays in integer cents; conversion to decimal happens at presentation time.
type Money int64

// MoneyFromFloat converts a decimal amount (e.g. 4.50) into cents, rounding half away from zero.
func MoneyFromFloat(v float64) Money {
	return Money(math.Round(v * 100))
}

// Float returns the amount as a decimal number of currency units.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// Mul returns m multiplied by an integer quantity.
func (m Money) Mul(qty int) Money {
	return m * Money(qty)
}

// ApplyRate returns m*rate rounded to the nearest cent.
func (m Money) ApplyRate(rate float64) Money {
	return Money(math.Round(float64(m) * rate))
}

// String formats the amount as "$4.50".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a decimal number with two places.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Float(), 'f', 2, 64)), nil
}

// UnmarshalJSON decodes a decimal number into cents.
func (m *Money) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid money value %s: %w", data, err)
	}
	*m = MoneyFromFloat(v)
	return nil
}

// MarshalYAML encodes the amount as a decimal number.
func (m Money) MarshalYAML() (any, error) {
	return m.Float(), nil
}
