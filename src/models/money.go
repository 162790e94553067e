package models

import (
	"fmt"
	"math"
	"strconv"
)

// Money is a monetary amount in currency minor units (cents). All ledger
// amounts and tax figures are carried as Money so that chained sums and
// bracket arithmetic never accumulate binary floating-point drift; floats
// only appear at the JSON boundary and in rate multiplications, each of
// which rounds once to a cent.
type Money int64

// MoneyFromFloat converts a decimal currency amount (e.g. 123.45) to Money.
func MoneyFromFloat(v float64) Money {
	return Money(math.Round(v * 100))
}

// ParseMoney parses a decimal string such as "123.45" into Money.
func ParseMoney(s string) (Money, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid monetary amount %q: %w", s, err)
	}
	return MoneyFromFloat(v), nil
}

// Float64 returns the amount as a decimal number of currency units.
func (m Money) Float64() float64 {
	return float64(m) / 100
}

// MulRate multiplies the amount by a rate (e.g. 0.06 for 6%), rounding the
// result to the nearest cent.
func (m Money) MulRate(rate float64) Money {
	return Money(math.Round(float64(m) * rate))
}

// DivBy divides the amount by a positive divisor, rounding to the nearest cent.
func (m Money) DivBy(divisor float64) Money {
	if divisor == 0 {
		return 0
	}
	return Money(math.Round(float64(m) / divisor))
}

// String renders the amount with two fraction digits, e.g. "75.90".
func (m Money) String() string {
	return strconv.FormatFloat(m.Float64(), 'f', 2, 64)
}

// MarshalJSON emits the amount as a plain decimal JSON number with two
// fraction digits, per the API contract.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a plain JSON number (or a numeric string, which some
// clients send for currency fields) and stores it as cents.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
