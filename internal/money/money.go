// Package money provides fixed-point currency arithmetic for cart and
// order totals. Amounts are kept with two decimal places; every operation
// rounds half away from zero the way the backend does.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Money struct {
	dec decimal.Decimal
}

func Zero() Money {
	return Money{}
}

func FromFloat(f float64) Money {
	return Money{dec: decimal.NewFromFloat(f).Round(2)}
}

func FromCents(c int64) Money {
	return Money{dec: decimal.New(c, -2)}
}

func (m Money) Add(o Money) Money {
	return Money{dec: m.dec.Add(o.dec)}
}

func (m Money) Sub(o Money) Money {
	return Money{dec: m.dec.Sub(o.dec)}
}

// MulInt scales the amount by an item quantity.
func (m Money) MulInt(n int) Money {
	return Money{dec: m.dec.Mul(decimal.NewFromInt(int64(n)))}
}

// Percent returns p percent of the amount, rounded to two decimal places.
func (m Money) Percent(p float64) Money {
	return Money{dec: m.dec.Mul(decimal.NewFromFloat(p)).Div(decimal.NewFromInt(100)).Round(2)}
}

// Min returns the smaller of the two amounts.
func (m Money) Min(o Money) Money {
	if m.dec.LessThan(o.dec) {
		return m
	}
	return o
}

func (m Money) IsZero() bool {
	return m.dec.IsZero()
}

func (m Money) IsNegative() bool {
	return m.dec.IsNegative()
}

func (m Money) Equal(o Money) bool {
	return m.dec.Equal(o.dec)
}

func (m Money) LessThan(o Money) bool {
	return m.dec.LessThan(o.dec)
}

func (m Money) Cents() int64 {
	return m.dec.Round(2).Shift(2).IntPart()
}

func (m Money) Float64() float64 {
	f, _ := m.dec.Float64()
	return f
}

func (m Money) String() string {
	return m.dec.StringFixed(2)
}

// MarshalJSON encodes the amount as a plain JSON number, matching the
// backend's numeric monetary fields.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.dec.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid monetary value %s: %w", data, err)
	}
	m.dec = d.Round(2)
	return nil
}
