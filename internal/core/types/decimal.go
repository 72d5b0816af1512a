// Package types provides common type aliases and utilities.
package types

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
// NaN and infinities are rejected because they cannot be represented exactly.
func NewMoney(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("amount is not a finite number: %v", f)
	}
	return decimal.NewFromFloat(f), nil
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// NewMoneyFromInt creates a Money value from a whole number of currency units.
func NewMoneyFromInt(v int64) Money {
	return decimal.NewFromInt(v)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Sum adds all values. An empty list sums to zero.
func Sum(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Percent returns base × rate / 100 exactly (a decimal shift, never a rounded division).
func Percent(base, rate Money) Money {
	return base.Mul(rate).Shift(-2)
}

// Round rounds half away from zero to the given number of decimal places.
func Round(m Money, places int32) Money {
	return m.Round(places)
}
