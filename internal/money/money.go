// Package money provides the integer minor-unit amount type used by the ledger.
//
// Amounts are counted in cents. Floating point is never used for money:
// decimal strings are parsed and formatted through shopspring/decimal and
// every split keeps its total exact by handing leftover cents out in a
// fixed order.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Amount is a signed count of minor currency units (cents).
type Amount int64

// Epsilon is the tolerance used when comparing a balance against zero.
const Epsilon Amount = 1

// minorDigits is the number of decimal places carried by an Amount.
const minorDigits = 2

var (
	ErrInvalidFormat = errors.New("money: invalid amount format")
	ErrTooPrecise    = errors.New("money: amount has more than two decimal places")
	ErrOverflow      = errors.New("money: amount out of range")
)

var (
	maxAmount = decimal.NewFromInt(math.MaxInt64)
	minAmount = decimal.NewFromInt(math.MinInt64)
)

// Parse converts a decimal string such as "10.01" into an Amount.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return FromDecimal(d)
}

// FromDecimal converts a decimal value in major units into an Amount.
// Values with sub-cent precision are rejected rather than rounded.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	cents := d.Shift(minorDigits)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s", ErrTooPrecise, d.String())
	}
	if cents.GreaterThan(maxAmount) || cents.LessThan(minAmount) {
		return 0, fmt.Errorf("%w: %s", ErrOverflow, d.String())
	}
	return Amount(cents.IntPart()), nil
}

// Cents builds an Amount from a count of minor units.
func Cents(n int64) Amount { return Amount(n) }

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -minorDigits)
}

// String formats the amount with exactly two decimal places, e.g. "-30.00".
func (a Amount) String() string {
	return a.Decimal().StringFixed(minorDigits)
}

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// Sign returns -1, 0 or +1.
func (a Amount) Sign() int {
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	default:
		return 0
	}
}

// IsSettled reports whether a balance is zero within Epsilon.
func IsSettled(a Amount) bool {
	return a.Abs() <= Epsilon
}

// Min returns the smaller of two amounts.
func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// Sum adds amounts, failing on int64 overflow.
func Sum(amounts ...Amount) (Amount, error) {
	var total Amount
	for _, a := range amounts {
		if (a > 0 && total > math.MaxInt64-a) || (a < 0 && total < math.MinInt64-a) {
			return 0, ErrOverflow
		}
		total += a
	}
	return total, nil
}

// MulDivRound returns a*b/c rounded half away from zero. The rounding is an
// odd function, so MulDivRound(-a, b, c) == -MulDivRound(a, b, c).
func MulDivRound(a, b, c Amount) Amount {
	num := decimal.NewFromInt(int64(a)).Mul(decimal.NewFromInt(int64(b)))
	return Amount(num.DivRound(decimal.NewFromInt(int64(c)), 0).IntPart())
}
