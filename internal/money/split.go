package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrNoParties      = errors.New("money: at least one party is required")
	ErrNegativeTotal  = errors.New("money: total must not be negative")
	ErrInvalidWeights = errors.New("money: weights must be positive")
)

// SplitEqually divides total into n shares. Each share gets total/n and the
// leftover total%n cents go one each to the first shares, so
// SplitEqually(100, 3) is [34 33 33] and the shares always sum to total.
func SplitEqually(total Amount, n int) ([]Amount, error) {
	if n <= 0 {
		return nil, ErrNoParties
	}
	if total < 0 {
		return nil, ErrNegativeTotal
	}

	base := total / Amount(n)
	leftover := int(total % Amount(n))

	shares := make([]Amount, n)
	for i := range shares {
		shares[i] = base
		if i < leftover {
			shares[i]++
		}
	}
	return shares, nil
}

// SplitByWeights divides total proportionally to weights. Each share is
// floored and the leftover cents go one each to the first shares in order.
func SplitByWeights(total Amount, weights []int64) ([]Amount, error) {
	if len(weights) == 0 {
		return nil, ErrNoParties
	}
	if total < 0 {
		return nil, ErrNegativeTotal
	}

	var sum int64
	for i, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf("%w: weight %d is %d", ErrInvalidWeights, i, w)
		}
		if w > math.MaxInt64-sum {
			return nil, fmt.Errorf("%w: sum of weights overflows int64", ErrInvalidWeights)
		}
		sum += w
	}

	den := decimal.NewFromInt(sum)
	shares := make([]Amount, len(weights))
	var assigned Amount
	for i, w := range weights {
		q, _ := decimal.NewFromInt(int64(total)).Mul(decimal.NewFromInt(w)).QuoRem(den, 0)
		shares[i] = Amount(q.IntPart())
		assigned += shares[i]
	}

	// Flooring loses less than one cent per share, so the leftover is
	// smaller than len(shares).
	for i := 0; assigned < total; i++ {
		shares[i]++
		assigned++
	}
	return shares, nil
}
