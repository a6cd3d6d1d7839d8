// Package interest implements the simple-interest accrual math shared by
// deposits, withdrawals and balance queries. All arithmetic either returns
// an exact result or fails; nothing wraps or truncates silently.
package interest

import (
	"math"

	"github.com/shopspring/decimal"

	"vaultledger/models"
)

const (
	// BasisPointDivisor converts basis points to a fraction of the principal
	BasisPointDivisor = 10_000

	// SecondsPerYear uses a fixed 365-day year. Leap years are ignored so the
	// same principal, rate and elapsed time always accrue the same amount.
	SecondsPerYear = 365 * 24 * 60 * 60
)

var maxInt64 = decimal.NewFromInt(math.MaxInt64)

// Accrue returns the simple interest earned by principal at rateBps basis
// points per year over elapsedSeconds, truncated toward zero:
//
//	floor(principal * rateBps * elapsedSeconds / (10_000 * SecondsPerYear))
//
// Interest does not compound: the rate applies to principal only, never to
// previously accrued interest. A zero principal, zero rate or non-positive
// elapsed time accrues nothing. The triple product is computed exactly at
// arbitrary precision; only a quotient that cannot be represented as int64
// fails, with ErrArithmeticOverflow.
func Accrue(principal, rateBps, elapsedSeconds int64) (int64, error) {
	if principal <= 0 || rateBps <= 0 || elapsedSeconds <= 0 {
		return 0, nil
	}

	numerator := decimal.NewFromInt(principal).
		Mul(decimal.NewFromInt(rateBps)).
		Mul(decimal.NewFromInt(elapsedSeconds))
	quotient, _ := numerator.QuoRem(decimal.NewFromInt(BasisPointDivisor*SecondsPerYear), 0)

	if quotient.Cmp(maxInt64) > 0 {
		return 0, models.ErrArithmeticOverflow
	}
	return quotient.IntPart(), nil
}

// AddChecked returns a+b, failing with ErrArithmeticOverflow instead of
// wrapping. Operands must be non-negative.
func AddChecked(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, models.ErrArithmeticOverflow
	}
	c := a + b
	if c < a {
		return 0, models.ErrArithmeticOverflow
	}
	return c, nil
}

// SubChecked returns a-b, failing with ErrArithmeticOverflow if the result
// would go negative. Balances never hold negative values.
func SubChecked(a, b int64) (int64, error) {
	if b < 0 || b > a {
		return 0, models.ErrArithmeticOverflow
	}
	return a - b, nil
}
