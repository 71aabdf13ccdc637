// Package emi computes equated monthly installments with exact decimal
// arithmetic. Results are reproducible bit-for-bit across platforms.
package emi

import "github.com/shopspring/decimal"

// DefaultPrecision is the number of fractional digits carried through
// intermediate divisions before the final two-digit rounding.
const DefaultPrecision int32 = 28

var (
	one            = decimal.NewFromInt(1)
	monthsPerYear  = decimal.NewFromInt(12)
	percentDivisor = decimal.NewFromInt(100)
)

// Compute returns the fixed monthly installment for the given principal,
// annual interest rate (in percent) and tenure in months, rounded to two
// fractional digits using round-half-up.
//
// The caller guarantees principal > 0 and months > 0. A zero rate degenerates
// to straight division of the principal over the tenure.
//
// precision controls the number of fractional digits kept by intermediate
// divisions; it is passed explicitly rather than read from package state so
// that callers own the rounding configuration.
func Compute(principal, annualRatePercent decimal.Decimal, months int, precision int32) decimal.Decimal {
	n := decimal.NewFromInt(int64(months))

	if annualRatePercent.IsZero() {
		return principal.DivRound(n, 2)
	}

	// Monthly rate r = annual / 12 / 100.
	r := annualRatePercent.DivRound(monthsPerYear.Mul(percentDivisor), precision)

	// EMI = P * r * (1+r)^n / ((1+r)^n - 1)
	compound := one.Add(r).Pow(n)
	numerator := principal.Mul(r).Mul(compound)

	return numerator.DivRound(compound.Sub(one), 2)
}
