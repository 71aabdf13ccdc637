package emi_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditmitra/loanflow/pkg/emi"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeZeroRate(t *testing.T) {
	got := emi.Compute(dec("120000"), decimal.Zero, 12, emi.DefaultPrecision)
	assert.Equal(t, "10000.00", got.StringFixed(2))
}

func TestComputePinnedValues(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		months    int
		want      string
	}{
		{"standard within-limit", "100000", "13.5", 12, "8955.20"},
		{"ninety thousand twelve months", "90000", "13.5", 12, "8059.68"},
		{"above-limit rate two years", "150000", "14.5", 24, "7237.41"},
		{"above-limit rate one year", "200000", "14.5", 12, "18004.51"},
		{"zero rate uneven division", "100000", "0", 3, "33333.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := emi.Compute(dec(tt.principal), dec(tt.rate), tt.months, emi.DefaultPrecision)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestComputeReproducible(t *testing.T) {
	first := emi.Compute(dec("123457"), dec("13.5"), 18, emi.DefaultPrecision)
	for range 10 {
		again := emi.Compute(dec("123457"), dec("13.5"), 18, emi.DefaultPrecision)
		require.True(t, first.Equal(again))
	}
}

func TestComputeMonotonicInRate(t *testing.T) {
	principal := dec("250000")
	rates := []string{"0", "1", "5.25", "13.5", "14.5", "22"}

	prev := decimal.Zero
	for _, r := range rates {
		got := emi.Compute(principal, dec(r), 24, emi.DefaultPrecision)
		assert.True(t, got.GreaterThanOrEqual(prev),
			"emi at rate %s should not be below emi at the previous rate", r)
		prev = got
	}
}

func TestComputeMonotonicInTenure(t *testing.T) {
	principal := dec("250000")
	rate := dec("13.5")

	prev := emi.Compute(principal, rate, 6, emi.DefaultPrecision)
	for _, months := range []int{9, 12, 18, 24, 36, 60} {
		got := emi.Compute(principal, rate, months, emi.DefaultPrecision)
		assert.True(t, got.LessThanOrEqual(prev),
			"emi over %d months should not exceed emi over the shorter tenure", months)
		prev = got
	}
}
