package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Rounder is the rounding rule applied to money amounts.
type Rounder func(float64) float64

var hundred = decimal.NewFromInt(100)

// Round2 rounds half-up to 2 decimal places. NaN and Inf pass through
// unchanged so validators can still see them.
func Round2(v float64) float64 {
	if !isFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ApplyDiscount returns price reduced by discountPercent, rounded once.
// Discounts outside (0, 100] leave the price untouched.
func ApplyDiscount(price, discountPercent float64) float64 {
	if !validDiscount(discountPercent) || !isFinite(price) {
		return price
	}
	d := decimal.NewFromFloat(discountPercent)
	return decimal.NewFromFloat(price).
		Mul(hundred.Sub(d)).
		Div(hundred).
		Round(2).
		InexactFloat64()
}

// EffectiveDiscount is the percent ApplyDiscount actually applies.
func EffectiveDiscount(discountPercent float64) float64 {
	if !validDiscount(discountPercent) {
		return 0
	}
	return discountPercent
}

// LineTotal is round2(unit x quantity).
func LineTotal(unit float64, quantity int) float64 {
	if !isFinite(unit) {
		return unit
	}
	if quantity < 0 {
		quantity = 0
	}
	return decimal.NewFromFloat(unit).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		InexactFloat64()
}

// AddRounded adds b to a and rounds the sum with round.
func AddRounded(a, b float64, round Rounder) float64 {
	if !isFinite(a) || !isFinite(b) {
		return a + b
	}
	sum := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
	return round(sum)
}

func validDiscount(d float64) bool {
	return !math.IsNaN(d) && d > 0 && d <= 100
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v *float64) (float64, bool) {
	if v == nil || !isFinite(*v) || *v <= 0 {
		return 0, false
	}
	return *v, true
}
