package pricing

import (
	"fmt"
	"storefront-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// BundleResolver prices bundle line items from the bundle's own price,
// independent of the constituent products.
type BundleResolver struct{}

func NewBundleResolver() *BundleResolver {
	return &BundleResolver{}
}

func (b *BundleResolver) Resolve(item domain.LineItem) (domain.PricingResult, error) {
	if item.Quantity < 1 {
		return domain.PricingResult{}, fmt.Errorf("invalid quantity %d", item.Quantity)
	}
	if item.Bundle == nil {
		res := buildResult(item.Quantity, quote{}, domain.PriceSourceNone, true)
		res.Error = true
		res.ErrorReason = "bundle reference missing"
		return res, nil
	}

	unit, err := bundleAmount(item.Bundle.ID, "bundlePrice", item.Bundle.BundlePrice)
	if err != nil {
		return domain.PricingResult{}, err
	}
	original, err := bundleAmount(item.Bundle.ID, "originalPrice", item.Bundle.OriginalPrice)
	if err != nil {
		return domain.PricingResult{}, err
	}
	// A bundle is never shown as discounted from a smaller original.
	if original <= unit {
		original = unit
	}

	res := buildResult(item.Quantity, quote{
		unit:     unit,
		original: original,
		discount: bundleDiscountPercent(unit, original),
	}, domain.PriceSourceBundle, true)
	if unit == 0 {
		res.Error = true
		res.ErrorReason = "bundle price missing"
	}
	return res, nil
}

func bundleAmount(id, field string, v *float64) (float64, error) {
	if v == nil {
		return 0, nil
	}
	if !isFinite(*v) || *v < 0 {
		return 0, fmt.Errorf("%w: bundle %s has %s %v", errMalformedReference, id, field, *v)
	}
	return *v, nil
}

// bundleDiscountPercent is round(((original-unit)/original)*100).
func bundleDiscountPercent(unit, original float64) float64 {
	if original <= 0 || original <= unit {
		return 0
	}
	o := decimal.NewFromFloat(original)
	return o.Sub(decimal.NewFromFloat(unit)).
		Div(o).
		Mul(hundred).
		Round(0).
		InexactFloat64()
}
