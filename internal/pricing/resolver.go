package pricing

import (
	"errors"
	"fmt"
	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
)

var errMalformedReference = errors.New("malformed catalog reference")

// quote is the unit/original/discount triple a strategy produces.
type quote struct {
	unit     float64
	original float64
	discount float64
}

// strategy is one named price signal. resolve returns ok=false when the
// signal is absent so the next strategy is tried.
type strategy struct {
	source  domain.PriceSource
	resolve func(item domain.LineItem) (quote, bool, error)
}

// Resolver derives the authoritative price of a line item.
type Resolver struct {
	sizes      SizeTables
	bundles    *BundleResolver
	strategies []strategy
}

func NewResolver(sizes SizeTables) *Resolver {
	r := &Resolver{
		sizes:   sizes,
		bundles: NewBundleResolver(),
	}
	// Order is significant: the first signal yielding a positive price wins.
	r.strategies = []strategy{
		{domain.PriceSourceStoredSizeAdjusted, storedPrice(func(i domain.LineItem) *float64 { return i.StoredSizeAdjustedPrice })},
		{domain.PriceSourceStoredUnit, storedPrice(func(i domain.LineItem) *float64 { return i.StoredUnitPrice })},
		{domain.PriceSourceStoredItemTotal, storedItemTotal},
		{domain.PriceSourceCatalogSizePrice, catalogSizePrice},
		{domain.PriceSourceSizeMultiplier, r.sizeMultiplier},
		{domain.PriceSourceBasePrice, r.basePrice},
	}
	return r
}

// Sizes exposes the injected size tables.
func (r *Resolver) Sizes() SizeTables {
	return r.sizes
}

// Resolve never fails: malformed input degrades to a fallback result with
// Error set, and a missing price signal yields a zero price.
func (r *Resolver) Resolve(item domain.LineItem) (result domain.PricingResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = r.fallback(item, fmt.Sprintf("unexpected failure: %v", rec))
		}
	}()

	if isBundleItem(item) {
		res, err := r.bundles.Resolve(item)
		if err != nil {
			return r.fallback(item, err.Error())
		}
		return res
	}

	if item.Kind != "" && item.Kind != domain.ItemKindProduct {
		return r.fallback(item, fmt.Sprintf("unknown item kind %q", item.Kind))
	}
	if item.Quantity < 1 {
		return r.fallback(item, fmt.Sprintf("invalid quantity %d", item.Quantity))
	}

	for _, s := range r.strategies {
		q, ok, err := s.resolve(item)
		if err != nil {
			return r.fallback(item, err.Error())
		}
		if ok {
			return buildResult(item.Quantity, q, s.source, false)
		}
	}

	res := buildResult(item.Quantity, quote{}, domain.PriceSourceNone, false)
	res.Error = true
	res.ErrorReason = "no price signal available"
	return res
}

// ResolveAll resolves items in order.
func (r *Resolver) ResolveAll(items []domain.LineItem) []domain.PricingResult {
	results := make([]domain.PricingResult, len(items))
	for i, item := range items {
		results[i] = r.Resolve(item)
	}
	return results
}

// --- Strategies ---

func storedPrice(field func(domain.LineItem) *float64) func(domain.LineItem) (quote, bool, error) {
	return func(item domain.LineItem) (quote, bool, error) {
		v, ok := positive(field(item))
		if !ok {
			return quote{}, false, nil
		}
		return quote{unit: v, original: v}, true, nil
	}
}

func storedItemTotal(item domain.LineItem) (quote, bool, error) {
	total, ok := positive(item.StoredItemTotal)
	if !ok {
		return quote{}, false, nil
	}
	unit := total / float64(item.Quantity)
	return quote{unit: unit, original: unit}, true, nil
}

func catalogSizePrice(item domain.LineItem) (quote, bool, error) {
	if item.Product == nil {
		return quote{}, false, nil
	}
	price, found := CatalogSizePrice(item.Product.SizePricing, item.SizeCode())
	if !found {
		return quote{}, false, nil
	}
	v, ok := positive(&price)
	if !ok {
		return quote{}, false, nil
	}
	return quote{unit: v, original: v}, true, nil
}

func (r *Resolver) sizeMultiplier(item domain.LineItem) (quote, bool, error) {
	size := item.SizeCode()
	if item.Product == nil || size == "" || !r.sizes.HasMultiplier(size) {
		return quote{}, false, nil
	}
	base, ok, err := catalogBase(item.Product)
	if err != nil || !ok {
		return quote{}, false, err
	}
	original := r.sizes.ApplyMultiplier(base, size)
	discount := catalogDiscount(item)
	return quote{
		unit:     ApplyDiscount(original, discount),
		original: original,
		discount: EffectiveDiscount(discount),
	}, true, nil
}

func (r *Resolver) basePrice(item domain.LineItem) (quote, bool, error) {
	if item.Product == nil {
		return quote{}, false, nil
	}
	base, ok, err := catalogBase(item.Product)
	if err != nil || !ok {
		return quote{}, false, err
	}
	discount := catalogDiscount(item)
	return quote{
		unit:     ApplyDiscount(base, discount),
		original: base,
		discount: EffectiveDiscount(discount),
	}, true, nil
}

func catalogBase(ref *domain.ProductRef) (float64, bool, error) {
	if !isFinite(ref.BasePrice) || ref.BasePrice < 0 {
		return 0, false, fmt.Errorf("%w: product %s has price %v", errMalformedReference, ref.ID, ref.BasePrice)
	}
	return ref.BasePrice, ref.BasePrice > 0, nil
}

// catalogDiscount prefers the product discount, then the item discount.
func catalogDiscount(item domain.LineItem) float64 {
	if item.Product != nil && item.Product.Discount != nil && *item.Product.Discount > 0 {
		return *item.Product.Discount
	}
	if item.Discount != nil && *item.Discount > 0 {
		return *item.Discount
	}
	return 0
}

// --- Result Building ---

func buildResult(quantity int, q quote, source domain.PriceSource, isBundle bool) domain.PricingResult {
	return domain.PricingResult{
		UnitPrice:          q.unit,
		OriginalPrice:      q.original,
		DiscountPercent:    q.discount,
		TotalPrice:         LineTotal(q.unit, quantity),
		TotalOriginalPrice: LineTotal(q.original, quantity),
		IsBundle:           isBundle,
		Source:             source,
	}
}

// fallback takes the first positive stored or raw price with no discount.
func (r *Resolver) fallback(item domain.LineItem, reason string) domain.PricingResult {
	var unit float64
	candidates := []*float64{item.StoredSizeAdjustedPrice, item.StoredUnitPrice}
	if item.Quantity >= 1 && item.StoredItemTotal != nil {
		perUnit := *item.StoredItemTotal / float64(item.Quantity)
		candidates = append(candidates, &perUnit)
	}
	candidates = append(candidates, &item.Price)
	for _, c := range candidates {
		if v, ok := positive(c); ok {
			unit = v
			break
		}
	}

	quantity := item.Quantity
	if quantity < 0 {
		quantity = 0
	}
	res := buildResult(quantity, quote{unit: unit, original: unit}, domain.PriceSourceFallback, isBundleItem(item))
	res.Error = true
	res.ErrorReason = reason

	logger.Warn().
		Str("item_id", item.ID).
		Str("reason", reason).
		Float64("unit_price", unit).
		Msg("Pricing: degraded to fallback price")
	return res
}

func isBundleItem(item domain.LineItem) bool {
	if item.Kind == domain.ItemKindBundle {
		return true
	}
	return item.Kind == "" && item.Bundle != nil && item.Product == nil
}
