package pricing

import "storefront-backend/internal/domain"

// PricedLine pairs a resolved price with the quantity it was resolved for.
type PricedLine struct {
	Quantity int
	Pricing  domain.PricingResult
}

// Totals aggregates resolved line items into order-level figures.
type Totals struct {
	resolver *Resolver
	round    Rounder
}

// NewTotals builds an aggregator. A nil round defaults to Round2.
func NewTotals(resolver *Resolver, round Rounder) *Totals {
	if round == nil {
		round = Round2
	}
	return &Totals{resolver: resolver, round: round}
}

func (t *Totals) Aggregate(items []domain.LineItem) domain.OrderTotals {
	lines := make([]PricedLine, len(items))
	for i, item := range items {
		lines[i] = PricedLine{Quantity: item.Quantity, Pricing: t.resolver.Resolve(item)}
	}
	return FoldTotals(lines, t.round)
}

// FoldTotals re-rounds every running sum after each addition.
func FoldTotals(lines []PricedLine, round Rounder) domain.OrderTotals {
	if round == nil {
		round = Round2
	}
	acc := domain.OrderTotals{}
	for _, line := range lines {
		acc = accumulate(acc, line, round)
	}
	acc.TotalDiscount = round(acc.TotalOriginalPrice - acc.TotalPrice)
	return acc
}

func accumulate(acc domain.OrderTotals, line PricedLine, round Rounder) domain.OrderTotals {
	if line.Quantity > 0 {
		acc.TotalQty += line.Quantity
	}
	acc.TotalPrice = AddRounded(acc.TotalPrice, line.Pricing.TotalPrice, round)
	acc.TotalOriginalPrice = AddRounded(acc.TotalOriginalPrice, line.Pricing.TotalOriginalPrice, round)
	return acc
}
