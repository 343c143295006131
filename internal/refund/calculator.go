package refund

import (
	"fmt"
	"storefront-backend/internal/domain"
	"storefront-backend/internal/pricing"
	"strings"

	"github.com/shopspring/decimal"
)

// Calculator combines line pricing with the refund policy. It performs no
// I/O; persisting and notifying are left to the caller.
type Calculator struct {
	resolver *pricing.Resolver
	policy   *PolicyEngine
}

func NewCalculator(resolver *pricing.Resolver, policy *PolicyEngine) *Calculator {
	return &Calculator{resolver: resolver, policy: policy}
}

func (c *Calculator) Policy() *PolicyEngine {
	return c.policy
}

// ComputeFull prices every item of the order.
func (c *Calculator) ComputeFull(order domain.Order, cctx domain.CancellationContext) (domain.CancellationResult, error) {
	return c.compute(order, order.Items, domain.CancellationFull, cctx)
}

// ComputePartial prices only the selected items, kept in order.Items order.
// Duplicate ids are collapsed.
func (c *Calculator) ComputePartial(order domain.Order, itemIDs []string, cctx domain.CancellationContext) (domain.CancellationResult, error) {
	if len(itemIDs) == 0 {
		return domain.CancellationResult{}, domain.ErrEmptySelection
	}

	selected := make(map[string]struct{}, len(itemIDs))
	for _, raw := range itemIDs {
		id := strings.TrimSpace(raw)
		if _, ok := order.ItemByID(id); !ok || id == "" {
			return domain.CancellationResult{}, fmt.Errorf("%w: %q", domain.ErrInvalidSelection, raw)
		}
		selected[id] = struct{}{}
	}

	items := make([]domain.LineItem, 0, len(selected))
	for _, item := range order.Items {
		if _, ok := selected[item.ID]; ok {
			items = append(items, item)
			delete(selected, item.ID)
		}
	}
	return c.compute(order, items, domain.CancellationPartial, cctx)
}

func (c *Calculator) compute(order domain.Order, items []domain.LineItem, kind string, cctx domain.CancellationContext) (domain.CancellationResult, error) {
	decision, err := c.policy.ComputePercent(order, cctx)
	if err != nil {
		return domain.CancellationResult{}, err
	}

	result := domain.CancellationResult{
		OrderID:             order.ID,
		Kind:                kind,
		RequestDate:         cctx.RequestDate,
		SelectedItemPricing: make([]domain.ItemPricing, 0, len(items)),
		RefundPercent:       decision.RefundPercent,
		Decision:            decision,
	}
	for _, item := range items {
		p := c.resolver.Resolve(item)
		result.SelectedItemPricing = append(result.SelectedItemPricing, domain.ItemPricing{ItemID: item.ID, Pricing: p})
		result.TotalItemValue = pricing.AddRounded(result.TotalItemValue, p.TotalPrice, pricing.Round2)
	}

	result.RefundAmount, result.RetainedAmount = Split(result.TotalItemValue, result.RefundPercent)
	return result, nil
}

// Split returns round2(total*percent/100) and the rounded remainder.
func Split(total, percent float64) (refundAmount, retainedAmount float64) {
	t := decimal.NewFromFloat(total)
	refund := t.Mul(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100)).Round(2)
	retained := t.Sub(refund).Round(2)
	return refund.InexactFloat64(), retained.InexactFloat64()
}
