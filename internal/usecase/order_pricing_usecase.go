package usecase

import (
	"context"
	"fmt"
	"storefront-backend/internal/domain"
	"storefront-backend/internal/pricing"
	"storefront-backend/pkg/logger"
)

type OrderPricingUsecase struct {
	orderRepo   domain.OrderRepository
	catalogRepo domain.CatalogRepository
	resolver    *pricing.Resolver
}

func NewOrderPricingUsecase(orderRepo domain.OrderRepository, catalogRepo domain.CatalogRepository, resolver *pricing.Resolver) *OrderPricingUsecase {
	return &OrderPricingUsecase{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		resolver:    resolver,
	}
}

// --- DTOs ---

type LinePricing struct {
	ItemID           string               `json:"itemId"`
	Kind             domain.ItemKind      `json:"itemKind"`
	Name             string               `json:"name"`
	Size             *string              `json:"size,omitempty"`
	Quantity         int                  `json:"quantity"`
	Pricing          domain.PricingResult `json:"pricing"`
	PriceUnavailable bool                 `json:"priceUnavailable"`
	Cancelled        bool                 `json:"cancelled"`
	Issues           []pricing.Violation  `json:"issues,omitempty"`
}

type OrderPricingSummary struct {
	OrderID    string                   `json:"orderId"`
	Status     domain.OrderStatus       `json:"orderStatus"`
	Items      []LinePricing            `json:"items"`
	Totals     domain.OrderTotals       `json:"totals"`
	Validation pricing.ValidationReport `json:"validation"`
}

type SizePriceOption struct {
	Size            string             `json:"size"`
	Price           float64            `json:"price"`
	DiscountedPrice float64            `json:"discountedPrice"`
	Source          domain.PriceSource `json:"source"`
}

type SizePricePreview struct {
	ProductID string            `json:"productId"`
	BasePrice float64           `json:"basePrice"`
	Discount  float64           `json:"discount"`
	Options   []SizePriceOption `json:"options"`
}

// Summary resolves every line of the order and folds the totals.
func (u *OrderPricingUsecase) Summary(ctx context.Context, orderID string) (*OrderPricingSummary, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	summary := &OrderPricingSummary{
		OrderID: order.ID,
		Status:  order.Status,
		Items:   make([]LinePricing, 0, len(order.Items)),
	}
	lines := make([]pricing.PricedLine, 0, len(order.Items))
	checked := make([]domain.ItemPricing, 0, len(order.Items))

	sizes := u.resolver.Sizes()
	for i, p := range u.resolver.ResolveAll(order.Items) {
		item := order.Items[i]
		summary.Items = append(summary.Items, LinePricing{
			ItemID:           item.ID,
			Kind:             itemKind(item),
			Name:             itemName(item),
			Size:             item.Size,
			Quantity:         item.Quantity,
			Pricing:          p,
			PriceUnavailable: p.PriceUnavailable(),
			Cancelled:        item.IsCancelled(),
			Issues:           pricing.ValidateLineItem(item, sizes).Violations,
		})
		lines = append(lines, pricing.PricedLine{Quantity: item.Quantity, Pricing: p})
		checked = append(checked, domain.ItemPricing{ItemID: item.ID, Pricing: p})
	}

	summary.Totals = pricing.FoldTotals(lines, pricing.Round2)
	summary.Validation = pricing.ValidateOrder(checked, summary.Totals)
	if !summary.Validation.IsValid {
		logger.WithContext(ctx).Warn().
			Str("order_id", order.ID).
			Str("violations", summary.Validation.Summary()).
			Msg("Usecase: Summary - order pricing failed validation")
	}
	return summary, nil
}

// SizePreview lists the display-time price of every recognised size. A
// catalog size price wins over the additive upsell table.
func (u *OrderPricingUsecase) SizePreview(ctx context.Context, productID string) (*SizePricePreview, error) {
	product, err := u.catalogRepo.GetProductRef(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.BasePrice < 0 {
		return nil, fmt.Errorf("product %s has negative base price: %w", productID, domain.ErrPolicyViolation)
	}

	discount := 0.0
	if product.Discount != nil {
		discount = pricing.EffectiveDiscount(*product.Discount)
	}

	sizes := u.resolver.Sizes()

	preview := &SizePricePreview{
		ProductID: product.ID,
		BasePrice: product.BasePrice,
		Discount:  discount,
	}
	for _, code := range sizes.Codes() {
		opt := SizePriceOption{Size: code}
		if price, ok := pricing.CatalogSizePrice(product.SizePricing, code); ok && price > 0 {
			opt.Price = price
			opt.Source = domain.PriceSourceCatalogSizePrice
		} else {
			opt.Price = sizes.ApplyAdditive(product.BasePrice, code)
			opt.Source = domain.PriceSourceBasePrice
		}
		opt.DiscountedPrice = pricing.ApplyDiscount(opt.Price, discount)
		preview.Options = append(preview.Options, opt)
	}
	return preview, nil
}

// BundlePreview prices a single unit of a bundle from the catalog.
func (u *OrderPricingUsecase) BundlePreview(ctx context.Context, bundleID string) (*domain.PricingResult, error) {
	bundle, err := u.catalogRepo.GetBundleRef(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	result := u.resolver.Resolve(domain.LineItem{
		ID:       bundle.ID,
		Kind:     domain.ItemKindBundle,
		Quantity: 1,
		Bundle:   bundle,
	})
	if report := pricing.ValidatePricing(result); !report.IsValid {
		return nil, fmt.Errorf("%w: %s", domain.ErrPolicyViolation, report.Summary())
	}
	return &result, nil
}

func itemKind(item domain.LineItem) domain.ItemKind {
	if item.Kind != "" {
		return item.Kind
	}
	if item.Bundle != nil && item.Product == nil {
		return domain.ItemKindBundle
	}
	return domain.ItemKindProduct
}

func itemName(item domain.LineItem) string {
	switch {
	case item.Product != nil:
		return item.Product.Name
	case item.Bundle != nil:
		return item.Bundle.Name
	}
	return ""
}
