package domain

import "time"

// PriceSource names the signal a PricingResult was derived from.
type PriceSource string

const (
	PriceSourceStoredSizeAdjusted PriceSource = "stored_size_adjusted_price"
	PriceSourceStoredUnit         PriceSource = "stored_unit_price"
	PriceSourceStoredItemTotal    PriceSource = "stored_item_total"
	PriceSourceCatalogSizePrice   PriceSource = "catalog_size_price"
	PriceSourceSizeMultiplier     PriceSource = "size_multiplier"
	PriceSourceBasePrice          PriceSource = "base_price"
	PriceSourceBundle             PriceSource = "bundle_price"
	PriceSourceFallback           PriceSource = "fallback"
	PriceSourceNone               PriceSource = "none"
)

// PricingResult is the resolved price of one line item.
// Error is set when the result is degraded (fallback or no price signal).
type PricingResult struct {
	UnitPrice          float64     `json:"unitPrice"`
	OriginalPrice      float64     `json:"originalPrice"`
	DiscountPercent    float64     `json:"discountPercent"`
	TotalPrice         float64     `json:"totalPrice"`
	TotalOriginalPrice float64     `json:"totalOriginalPrice"`
	IsBundle           bool        `json:"isBundle"`
	Source             PriceSource `json:"source"`
	Error              bool        `json:"error,omitempty"`
	ErrorReason        string      `json:"errorReason,omitempty"`
}

// PriceUnavailable is what the storefront renders as "(Price unavailable)".
func (r PricingResult) PriceUnavailable() bool {
	return r.UnitPrice <= 0
}

type OrderTotals struct {
	TotalQty           int     `json:"totalQty"`
	TotalPrice         float64 `json:"totalPrice"`
	TotalOriginalPrice float64 `json:"totalOriginalPrice"`
	TotalDiscount      float64 `json:"totalDiscount"`
}

// --- Refund Records ---

// CancellationContext is the transient metadata of one cancellation request.
// RequestDate must be captured once per request and reused for every call.
type CancellationContext struct {
	RequestDate           time.Time   `json:"requestDate"`
	OrderDate             time.Time   `json:"orderDate"`
	OrderStatus           OrderStatus `json:"orderStatus"`
	EstimatedDeliveryDate *time.Time  `json:"estimatedDeliveryDate,omitempty"`
	ActualDeliveryDate    *time.Time  `json:"actualDeliveryDate,omitempty"`
}

// NewCancellationContext fills the context from the order store fields.
func NewCancellationContext(order Order, requestDate time.Time) CancellationContext {
	return CancellationContext{
		RequestDate:           requestDate,
		OrderDate:             order.PlacedAt(),
		OrderStatus:           order.Status,
		EstimatedDeliveryDate: order.EstimatedDeliveryDate,
		ActualDeliveryDate:    order.ActualDeliveryDate,
	}
}

type Penalty struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
}

type RefundDecision struct {
	RefundPercent    float64   `json:"refundPercent"`
	BaselinePercent  float64   `json:"baselinePercent"`
	Tier             string    `json:"tier"`
	AppliedPenalties []Penalty `json:"appliedPenalties"`
	FloorApplied     bool      `json:"floorApplied"`
	HoursSinceOrder  float64   `json:"hoursSinceOrder"`
	DaysSinceOrder   int       `json:"daysSinceOrder"`
}

type ItemPricing struct {
	ItemID  string        `json:"itemId"`
	Pricing PricingResult `json:"pricing"`
}

type CancellationResult struct {
	OrderID             string         `json:"orderId"`
	Kind                string         `json:"kind"` // full, partial
	RequestDate         time.Time      `json:"requestDate"`
	SelectedItemPricing []ItemPricing  `json:"selectedItemPricing"`
	TotalItemValue      float64        `json:"totalItemValue"`
	RefundPercent       float64        `json:"refundPercent"`
	RefundAmount        float64        `json:"refundAmount"`
	RetainedAmount      float64        `json:"retainedAmount"`
	Decision            RefundDecision `json:"decision"`
}

// ItemIDs lists the selected item ids in order.
func (r CancellationResult) ItemIDs() []string {
	ids := make([]string, len(r.SelectedItemPricing))
	for i, p := range r.SelectedItemPricing {
		ids[i] = p.ItemID
	}
	return ids
}
