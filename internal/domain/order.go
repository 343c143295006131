package domain

import (
	"context"
	"time"
)

type ItemKind string

const (
	ItemKindProduct ItemKind = "product"
	ItemKindBundle  ItemKind = "bundle"
)

// --- Catalog References ---

// ProductRef is the read-only catalog view of a product as seen by an order line.
type ProductRef struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	BasePrice   float64            `json:"price"`
	Discount    *float64           `json:"discount,omitempty"`    // Percent, 0-100
	SizePricing map[string]float64 `json:"sizePricing,omitempty"` // Size code -> final price
}

// BundleRef is the read-only catalog view of a bundle.
type BundleRef struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	BundlePrice   *float64 `json:"bundlePrice"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
}

// --- Order Entities ---

// LineItem is one purchasable unit of a cart or order. The stored* fields are
// price snapshots persisted by earlier flows; they may be stale or absent.
type LineItem struct {
	ID       string      `json:"id"`
	Kind     ItemKind    `json:"itemKind"`
	Quantity int         `json:"quantity"`
	Size     *string     `json:"size,omitempty"`
	Price    float64     `json:"price"`              // Raw price captured at checkout
	Discount *float64    `json:"discount,omitempty"` // Item-level discount percent
	Product  *ProductRef `json:"product,omitempty"`
	Bundle   *BundleRef  `json:"bundle,omitempty"`

	StoredUnitPrice         *float64 `json:"storedUnitPrice,omitempty"`
	StoredSizeAdjustedPrice *float64 `json:"storedSizeAdjustedPrice,omitempty"`
	StoredItemTotal         *float64 `json:"storedItemTotal,omitempty"`

	// Set when an approved cancellation request refunded this line.
	CancelledAt           *time.Time `json:"cancelledAt,omitempty"`
	CancellationRequestID *string    `json:"cancellationRequestId,omitempty"`
}

func (i LineItem) IsCancelled() bool {
	return i.CancelledAt != nil
}

// SizeCode returns the size or "" when the item has none.
func (i LineItem) SizeCode() string {
	if i.Size == nil {
		return ""
	}
	return *i.Size
}

type Order struct {
	ID                    string      `json:"id"`
	UserID                string      `json:"userId"`
	Status                OrderStatus `json:"orderStatus"`
	Items                 []LineItem  `json:"items"`
	OrderDate             *time.Time  `json:"orderDate,omitempty"`
	EstimatedDeliveryDate *time.Time  `json:"estimatedDeliveryDate,omitempty"`
	ActualDeliveryDate    *time.Time  `json:"actualDeliveryDate,omitempty"`
	CreatedAt             time.Time   `json:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt"`
}

// PlacedAt prefers the explicit order date and falls back to createdAt.
func (o Order) PlacedAt() time.Time {
	if o.OrderDate != nil && !o.OrderDate.IsZero() {
		return *o.OrderDate
	}
	return o.CreatedAt
}

// LiveItems returns the items not yet cancelled, in order.
func (o Order) LiveItems() []LineItem {
	live := make([]LineItem, 0, len(o.Items))
	for _, item := range o.Items {
		if !item.IsCancelled() {
			live = append(live, item)
		}
	}
	return live
}

// WithLiveItems returns a copy of the order holding only its live items.
func (o Order) WithLiveItems() Order {
	o.Items = o.LiveItems()
	return o
}

// ItemByID returns the line item with the given id.
func (o Order) ItemByID(id string) (LineItem, bool) {
	for _, item := range o.Items {
		if item.ID == id {
			return item, true
		}
	}
	return LineItem{}, false
}

type OrderHistory struct {
	ID             string      `json:"id"`
	OrderID        string      `json:"orderId"`
	PreviousStatus *string     `json:"previousStatus"`
	NewStatus      OrderStatus `json:"newStatus"`
	Reason         *string     `json:"reason"`
	CreatedBy      *string     `json:"createdBy"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// --- Interfaces ---

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
	CreateOrderHistory(ctx context.Context, history *OrderHistory) error
	// MarkItemsCancelled fails with ErrInvalidSelection unless every id is a
	// live item of the order.
	MarkItemsCancelled(ctx context.Context, orderID string, itemIDs []string, requestID string, at time.Time) error
	GetOrderHistory(ctx context.Context, orderID string) ([]OrderHistory, error)
}

type CatalogRepository interface {
	GetProductRef(ctx context.Context, id string) (*ProductRef, error)
	GetBundleRef(ctx context.Context, id string) (*BundleRef, error)
}
