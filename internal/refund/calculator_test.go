package refund

import (
	"storefront-backend/internal/domain"
	"storefront-backend/internal/pricing"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func newCalculator(t *testing.T) *Calculator {
	t.Helper()
	return NewCalculator(pricing.NewResolver(pricing.DefaultSizeTables()), newEngine(t, DefaultPolicyConfig()))
}

func shopOrder(ago time.Duration, status domain.OrderStatus) domain.Order {
	order := orderPlaced(ago, status)
	order.Items = []domain.LineItem{
		{ID: "item-a", Quantity: 1, StoredItemTotal: f(100), Product: &domain.ProductRef{ID: "p1", BasePrice: 120}},
		{ID: "item-b", Quantity: 2, StoredUnitPrice: f(100), Product: &domain.ProductRef{ID: "p2", BasePrice: 100}},
		{ID: "item-c", Kind: domain.ItemKindBundle, Quantity: 1, Bundle: &domain.BundleRef{ID: "b1", BundlePrice: f(150), OriginalPrice: f(180)}},
	}
	return order
}

func TestCalculator_PartialCancellationSplit(t *testing.T) {
	calc := newCalculator(t)
	order := shopOrder(72*time.Hour, domain.OrderStatusProcessing)

	res, err := calc.ComputePartial(order, []string{"item-a", "item-b"}, domain.NewCancellationContext(order, now))

	require.NoError(t, err)
	assert.Equal(t, domain.CancellationPartial, res.Kind)
	assert.Equal(t, []string{"item-a", "item-b"}, res.ItemIDs())
	assert.Equal(t, 300.0, res.TotalItemValue)
	assert.Equal(t, 75.0, res.RefundPercent)
	assert.Equal(t, 225.0, res.RefundAmount)
	assert.Equal(t, 75.0, res.RetainedAmount)
	assert.True(t, pricing.ValidateCancellation(res).IsValid)
}

func TestCalculator_FullEqualsPartialOverAllItems(t *testing.T) {
	calc := newCalculator(t)
	order := shopOrder(10*time.Hour, domain.OrderStatusPlaced)
	cctx := domain.NewCancellationContext(order, now)

	full, err := calc.ComputeFull(order, cctx)
	require.NoError(t, err)
	partial, err := calc.ComputePartial(order, []string{"item-c", "item-a", "item-b", "item-a"}, cctx)
	require.NoError(t, err)

	assert.Equal(t, domain.CancellationFull, full.Kind)
	assert.Equal(t, 450.0, full.TotalItemValue)
	assert.Equal(t, 90.0, full.RefundPercent)
	assert.Equal(t, 405.0, full.RefundAmount)
	assert.Equal(t, 45.0, full.RetainedAmount)

	assert.Equal(t, full.TotalItemValue, partial.TotalItemValue)
	assert.Equal(t, full.RefundAmount, partial.RefundAmount)
	assert.Equal(t, full.ItemIDs(), partial.ItemIDs())
}

func TestCalculator_DeliveredOrderRefundsFloor(t *testing.T) {
	calc := newCalculator(t)
	order := shopOrder(10*24*time.Hour, domain.OrderStatusDelivered)

	res, err := calc.ComputeFull(order, domain.NewCancellationContext(order, now))

	require.NoError(t, err)
	assert.Equal(t, 25.0, res.RefundPercent)
	assert.Equal(t, 112.5, res.RefundAmount)
	assert.Equal(t, 337.5, res.RetainedAmount)
	assert.Len(t, res.Decision.AppliedPenalties, 1)
}

func TestCalculator_SelectionErrors(t *testing.T) {
	calc := newCalculator(t)
	order := shopOrder(time.Hour, domain.OrderStatusPlaced)
	cctx := domain.NewCancellationContext(order, now)

	_, err := calc.ComputePartial(order, nil, cctx)
	assert.ErrorIs(t, err, domain.ErrEmptySelection)

	_, err = calc.ComputePartial(order, []string{"item-a", "item-z"}, cctx)
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
	assert.Contains(t, err.Error(), "item-z")

	_, err = calc.ComputePartial(order, []string{"  "}, cctx)
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}

func TestCalculator_InvalidContext(t *testing.T) {
	calc := newCalculator(t)
	order := shopOrder(time.Hour, domain.OrderStatusPlaced)

	_, err := calc.ComputeFull(order, domain.CancellationContext{})
	assert.ErrorIs(t, err, domain.ErrInvalidContext)
}

func TestCalculator_EmptyOrder(t *testing.T) {
	calc := newCalculator(t)
	order := orderPlaced(time.Hour, domain.OrderStatusPlaced)

	res, err := calc.ComputeFull(order, domain.NewCancellationContext(order, now))

	require.NoError(t, err)
	assert.Empty(t, res.SelectedItemPricing)
	assert.Zero(t, res.TotalItemValue)
	assert.Zero(t, res.RefundAmount)
	assert.Zero(t, res.RetainedAmount)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		total, percent       float64
		wantRefund, wantKept float64
	}{
		{300, 75, 225, 75},
		{99.99, 90, 89.99, 10},
		{0.01, 50, 0.01, 0},
		{10, 100, 10, 0},
		{10, 0, 0, 10},
	}
	for _, tt := range tests {
		refund, kept := Split(tt.total, tt.percent)
		assert.Equal(t, tt.wantRefund, refund, "refund of %v at %v%%", tt.total, tt.percent)
		assert.Equal(t, tt.wantKept, kept, "retained of %v at %v%%", tt.total, tt.percent)
		assert.InDelta(t, tt.total, refund+kept, 1e-9)
	}
}
