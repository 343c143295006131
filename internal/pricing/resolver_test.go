package pricing

import (
	"math"
	"storefront-backend/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }
func s(v string) *string { return &v }

func product(base float64, discount *float64) *domain.ProductRef {
	return &domain.ProductRef{ID: "prod-1", Name: "Panjabi", BasePrice: base, Discount: discount}
}

func TestResolver_PriorityChain(t *testing.T) {
	r := NewResolver(DefaultSizeTables())

	tests := []struct {
		name         string
		item         domain.LineItem
		wantSource   domain.PriceSource
		wantUnit     float64
		wantOriginal float64
		wantDiscount float64
		wantTotal    float64
	}{
		{
			name: "stored size-adjusted price wins over everything",
			item: domain.LineItem{
				ID: "a", Quantity: 2, Size: s("L"),
				Product:                 product(100, f(10)),
				StoredSizeAdjustedPrice: f(120),
				StoredUnitPrice:         f(95),
				StoredItemTotal:         f(180),
			},
			wantSource: domain.PriceSourceStoredSizeAdjusted, wantUnit: 120, wantOriginal: 120, wantTotal: 240,
		},
		{
			name: "zero size-adjusted price falls through to stored unit price",
			item: domain.LineItem{
				ID: "b", Quantity: 1,
				Product:                 product(100, nil),
				StoredSizeAdjustedPrice: f(0),
				StoredUnitPrice:         f(95),
			},
			wantSource: domain.PriceSourceStoredUnit, wantUnit: 95, wantOriginal: 95, wantTotal: 95,
		},
		{
			name: "stored item total divided by quantity",
			item: domain.LineItem{
				ID: "c", Quantity: 4,
				Product:         product(100, nil),
				StoredItemTotal: f(300),
			},
			wantSource: domain.PriceSourceStoredItemTotal, wantUnit: 75, wantOriginal: 75, wantTotal: 300,
		},
		{
			name: "catalog size price table",
			item: domain.LineItem{
				ID: "d", Quantity: 1, Size: s("m"),
				Product: &domain.ProductRef{
					ID: "prod-2", BasePrice: 100, Discount: f(10),
					SizePricing: map[string]float64{"M": 130, "L": 140},
				},
			},
			wantSource: domain.PriceSourceCatalogSizePrice, wantUnit: 130, wantOriginal: 130, wantTotal: 130,
		},
		{
			name: "multiplicative size table with no catalog size pricing",
			item: domain.LineItem{
				ID: "e", Quantity: 1, Size: s("L"),
				Product: product(100, nil),
			},
			wantSource: domain.PriceSourceSizeMultiplier, wantUnit: 110, wantOriginal: 110, wantTotal: 110,
		},
		{
			name: "multiplier then catalog discount",
			item: domain.LineItem{
				ID: "f", Quantity: 2, Size: s("XL"),
				Product: product(200, f(20)),
			},
			wantSource: domain.PriceSourceSizeMultiplier, wantUnit: 184, wantOriginal: 230, wantDiscount: 20, wantTotal: 368,
		},
		{
			name: "catalog size table without the size uses multiplier",
			item: domain.LineItem{
				ID: "g", Quantity: 1, Size: s("XS"),
				Product: &domain.ProductRef{ID: "prod-3", BasePrice: 100, SizePricing: map[string]float64{"L": 140}},
			},
			wantSource: domain.PriceSourceSizeMultiplier, wantUnit: 95, wantOriginal: 95, wantTotal: 95,
		},
		{
			name: "base price with discount, no size",
			item: domain.LineItem{
				ID: "h", Quantity: 3,
				Product: product(100, f(10)),
			},
			wantSource: domain.PriceSourceBasePrice, wantUnit: 90, wantOriginal: 100, wantDiscount: 10, wantTotal: 270,
		},
		{
			name: "item-level discount used when product has none",
			item: domain.LineItem{
				ID: "i", Quantity: 1, Discount: f(25),
				Product: product(80, nil),
			},
			wantSource: domain.PriceSourceBasePrice, wantUnit: 60, wantOriginal: 80, wantDiscount: 25, wantTotal: 60,
		},
		{
			name: "unknown size behaves like no size",
			item: domain.LineItem{
				ID: "j", Quantity: 1, Size: s("XXS"),
				Product: product(100, nil),
			},
			wantSource: domain.PriceSourceBasePrice, wantUnit: 100, wantOriginal: 100, wantTotal: 100,
		},
		{
			name: "out of range discount ignored",
			item: domain.LineItem{
				ID: "k", Quantity: 1,
				Product: product(100, f(150)),
			},
			wantSource: domain.PriceSourceBasePrice, wantUnit: 100, wantOriginal: 100, wantTotal: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.item)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.wantUnit, got.UnitPrice)
			assert.Equal(t, tt.wantOriginal, got.OriginalPrice)
			assert.Equal(t, tt.wantDiscount, got.DiscountPercent)
			assert.Equal(t, tt.wantTotal, got.TotalPrice)
			assert.False(t, got.IsBundle)
			assert.False(t, got.Error)
			assert.GreaterOrEqual(t, got.TotalOriginalPrice, got.TotalPrice)
		})
	}
}

func TestResolver_NoPriceSignal(t *testing.T) {
	r := NewResolver(DefaultSizeTables())

	got := r.Resolve(domain.LineItem{ID: "x", Quantity: 2})

	assert.Equal(t, domain.PriceSourceNone, got.Source)
	assert.Zero(t, got.UnitPrice)
	assert.Zero(t, got.OriginalPrice)
	assert.Zero(t, got.TotalPrice)
	assert.True(t, got.Error)
	assert.True(t, got.PriceUnavailable())
}

func TestResolver_Fallback(t *testing.T) {
	r := NewResolver(DefaultSizeTables())

	t.Run("malformed product price falls back to raw price", func(t *testing.T) {
		got := r.Resolve(domain.LineItem{
			ID: "m", Quantity: 2, Price: 55,
			Product: product(math.NaN(), f(10)),
		})
		assert.Equal(t, domain.PriceSourceFallback, got.Source)
		assert.True(t, got.Error)
		assert.NotEmpty(t, got.ErrorReason)
		assert.Equal(t, 55.0, got.UnitPrice)
		assert.Equal(t, 110.0, got.TotalPrice)
		assert.Zero(t, got.DiscountPercent)
	})

	t.Run("negative base price is malformed", func(t *testing.T) {
		got := r.Resolve(domain.LineItem{
			ID: "n", Quantity: 1, Price: 40,
			Product: product(-10, nil),
		})
		assert.Equal(t, domain.PriceSourceFallback, got.Source)
		assert.Equal(t, 40.0, got.UnitPrice)
	})

	t.Run("invalid quantity degrades and never goes negative", func(t *testing.T) {
		got := r.Resolve(domain.LineItem{
			ID: "o", Quantity: -3, StoredUnitPrice: f(20),
			Product: product(100, nil),
		})
		assert.Equal(t, domain.PriceSourceFallback, got.Source)
		assert.Equal(t, 20.0, got.UnitPrice)
		assert.Zero(t, got.TotalPrice)
	})

	t.Run("unknown item kind", func(t *testing.T) {
		got := r.Resolve(domain.LineItem{ID: "p", Kind: "gift-card", Quantity: 1, Price: 15})
		assert.True(t, got.Error)
		assert.Equal(t, 15.0, got.UnitPrice)
	})

	t.Run("stored total wins before a malformed product is inspected", func(t *testing.T) {
		got := r.Resolve(domain.LineItem{
			ID: "q", Quantity: 2, Price: 99, StoredItemTotal: f(60),
			Product: product(math.Inf(1), nil),
		})
		assert.Equal(t, domain.PriceSourceStoredItemTotal, got.Source)
		assert.False(t, got.Error)
		assert.Equal(t, 30.0, got.UnitPrice)
	})

	t.Run("fallback prefers stored prices over raw price", func(t *testing.T) {
		got := r.Resolve(domain.LineItem{
			ID: "r", Kind: domain.ItemKindProduct, Quantity: 0, Price: 99, StoredSizeAdjustedPrice: f(70),
		})
		assert.Equal(t, domain.PriceSourceFallback, got.Source)
		assert.Equal(t, 70.0, got.UnitPrice)
	})
}

func TestResolver_Idempotent(t *testing.T) {
	r := NewResolver(DefaultSizeTables())
	item := domain.LineItem{
		ID: "i", Quantity: 3, Size: s("M"),
		Product: product(99.99, f(12.5)),
	}

	first := r.Resolve(item)
	second := r.Resolve(item)

	require.Equal(t, first, second)
}

func TestResolver_CatalogSizeKeysDifferingInCase(t *testing.T) {
	r := NewResolver(DefaultSizeTables())
	item := domain.LineItem{
		ID: "j", Quantity: 1, Size: s("l"),
		Product: &domain.ProductRef{
			ID: "prod-4", BasePrice: 100,
			SizePricing: map[string]float64{"l": 999, "L": 140},
		},
	}

	for i := 0; i < 50; i++ {
		res := r.Resolve(item)
		require.Equal(t, domain.PriceSourceCatalogSizePrice, res.Source)
		require.Equal(t, 140.0, res.UnitPrice)
	}
}

func TestResolver_ResolveAll(t *testing.T) {
	r := NewResolver(DefaultSizeTables())
	items := []domain.LineItem{
		{ID: "1", Quantity: 1, Product: product(100, f(10))},
		{ID: "2", Kind: domain.ItemKindBundle, Quantity: 1, Bundle: &domain.BundleRef{ID: "b", BundlePrice: f(400), OriginalPrice: f(500)}},
	}

	results := r.ResolveAll(items)

	require.Len(t, results, 2)
	assert.Equal(t, 90.0, results[0].UnitPrice)
	assert.True(t, results[1].IsBundle)
	assert.Equal(t, 400.0, results[1].UnitPrice)
}
