package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SizeTables holds both size adjustment schemes. Additive is the display-time
// upsell preview; Multiplicative is used by the resolver's fallback chain.
// The two are never combined.
type SizeTables struct {
	Additive       map[string]float64 `json:"additive" yaml:"additive"`
	Multiplicative map[string]float64 `json:"multiplicative" yaml:"multiplicative"`
}

func DefaultSizeTables() SizeTables {
	return SizeTables{
		Additive: map[string]float64{
			"XS": 30,
			"S":  50,
			"M":  60,
			"L":  70,
			"XL": 80,
		},
		Multiplicative: map[string]float64{
			"XS":   0.95,
			"S":    1.00,
			"M":    1.05,
			"L":    1.10,
			"XL":   1.15,
			"XXL":  1.20,
			"XXXL": 1.25,
		},
	}
}

// NormalizeSize upper-cases and trims a size code.
func NormalizeSize(size string) string {
	return strings.ToUpper(strings.TrimSpace(size))
}

// AdditiveDelta returns the upsell amount for size, 0 when unknown.
func (t SizeTables) AdditiveDelta(size string) float64 {
	if delta, ok := t.Additive[NormalizeSize(size)]; ok && isFinite(delta) {
		return delta
	}
	return 0
}

// Multiplier returns the price multiplier for size, 1.0 when unknown.
func (t SizeTables) Multiplier(size string) float64 {
	if m, ok := t.Multiplicative[NormalizeSize(size)]; ok && isFinite(m) && m > 0 {
		return m
	}
	return 1.0
}

// HasMultiplier reports whether size has an explicit multiplicative entry.
func (t SizeTables) HasMultiplier(size string) bool {
	m, ok := t.Multiplicative[NormalizeSize(size)]
	return ok && isFinite(m) && m > 0
}

func (t SizeTables) ApplyAdditive(base float64, size string) float64 {
	return AddRounded(base, t.AdditiveDelta(size), Round2)
}

func (t SizeTables) ApplyMultiplier(base float64, size string) float64 {
	if !isFinite(base) {
		return base
	}
	return decimal.NewFromFloat(base).
		Mul(decimal.NewFromFloat(t.Multiplier(size))).
		Round(2).
		InexactFloat64()
}

// IsRecognized reports whether size appears in either table.
func (t SizeTables) IsRecognized(size string) bool {
	code := NormalizeSize(size)
	if _, ok := t.Multiplicative[code]; ok {
		return true
	}
	_, ok := t.Additive[code]
	return ok
}

// Codes lists every recognised size, smallest multiplier first.
func (t SizeTables) Codes() []string {
	seen := make(map[string]struct{})
	codes := make([]string, 0, len(t.Multiplicative)+len(t.Additive))
	for _, table := range []map[string]float64{t.Multiplicative, t.Additive} {
		for code := range table {
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			codes = append(codes, code)
		}
	}
	sort.Slice(codes, func(i, j int) bool {
		mi, mj := t.Multiplier(codes[i]), t.Multiplier(codes[j])
		if mi != mj {
			return mi < mj
		}
		return codes[i] < codes[j]
	})
	return codes
}

// CatalogSizePrice looks size up in a catalog size-price table. The key that
// is already normalized wins; among other spellings of the same code the
// lexically smallest key is used, so the answer never depends on map order.
func CatalogSizePrice(table map[string]float64, size string) (float64, bool) {
	if size == "" || len(table) == 0 {
		return 0, false
	}
	code := NormalizeSize(size)
	if price, ok := table[code]; ok {
		return price, true
	}
	keys := make([]string, 0, len(table))
	for key := range table {
		if NormalizeSize(key) == code {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return 0, false
	}
	sort.Strings(keys)
	return table[keys[0]], true
}
