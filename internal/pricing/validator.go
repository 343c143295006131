package pricing

import (
	"fmt"
	"math"
	"storefront-backend/internal/domain"
)

// tolerance absorbs one rounding step of 0.01.
const tolerance = 0.01 + 1e-9

type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationReport lists every violation found; it never stops at the first.
type ValidationReport struct {
	IsValid    bool        `json:"isValid"`
	Violations []Violation `json:"violations"`
}

// Summary joins the violation messages for logs and error wrapping.
func (r ValidationReport) Summary() string {
	if r.IsValid {
		return "valid"
	}
	msg := fmt.Sprintf("%d pricing violation(s)", len(r.Violations))
	for _, v := range r.Violations {
		msg += "; " + v.Message
	}
	return msg
}

type checker struct {
	violations []Violation
}

func (c *checker) fail(field, rule, format string, args ...any) {
	c.violations = append(c.violations, Violation{
		Field:   field,
		Rule:    rule,
		Message: field + ": " + fmt.Sprintf(format, args...),
	})
}

func (c *checker) nonNegative(field string, v float64) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		c.fail(field, "finite", "must be a finite number, got %v", v)
	case v < 0:
		c.fail(field, "non_negative", "must be >= 0, got %.2f", v)
	}
}

func (c *checker) percent(field string, v float64) {
	if math.IsNaN(v) || v < 0 || v > 100 {
		c.fail(field, "percent_range", "must be within [0, 100], got %v", v)
	}
}

func (c *checker) report() ValidationReport {
	return ValidationReport{IsValid: len(c.violations) == 0, Violations: c.violations}
}

func (c *checker) pricing(prefix string, r domain.PricingResult) {
	c.nonNegative(prefix+"unitPrice", r.UnitPrice)
	c.nonNegative(prefix+"totalPrice", r.TotalPrice)
	c.percent(prefix+"discountPercent", r.DiscountPercent)
	if !r.IsBundle && r.TotalOriginalPrice < r.TotalPrice {
		c.fail(prefix+"totalOriginalPrice", "original_covers_total",
			"must be >= totalPrice (%.2f < %.2f)", r.TotalOriginalPrice, r.TotalPrice)
	}
}

// ValidatePricing checks one resolved line item.
func ValidatePricing(r domain.PricingResult) ValidationReport {
	c := &checker{}
	c.pricing("", r)
	return c.report()
}

// ValidateOrder checks every resolved line and the folded totals.
func ValidateOrder(items []domain.ItemPricing, totals domain.OrderTotals) ValidationReport {
	c := &checker{}
	lines := make([]PricedLine, 0, len(items))
	for i, item := range items {
		c.pricing(fmt.Sprintf("items[%d].", i), item.Pricing)
		lines = append(lines, PricedLine{Pricing: item.Pricing})
	}
	want := FoldTotals(lines, Round2)
	if math.Abs(want.TotalPrice-totals.TotalPrice) > tolerance {
		c.fail("totals.totalPrice", "matches_items", "must equal the sum of line totals (%.2f != %.2f)", totals.TotalPrice, want.TotalPrice)
	}
	return c.report()
}

// ValidateCancellation checks every selected item plus the refund split.
func ValidateCancellation(r domain.CancellationResult) ValidationReport {
	c := &checker{}
	sum := 0.0
	for i, item := range r.SelectedItemPricing {
		c.pricing(fmt.Sprintf("selectedItemPricing[%d].", i), item.Pricing)
		sum = AddRounded(sum, item.Pricing.TotalPrice, Round2)
	}

	c.nonNegative("totalItemValue", r.TotalItemValue)
	c.percent("refundPercent", r.RefundPercent)
	c.nonNegative("refundAmount", r.RefundAmount)
	c.nonNegative("retainedAmount", r.RetainedAmount)

	if math.Abs(sum-r.TotalItemValue) > tolerance {
		c.fail("totalItemValue", "matches_items", "must equal the sum of selected totals (%.2f != %.2f)", r.TotalItemValue, sum)
	}
	if r.RefundAmount > r.TotalItemValue+tolerance {
		c.fail("refundAmount", "within_total", "must not exceed totalItemValue (%.2f > %.2f)", r.RefundAmount, r.TotalItemValue)
	}
	if math.Abs(r.RefundAmount+r.RetainedAmount-r.TotalItemValue) > tolerance {
		c.fail("retainedAmount", "split_consistent", "refund + retained must equal totalItemValue")
	}
	return c.report()
}

// ValidateLineItem checks the LineItem invariants before pricing.
func ValidateLineItem(item domain.LineItem, sizes SizeTables) ValidationReport {
	c := &checker{}
	if item.Quantity < 1 {
		c.fail("quantity", "min_quantity", "must be >= 1, got %d", item.Quantity)
	}
	if !isBundleItem(item) && item.Size != nil && *item.Size != "" && !sizes.IsRecognized(*item.Size) {
		c.fail("size", "known_size", "unrecognised size code %q", *item.Size)
	}
	return c.report()
}
