package refund

import (
	"fmt"
	"math"
	"storefront-backend/internal/domain"
	"time"
)

type TierUnit string

const (
	TierUnitHours TierUnit = "hours"
	TierUnitDays  TierUnit = "days"
)

// Penalty names recorded on a RefundDecision.
const (
	PenaltyDeliveredOrder = "delivered_order"
	PenaltyLateRequest    = "late_request"
)

// Tier maps an elapsed-time bracket onto a baseline refund percent.
// Max is compared against hoursSinceOrder or daysSinceOrder depending on Unit.
type Tier struct {
	Name    string   `json:"name" yaml:"name"`
	Unit    TierUnit `json:"unit" yaml:"unit"`
	Max     float64  `json:"max" yaml:"max"`
	Percent float64  `json:"percent" yaml:"percent"`
}

// PolicyConfig is injected into the engine; nothing here is global.
//
// When UsePolicyOverride is false the baseline comes from Tiers (falling back
// to LateTierPercent) and the late-request penalty is not applied, since the
// tiers already encode lateness. When true the baseline is
// BaseRefundPercentage and the late-request penalty applies instead.
type PolicyConfig struct {
	BaseRefundPercentage    float64 `json:"baseRefundPercentage" yaml:"base_percent"`
	DeliveredOrderPenalty   float64 `json:"deliveredOrderPenalty" yaml:"delivered_penalty"`
	LateRequestPenalty      float64 `json:"lateRequestPenalty" yaml:"late_penalty"`
	LateRequestAfterDays    int     `json:"lateRequestAfterDays" yaml:"late_after_days"`
	MinimumRefundPercentage float64 `json:"minimumRefundPercentage" yaml:"minimum_percent"`
	Tiers                   []Tier  `json:"tiers" yaml:"tiers"`
	LateTierPercent         float64 `json:"lateTierPercent" yaml:"late_tier_percent"`
	UsePolicyOverride       bool    `json:"usePolicyOverride" yaml:"use_override"`
}

func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		BaseRefundPercentage:    75,
		DeliveredOrderPenalty:   25,
		LateRequestPenalty:      15,
		LateRequestAfterDays:    7,
		MinimumRefundPercentage: 25,
		Tiers: []Tier{
			{Name: "within_24_hours", Unit: TierUnitHours, Max: 24, Percent: 90},
			{Name: "within_7_days", Unit: TierUnitDays, Max: 7, Percent: 75},
		},
		LateTierPercent: 50,
	}
}

func (c PolicyConfig) Validate() error {
	percents := map[string]float64{
		"base refund percentage":    c.BaseRefundPercentage,
		"minimum refund percentage": c.MinimumRefundPercentage,
		"late tier percent":         c.LateTierPercent,
	}
	for _, t := range c.Tiers {
		percents["tier "+t.Name] = t.Percent
	}
	for name, p := range percents {
		if !isFinite(p) || p < 0 || p > 100 {
			return fmt.Errorf("refund policy: %s must be within [0, 100], got %v", name, p)
		}
	}
	penalties := map[string]float64{
		"delivered order penalty": c.DeliveredOrderPenalty,
		"late request penalty":    c.LateRequestPenalty,
	}
	for name, p := range penalties {
		if !isFinite(p) || p < 0 {
			return fmt.Errorf("refund policy: %s must be a non-negative number, got %v", name, p)
		}
	}
	if c.LateRequestAfterDays < 0 {
		return fmt.Errorf("refund policy: late request threshold must not be negative")
	}
	for _, t := range c.Tiers {
		if t.Unit != TierUnitHours && t.Unit != TierUnitDays {
			return fmt.Errorf("refund policy: tier %s has unknown unit %q", t.Name, t.Unit)
		}
		if !isFinite(t.Max) || t.Max < 0 {
			return fmt.Errorf("refund policy: tier %s max must be a non-negative number, got %v", t.Name, t.Max)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PolicyEngine computes the refund percentage for a cancellation. It holds
// no mutable state.
type PolicyEngine struct {
	cfg PolicyConfig
}

func NewPolicyEngine(cfg PolicyConfig) (*PolicyEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PolicyEngine{cfg: cfg}, nil
}

func (e *PolicyEngine) Config() PolicyConfig {
	return e.cfg
}

// ComputePercent derives the refund decision for order at cctx.RequestDate.
// Missing context fields fall back to the order's own status and date.
func (e *PolicyEngine) ComputePercent(order domain.Order, cctx domain.CancellationContext) (domain.RefundDecision, error) {
	if cctx.RequestDate.IsZero() {
		return domain.RefundDecision{}, fmt.Errorf("%w: request date is required", domain.ErrInvalidContext)
	}
	orderDate := cctx.OrderDate
	if orderDate.IsZero() {
		orderDate = order.PlacedAt()
	}
	if orderDate.IsZero() {
		return domain.RefundDecision{}, fmt.Errorf("%w: order %s has no order date", domain.ErrInvalidContext, order.ID)
	}
	status := cctx.OrderStatus
	if status == "" {
		status = order.Status
	}

	hours, days := elapsed(orderDate, cctx.RequestDate)
	decision := domain.RefundDecision{
		HoursSinceOrder:  hours,
		DaysSinceOrder:   days,
		AppliedPenalties: []domain.Penalty{},
	}

	if e.cfg.UsePolicyOverride {
		decision.BaselinePercent = e.cfg.BaseRefundPercentage
		decision.Tier = "policy"
	} else {
		decision.Tier, decision.BaselinePercent = e.tierFor(hours, days)
	}

	percent := decision.BaselinePercent
	deduct := func(name string, points float64) {
		if points <= 0 {
			return
		}
		percent -= points
		decision.AppliedPenalties = append(decision.AppliedPenalties, domain.Penalty{Name: name, Points: points})
	}

	if domain.ParseOrderStatus(string(status)) == domain.OrderStatusDelivered {
		deduct(PenaltyDeliveredOrder, e.cfg.DeliveredOrderPenalty)
	}
	if e.cfg.UsePolicyOverride && days > e.cfg.LateRequestAfterDays {
		deduct(PenaltyLateRequest, e.cfg.LateRequestPenalty)
	}

	if percent < e.cfg.MinimumRefundPercentage {
		percent = e.cfg.MinimumRefundPercentage
		decision.FloorApplied = true
	}
	if percent > 100 {
		percent = 100
	}
	decision.RefundPercent = percent
	return decision, nil
}

func (e *PolicyEngine) tierFor(hours float64, days int) (string, float64) {
	for _, t := range e.cfg.Tiers {
		switch t.Unit {
		case TierUnitHours:
			if hours <= t.Max {
				return t.Name, t.Percent
			}
		case TierUnitDays:
			if float64(days) <= t.Max {
				return t.Name, t.Percent
			}
		}
	}
	return "late", e.cfg.LateTierPercent
}

// elapsed clamps requests dated before the order to zero.
func elapsed(orderDate, requestDate time.Time) (float64, int) {
	hours := requestDate.Sub(orderDate).Hours()
	if hours < 0 {
		hours = 0
	}
	return hours, int(math.Floor(hours / 24))
}
