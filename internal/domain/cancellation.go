package domain

import (
	"context"
	"time"
)

type CancellationFilter struct {
	Page    int
	Limit   int
	Status  string
	OrderID string
}

// CancellationRequest is a submitted quote awaiting admin review.
type CancellationRequest struct {
	ID             string     `json:"id"`
	OrderID        string     `json:"orderId"`
	Kind           string     `json:"kind"`
	ItemIDs        []string   `json:"itemIds"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"` // pending, approved, rejected
	TotalItemValue float64    `json:"totalItemValue"`
	RefundPercent  float64    `json:"refundPercent"`
	RefundAmount   float64    `json:"refundAmount"`
	RetainedAmount float64    `json:"retainedAmount"`
	Penalties      Penalties  `json:"appliedPenalties"`
	RequestedAt    time.Time  `json:"requestedAt"` // Timestamp the quote was computed with
	RequestedBy    *string    `json:"requestedBy"`
	DecidedAt      *time.Time `json:"decidedAt"`
	DecidedBy      *string    `json:"decidedBy"`
	DecisionNote   *string    `json:"decisionNote"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// NewCancellationRequest snapshots a computed result for review.
func NewCancellationRequest(id string, result CancellationResult, reason string, requestedBy *string) *CancellationRequest {
	return &CancellationRequest{
		ID:             id,
		OrderID:        result.OrderID,
		Kind:           result.Kind,
		ItemIDs:        result.ItemIDs(),
		Reason:         reason,
		Status:         RequestStatusPending,
		TotalItemValue: result.TotalItemValue,
		RefundPercent:  result.RefundPercent,
		RefundAmount:   result.RefundAmount,
		RetainedAmount: result.RetainedAmount,
		Penalties:      Penalties(result.Decision.AppliedPenalties),
		RequestedAt:    result.RequestDate,
		RequestedBy:    requestedBy,
	}
}

// CancellationQuote is a computed result held in cache until the customer
// submits it or it expires.
type CancellationQuote struct {
	ID        string             `json:"quoteId"`
	Result    CancellationResult `json:"result"`
	ExpiresAt time.Time          `json:"expiresAt"`
}

type CancellationRepository interface {
	Create(ctx context.Context, req *CancellationRequest) error
	GetByID(ctx context.Context, id string) (*CancellationRequest, error)
	List(ctx context.Context, filter CancellationFilter) ([]CancellationRequest, int64, error)
	UpdateDecision(ctx context.Context, id, status string, decidedBy *string, note *string, decidedAt time.Time) error
}

// RefundGateway executes the money transfer for an approved request.
type RefundGateway interface {
	ExecuteRefund(ctx context.Context, req CancellationRequest) error
}
