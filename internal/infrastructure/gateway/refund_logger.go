package gateway

import (
	"context"
	"fmt"
	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
)

// LoggingRefundGateway records approved refunds without moving money. It
// stands in until a payment provider integration exists.
type LoggingRefundGateway struct{}

func NewLoggingRefundGateway() *LoggingRefundGateway {
	return &LoggingRefundGateway{}
}

func (g *LoggingRefundGateway) ExecuteRefund(ctx context.Context, req domain.CancellationRequest) error {
	if req.Status != domain.RequestStatusApproved {
		return fmt.Errorf("refund for request %s: %w", req.ID, domain.ErrRequestNotPending)
	}
	if req.RefundAmount < 0 {
		return fmt.Errorf("refund for request %s has negative amount %.2f", req.ID, req.RefundAmount)
	}
	if req.RefundAmount == 0 {
		logger.WithContext(ctx).Info().
			Str("request_id", req.ID).
			Str("order_id", req.OrderID).
			Msg("Gateway: nothing to refund")
		return nil
	}

	logger.WithContext(ctx).Info().
		Str("request_id", req.ID).
		Str("order_id", req.OrderID).
		Strs("item_ids", req.ItemIDs).
		Float64("refund_percent", req.RefundPercent).
		Float64("refund_amount", req.RefundAmount).
		Float64("retained_amount", req.RetainedAmount).
		Msg("Gateway: refund instruction recorded")
	return nil
}
