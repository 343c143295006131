package usecase

import (
	"context"
	"fmt"
	"slices"
	"storefront-backend/internal/domain"
	"storefront-backend/internal/pricing"
	"storefront-backend/internal/refund"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/logger"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type CancellationUsecase struct {
	orderRepo   domain.OrderRepository
	requestRepo domain.CancellationRepository
	txManager   domain.TransactionManager
	calculator  *refund.Calculator
	gateway     domain.RefundGateway
	cache       cache.CacheService
	quoteTTL    time.Duration
	now         func() time.Time
}

func NewCancellationUsecase(
	orderRepo domain.OrderRepository,
	requestRepo domain.CancellationRepository,
	txManager domain.TransactionManager,
	calculator *refund.Calculator,
	gateway domain.RefundGateway,
	cache cache.CacheService,
	quoteTTL time.Duration,
) *CancellationUsecase {
	return &CancellationUsecase{
		orderRepo:   orderRepo,
		requestRepo: requestRepo,
		txManager:   txManager,
		calculator:  calculator,
		gateway:     gateway,
		cache:       cache,
		quoteTTL:    quoteTTL,
		now:         time.Now,
	}
}

func quoteKey(id string) string {
	return "cancellation:quote:" + id
}

// --- Customer Flow ---

// Quote prices a full (no itemIDs) or partial cancellation against a single
// request timestamp and caches the result for Submit.
func (u *CancellationUsecase) Quote(ctx context.Context, orderID string, itemIDs []string) (*domain.CancellationQuote, error) {
	requestDate := u.now().UTC()

	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.ParseOrderStatus(string(order.Status)).IsCancellable() {
		return nil, fmt.Errorf("order %s is %s: %w", order.ID, order.Status, domain.ErrOrderNotCancellable)
	}
	if len(order.Items) == 0 {
		return nil, domain.ErrEmptySelection
	}
	live := order.WithLiveItems()
	if len(live.Items) == 0 {
		return nil, fmt.Errorf("order %s has no items left to cancel: %w", order.ID, domain.ErrOrderNotCancellable)
	}
	if err := checkLiveSelection(*order, itemIDs); err != nil {
		return nil, err
	}

	// Refunded lines are never priced again.
	cctx := domain.NewCancellationContext(*order, requestDate)
	var result domain.CancellationResult
	if len(itemIDs) == 0 {
		result, err = u.calculator.ComputeFull(live, cctx)
	} else {
		result, err = u.calculator.ComputePartial(live, itemIDs, cctx)
	}
	if err != nil {
		return nil, err
	}

	if report := pricing.ValidateCancellation(result); !report.IsValid {
		logger.WithContext(ctx).Error().
			Str("order_id", order.ID).
			Str("violations", report.Summary()).
			Msg("Usecase: Quote - computed refund failed validation")
		return nil, fmt.Errorf("%w: %s", domain.ErrPolicyViolation, report.Summary())
	}

	quote := &domain.CancellationQuote{
		ID:        uuid.NewString(),
		Result:    result,
		ExpiresAt: requestDate.Add(u.quoteTTL),
	}
	u.cache.Set(quoteKey(quote.ID), quote, u.quoteTTL)

	logger.WithContext(ctx).Info().
		Str("quote_id", quote.ID).
		Str("order_id", order.ID).
		Str("kind", result.Kind).
		Float64("refund_percent", result.RefundPercent).
		Float64("refund_amount", result.RefundAmount).
		Msg("Usecase: Quote - cancellation quoted")
	return quote, nil
}

// Submit turns a cached quote into a pending request. The figures are taken
// from the quote as computed; they are not recomputed at submit time.
func (u *CancellationUsecase) Submit(ctx context.Context, quoteID, reason string, actorID *string) (*domain.CancellationRequest, error) {
	quote, found := cache.GetAs[*domain.CancellationQuote](u.cache, quoteKey(quoteID))
	if !found {
		return nil, domain.ErrQuoteNotFound
	}

	if report := pricing.ValidateCancellation(quote.Result); !report.IsValid {
		return nil, fmt.Errorf("%w: %s", domain.ErrPolicyViolation, report.Summary())
	}

	order, err := u.orderRepo.GetByID(ctx, quote.Result.OrderID)
	if err != nil {
		return nil, err
	}
	if !domain.ParseOrderStatus(string(order.Status)).IsCancellable() {
		return nil, fmt.Errorf("order %s is %s: %w", order.ID, order.Status, domain.ErrOrderNotCancellable)
	}
	if err := checkLiveSelection(*order, quote.Result.ItemIDs()); err != nil {
		return nil, err
	}

	pending, _, err := u.requestRepo.List(ctx, domain.CancellationFilter{
		Page:    1,
		Limit:   1,
		Status:  domain.RequestStatusPending,
		OrderID: order.ID,
	})
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		return nil, domain.ErrRequestExists
	}

	req := domain.NewCancellationRequest(uuid.NewString(), quote.Result, reason, actorID)
	req.CreatedAt = u.now().UTC()

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.requestRepo.Create(txCtx, req); err != nil {
			return fmt.Errorf("failed to create cancellation request: %w", err)
		}

		prev := string(order.Status)
		note := fmt.Sprintf("Cancellation requested (%s): refund %.0f%% = %.2f of %.2f",
			req.Kind, req.RefundPercent, req.RefundAmount, req.TotalItemValue)
		history := domain.OrderHistory{
			ID:             uuid.NewString(),
			OrderID:        order.ID,
			PreviousStatus: &prev,
			NewStatus:      order.Status,
			Reason:         &note,
			CreatedBy:      actorID,
			CreatedAt:      req.CreatedAt,
		}
		if err := u.orderRepo.CreateOrderHistory(txCtx, &history); err != nil {
			return fmt.Errorf("failed to record history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.cache.Delete(quoteKey(quoteID))
	logger.Refund(ctx, "Usecase: Submit - cancellation requested", req.OrderID, req.RefundPercent, req.RefundAmount)
	return req, nil
}

// --- Admin Flow ---

func (u *CancellationUsecase) List(ctx context.Context, filter domain.CancellationFilter) ([]domain.CancellationRequest, domain.Pagination, error) {
	if filter.Status != "" && !slices.Contains(domain.RequestStatuses, filter.Status) {
		return nil, domain.Pagination{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidFilter, filter.Status)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	requests, total, err := u.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return requests, domain.NewPagination(filter.Page, filter.Limit, total), nil
}

// Approve accepts a pending request, marks its items cancelled, moves the
// order to CANCELLED once no live item remains (PARTIALLY CANCELLED before
// that) and hands the refund amount to the gateway once the transaction commits.
func (u *CancellationUsecase) Approve(ctx context.Context, requestID, actorID string) (*domain.CancellationRequest, error) {
	req, err := u.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	order, err := u.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	itemIDs := req.ItemIDs
	if len(itemIDs) == 0 && req.Kind == domain.CancellationFull {
		for _, item := range order.LiveItems() {
			itemIDs = append(itemIDs, item.ID)
		}
	}
	newStatus := statusAfterCancelling(*order, itemIDs)
	decidedAt := u.now().UTC()

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.requestRepo.UpdateDecision(txCtx, req.ID, domain.RequestStatusApproved, &actorID, nil, decidedAt); err != nil {
			return err
		}
		if err := u.orderRepo.MarkItemsCancelled(txCtx, order.ID, itemIDs, req.ID, decidedAt); err != nil {
			return err
		}
		if err := u.orderRepo.UpdateStatus(txCtx, order.ID, newStatus); err != nil {
			return err
		}

		prev := string(order.Status)
		note := fmt.Sprintf("Cancellation approved: refund %.0f%% = %.2f", req.RefundPercent, req.RefundAmount)
		history := domain.OrderHistory{
			ID:             uuid.NewString(),
			OrderID:        order.ID,
			PreviousStatus: &prev,
			NewStatus:      newStatus,
			Reason:         &note,
			CreatedBy:      &actorID,
			CreatedAt:      decidedAt,
		}
		if err := u.orderRepo.CreateOrderHistory(txCtx, &history); err != nil {
			return fmt.Errorf("failed to record history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	req.Status = domain.RequestStatusApproved
	req.DecidedAt = &decidedAt
	req.DecidedBy = &actorID
	logger.Refund(ctx, "Usecase: Approve - cancellation approved", req.OrderID, req.RefundPercent, req.RefundAmount)

	// The request stays approved if execution fails; the error surfaces so it
	// can be retried out of band.
	if err := u.gateway.ExecuteRefund(ctx, *req); err != nil {
		logger.WithContext(ctx).Error().Err(err).
			Str("request_id", req.ID).
			Msg("Usecase: Approve - refund execution failed")
		return req, fmt.Errorf("%w: %v", domain.ErrRefundExecution, err)
	}
	return req, nil
}

func (u *CancellationUsecase) Reject(ctx context.Context, requestID, reason, actorID string) (*domain.CancellationRequest, error) {
	req, err := u.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	order, err := u.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	decidedAt := u.now().UTC()

	var notePtr *string
	if reason != "" {
		notePtr = &reason
	}

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.requestRepo.UpdateDecision(txCtx, req.ID, domain.RequestStatusRejected, &actorID, notePtr, decidedAt); err != nil {
			return err
		}

		prev := string(order.Status)
		note := "Cancellation request rejected"
		if reason != "" {
			note += ": " + reason
		}
		history := domain.OrderHistory{
			ID:             uuid.NewString(),
			OrderID:        order.ID,
			PreviousStatus: &prev,
			NewStatus:      order.Status,
			Reason:         &note,
			CreatedBy:      &actorID,
			CreatedAt:      decidedAt,
		}
		return u.orderRepo.CreateOrderHistory(txCtx, &history)
	})
	if err != nil {
		return nil, err
	}

	req.Status = domain.RequestStatusRejected
	req.DecidedAt = &decidedAt
	req.DecidedBy = &actorID
	req.DecisionNote = notePtr
	logger.WithContext(ctx).Info().
		Str("request_id", req.ID).
		Str("order_id", req.OrderID).
		Msg("Usecase: Reject - cancellation rejected")
	return req, nil
}

// OrderHistory returns the status trail of an order, oldest first.
func (u *CancellationUsecase) OrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	if _, err := u.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	history, err := u.orderRepo.GetOrderHistory(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []domain.OrderHistory{}
	}
	return history, nil
}

func (u *CancellationUsecase) pendingRequest(ctx context.Context, requestID string) (*domain.CancellationRequest, error) {
	req, err := u.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RequestStatusPending {
		return nil, fmt.Errorf("request %s is %s: %w", req.ID, req.Status, domain.ErrRequestNotPending)
	}
	return req, nil
}

// checkLiveSelection rejects item ids that an approved request already refunded.
func checkLiveSelection(order domain.Order, itemIDs []string) error {
	for _, id := range itemIDs {
		if item, ok := order.ItemByID(strings.TrimSpace(id)); ok && item.IsCancelled() {
			return fmt.Errorf("%w: item %q is already cancelled", domain.ErrInvalidSelection, id)
		}
	}
	return nil
}

// statusAfterCancelling is CANCELLED once no live item would remain.
func statusAfterCancelling(order domain.Order, itemIDs []string) domain.OrderStatus {
	for _, item := range order.LiveItems() {
		if !slices.Contains(itemIDs, item.ID) {
			return domain.OrderStatusPartiallyCancelled
		}
	}
	return domain.OrderStatusCancelled
}
