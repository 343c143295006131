package v1

import (
	"context"
	"errors"
	"net/http"
	"storefront-backend/internal/delivery/http/middleware"
	"storefront-backend/internal/domain"
	"storefront-backend/pkg/utils"
	"strings"
)

type cancellationReview interface {
	List(ctx context.Context, filter domain.CancellationFilter) ([]domain.CancellationRequest, domain.Pagination, error)
	Approve(ctx context.Context, requestID, actorID string) (*domain.CancellationRequest, error)
	Reject(ctx context.Context, requestID, reason, actorID string) (*domain.CancellationRequest, error)
	OrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error)
}

type AdminCancellationHandler struct {
	cancelUC cancellationReview
}

func NewAdminCancellationHandler(uc cancellationReview) *AdminCancellationHandler {
	return &AdminCancellationHandler{cancelUC: uc}
}

// GET /api/v1/admin/cancellation-requests?page=&limit=&status=&orderId=
func (h *AdminCancellationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.CancellationFilter{
		Page:    utils.ParseInt(q.Get("page"), 1),
		Limit:   utils.ParseInt(q.Get("limit"), 20),
		Status:  strings.ToLower(strings.TrimSpace(q.Get("status"))),
		OrderID: strings.TrimSpace(q.Get("orderId")),
	}

	requests, pagination, err := h.cancelUC.List(r.Context(), filter)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	if requests == nil {
		requests = []domain.CancellationRequest{}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests":   requests,
		"pagination": pagination,
	})
}

// POST /api/v1/admin/cancellation-requests/{id}/approve
func (h *AdminCancellationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "Request ID required")
		return
	}

	req, err := h.cancelUC.Approve(r.Context(), id, middleware.ActorID(r.Context()))
	if err != nil {
		// Approved but not paid out: report both so the refund can be retried.
		if errors.Is(err, domain.ErrRefundExecution) && req != nil {
			utils.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
				"request":     req,
				"refundError": err.Error(),
			})
			return
		}
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, req)
}

// POST /api/v1/admin/cancellation-requests/{id}/reject
func (h *AdminCancellationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "Request ID required")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := utils.DecodeOptionalJSON(w, r, &body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	req, err := h.cancelUC.Reject(r.Context(), id, strings.TrimSpace(body.Reason), middleware.ActorID(r.Context()))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, req)
}

// GET /api/v1/admin/orders/{id}/history
func (h *AdminCancellationHandler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "Order ID required")
		return
	}

	history, err := h.cancelUC.OrderHistory(r.Context(), id)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, history)
}
