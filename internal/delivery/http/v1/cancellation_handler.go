package v1

import (
	"context"
	"net/http"
	"storefront-backend/internal/delivery/http/middleware"
	"storefront-backend/internal/domain"
	"storefront-backend/pkg/utils"
	"strings"
)

type cancellationFlow interface {
	Quote(ctx context.Context, orderID string, itemIDs []string) (*domain.CancellationQuote, error)
	Submit(ctx context.Context, quoteID, reason string, actorID *string) (*domain.CancellationRequest, error)
}

type CancellationHandler struct {
	cancelUC cancellationFlow
}

func NewCancellationHandler(uc cancellationFlow) *CancellationHandler {
	return &CancellationHandler{cancelUC: uc}
}

// POST /api/v1/orders/{id}/cancellation/quote
// An empty or missing itemIds list quotes a full cancellation.
func (h *CancellationHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "Order ID required")
		return
	}

	var req struct {
		ItemIDs []string `json:"itemIds"`
	}
	if err := utils.DecodeOptionalJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	quote, err := h.cancelUC.Quote(r.Context(), id, req.ItemIDs)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, quote)
}

// POST /api/v1/cancellation-requests
func (h *CancellationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuoteID string `json:"quoteId"`
		Reason  string `json:"reason"`
	}
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	req.QuoteID = strings.TrimSpace(req.QuoteID)
	if req.QuoteID == "" {
		utils.WriteError(w, http.StatusBadRequest, "quoteId required")
		return
	}

	var actor *string
	if id := middleware.ActorID(r.Context()); id != "" {
		actor = &id
	}

	created, err := h.cancelUC.Submit(r.Context(), req.QuoteID, strings.TrimSpace(req.Reason), actor)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}
