package v1

import (
	"context"
	"net/http"
	"storefront-backend/internal/domain"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/utils"
)

type orderPricer interface {
	Summary(ctx context.Context, orderID string) (*usecase.OrderPricingSummary, error)
	SizePreview(ctx context.Context, productID string) (*usecase.SizePricePreview, error)
	BundlePreview(ctx context.Context, bundleID string) (*domain.PricingResult, error)
}

type OrderPricingHandler struct {
	pricingUC orderPricer
}

func NewOrderPricingHandler(uc orderPricer) *OrderPricingHandler {
	return &OrderPricingHandler{pricingUC: uc}
}

// GET /api/v1/orders/{id}/pricing
func (h *OrderPricingHandler) GetPricing(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "Order ID required")
		return
	}

	summary, err := h.pricingUC.Summary(r.Context(), id)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

// GET /api/v1/products/{id}/size-prices
func (h *OrderPricingHandler) GetSizePrices(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "Product ID required")
		return
	}

	preview, err := h.pricingUC.SizePreview(r.Context(), id)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, preview)
}

// GET /api/v1/bundles/{id}/pricing
func (h *OrderPricingHandler) GetBundlePricing(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "Bundle ID required")
		return
	}

	result, err := h.pricingUC.BundlePreview(r.Context(), id)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
