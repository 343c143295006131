package v1

import (
	"net/http"
	"storefront-backend/internal/domain"
	"storefront-backend/internal/pricing"
	"storefront-backend/internal/refund"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/utils"
	"strconv"
	"time"
)

const enumsCacheKey = "system:config:enums"

type ConfigHandler struct {
	cache  cache.CacheService
	sizes  pricing.SizeTables
	policy refund.PolicyConfig
	ttl    time.Duration
}

func NewConfigHandler(cache cache.CacheService, sizes pricing.SizeTables, policy refund.PolicyConfig, ttl time.Duration) *ConfigHandler {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ConfigHandler{cache: cache, sizes: sizes, policy: policy, ttl: ttl}
}

// GET /api/v1/config/enums
func (h *ConfigHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	maxAge := "public, max-age=" + strconv.Itoa(int(h.ttl.Seconds()))

	if val, found := h.cache.Get(enumsCacheKey); found {
		w.Header().Set("Cache-Control", maxAge)
		utils.WriteJSON(w, http.StatusOK, val)
		return
	}

	response := map[string]interface{}{
		"orderStatuses":   domain.OrderStatuses,
		"requestStatuses": domain.RequestStatuses,
		"sizeCodes":       h.sizes.Codes(),
		"sizeTables":      h.sizes,
		"refundPolicy":    h.policy,
	}
	h.cache.Set(enumsCacheKey, response, h.ttl)

	w.Header().Set("Cache-Control", maxAge)
	utils.WriteJSON(w, http.StatusOK, response)
}
