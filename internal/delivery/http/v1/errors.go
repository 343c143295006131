package v1

import (
	"errors"
	"net/http"
	"storefront-backend/internal/domain"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/utils"
)

// writeUsecaseError maps domain errors to HTTP statuses. Anything unmapped is
// logged and reported as a 500 without leaking the cause.
func writeUsecaseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptySelection),
		errors.Is(err, domain.ErrInvalidSelection),
		errors.Is(err, domain.ErrInvalidContext),
		errors.Is(err, domain.ErrInvalidFilter):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrQuoteNotFound),
		errors.Is(err, domain.ErrRequestNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNotCancellable),
		errors.Is(err, domain.ErrRequestNotPending),
		errors.Is(err, domain.ErrRequestExists):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrPolicyViolation):
		utils.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.WithContext(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("Handler: unhandled error")
		utils.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
