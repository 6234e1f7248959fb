package httpapi

import (
	"database/sql"
	"errors"
	"net/http"

	"shopflow-be/internal/logger"
	"shopflow-be/internal/order"
	"shopflow-be/internal/payment"
	"shopflow-be/internal/product"
	"shopflow-be/internal/user"
	"shopflow-be/internal/utils"

	"go.uber.org/zap"
)

// writeError maps domain errors to HTTP status codes. Anything unmapped is
// an internal failure and is logged but never echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *order.InsufficientStockError
	if errors.As(err, &stockErr) {
		utils.WriteJSON(w, http.StatusConflict, map[string]any{
			"error": stockErr.Error(),
			"items": stockErr.Items,
		})
		return
	}

	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, payment.ErrPaymentNotFound),
		errors.Is(err, payment.ErrNoPayment),
		errors.Is(err, sql.ErrNoRows):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidAddress),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidStock):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)

	case errors.Is(err, order.ErrForbidden),
		errors.Is(err, payment.ErrForbidden):
		utils.WriteJSONError(w, err.Error(), http.StatusForbidden)

	case errors.Is(err, order.ErrCannotCancel),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, payment.ErrAlreadyPaid),
		errors.Is(err, payment.ErrAlreadyRefunded),
		errors.Is(err, user.ErrEmailExists):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)

	case errors.Is(err, payment.ErrPaymentFailed),
		errors.Is(err, payment.ErrRefundFailed):
		utils.WriteJSONError(w, err.Error(), http.StatusPaymentRequired)

	case errors.Is(err, user.ErrInvalidCredentials):
		utils.WriteJSONError(w, err.Error(), http.StatusUnauthorized)

	default:
		logger.FromCtx(r.Context()).Error("unhandled error", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
