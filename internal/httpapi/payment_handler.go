package httpapi

import (
	"encoding/json"
	"net/http"

	"shopflow-be/internal/metrics"
	"shopflow-be/internal/utils"

	"github.com/google/uuid"
)

type processPaymentRequest struct {
	Method string `json:"method"`
}

func (s *Server) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req processPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	callerID, _ := utils.GetUserIDFromContext(r.Context())
	role := utils.GetUserRoleFromContext(r.Context())

	p, err := s.payments.ProcessPayment(r.Context(), orderID, req.Method, callerID, role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.PaymentsCaptured.Inc()
	utils.WriteJSON(w, http.StatusCreated, p)
}

type refundRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleRefundPayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := s.payments.RefundPayment(r.Context(), orderID, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.PaymentsRefunded.Inc()
	utils.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	callerID, _ := utils.GetUserIDFromContext(r.Context())
	role := utils.GetUserRoleFromContext(r.Context())

	// Ownership is enforced on the order lookup; payments inherit it.
	if _, err := s.orders.GetOrder(r.Context(), orderID, callerID, role); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.payments.GetPaymentStatus(r.Context(), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}
