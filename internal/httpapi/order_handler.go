package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"shopflow-be/internal/metrics"
	"shopflow-be/internal/order"
	"shopflow-be/internal/utils"

	"github.com/google/uuid"
)

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var input order.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := s.orders.CreateOrder(r.Context(), userID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.OrdersCreated.Inc()
	utils.WriteJSON(w, http.StatusCreated, o)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	q := r.URL.Query()
	var filter order.ListFilter
	if v := q.Get("status"); v != "" {
		status := order.OrderStatus(v)
		filter.Status = &status
	}
	if v := q.Get("date_from"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DateFrom = &ts
		}
	}
	if v := q.Get("date_to"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DateTo = &ts
		}
	}

	var limit, page *int32
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			l := int32(n)
			limit = &l
		}
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			p := int32(n)
			page = &p
		}
	}

	orders, err := s.orders.ListOrdersForUser(r.Context(), userID, &filter, limit, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	callerID, _ := utils.GetUserIDFromContext(r.Context())
	role := utils.GetUserRoleFromContext(r.Context())

	o, err := s.orders.GetOrder(r.Context(), orderID, callerID, role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

type updateStatusRequest struct {
	Status string  `json:"status"`
	Note   *string `json:"note,omitempty"`
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := s.orders.UpdateOrderStatus(r.Context(), orderID, order.OrderStatus(req.Status), req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req cancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	callerID, _ := utils.GetUserIDFromContext(r.Context())
	role := utils.GetUserRoleFromContext(r.Context())

	o, err := s.orders.CancelOrder(r.Context(), orderID, req.Reason, callerID, role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.OrdersCancelled.Inc()
	utils.WriteJSON(w, http.StatusOK, o)
}

func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	callerID, _ := utils.GetUserIDFromContext(r.Context())
	role := utils.GetUserRoleFromContext(r.Context())

	inv, err := s.orders.GenerateInvoice(r.Context(), orderID, callerID, role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, inv)
}

func (s *Server) handleOrderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.orders.GetOrderStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}
