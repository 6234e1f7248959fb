package httpapi

import (
	"net/http"

	"shopflow-be/internal/metrics"
	"shopflow-be/internal/middleware"
	"shopflow-be/internal/order"
	"shopflow-be/internal/payment"
	"shopflow-be/internal/product"
	"shopflow-be/internal/user"
	"shopflow-be/internal/utils"
)

// Server owns the REST surface. Handlers stay thin: decode, call the
// service with the caller identity from context, map errors.
type Server struct {
	users    user.Service
	products product.Service
	orders   order.Service
	payments payment.Service
}

func NewServer(users user.Service, products product.Service, orders order.Service, payments payment.Service) *Server {
	return &Server{
		users:    users,
		products: products,
		orders:   orders,
		payments: payments,
	}
}

// Routes builds the full handler chain: logging outermost, then token
// parsing, then rate limiting keyed on the resolved identity.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	mux.HandleFunc("GET /products", s.handleListProducts)
	mux.HandleFunc("GET /products/{id}", s.handleGetProduct)
	mux.Handle("POST /products", admin(s.handleCreateProduct))
	mux.Handle("DELETE /products/{id}", admin(s.handleDeactivateProduct))

	mux.Handle("POST /orders", authed(s.handleCreateOrder))
	mux.Handle("GET /orders", authed(s.handleListOrders))
	mux.Handle("GET /orders/{id}", authed(s.handleGetOrder))
	mux.Handle("PATCH /orders/{id}/status", admin(s.handleUpdateOrderStatus))
	mux.Handle("POST /orders/{id}/cancel", authed(s.handleCancelOrder))
	mux.Handle("GET /orders/{id}/invoice", authed(s.handleInvoice))

	mux.Handle("POST /orders/{id}/payments", authed(s.handleProcessPayment))
	mux.Handle("GET /orders/{id}/payments", authed(s.handlePaymentStatus))
	mux.Handle("POST /orders/{id}/refund", admin(s.handleRefundPayment))

	mux.Handle("GET /admin/stats", admin(s.handleOrderStats))

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /metrics", handleMetrics)

	var h http.Handler = mux
	h = middleware.RateLimitMiddleware(h)
	h = middleware.AuthMiddleware(h)
	h = middleware.LoggingMiddleware(h)
	return h
}

func authed(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(h)
}

func admin(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(middleware.RequireAdmin(h))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleMetrics(w http.ResponseWriter, _ *http.Request) {
	utils.WriteJSON(w, http.StatusOK, metrics.Snapshot())
}
