package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopflow-be/internal/order"
	"shopflow-be/internal/payment"
	"shopflow-be/internal/product"
	"shopflow-be/internal/user"
	"shopflow-be/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, email, password string) (string, user.User, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Get(1).(user.User), args.Error(2)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (string, user.User, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Get(1).(user.User), args.Error(2)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(user.User), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, opts product.ListOptions) ([]*product.Product, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductService) CreateProduct(ctx context.Context, input product.NewProduct) (*product.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID int, input order.CreateOrderInput) (*order.Order, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID uuid.UUID, callerID int, role string) (*order.Order, error) {
	args := m.Called(ctx, orderID, callerID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListOrdersForUser(ctx context.Context, userID int, filter *order.ListFilter, limit, page *int32) ([]*order.Order, error) {
	args := m.Called(ctx, userID, filter, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus order.OrderStatus, note *string) (*order.Order, error) {
	args := m.Called(ctx, orderID, newStatus, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, reason string, callerID int, role string) (*order.Order, error) {
	args := m.Called(ctx, orderID, reason, callerID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrderStats(ctx context.Context) (*order.OrderStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.OrderStats), args.Error(1)
}

func (m *MockOrderService) GenerateInvoice(ctx context.Context, orderID uuid.UUID, callerID int, role string) (*order.Invoice, error) {
	args := m.Called(ctx, orderID, callerID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Invoice), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) ProcessPayment(ctx context.Context, orderID uuid.UUID, method string, callerID int, role string) (*payment.Payment, error) {
	args := m.Called(ctx, orderID, method, callerID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) RefundPayment(ctx context.Context, orderID uuid.UUID, reason string) (*payment.Payment, error) {
	args := m.Called(ctx, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) GetPaymentStatus(ctx context.Context, orderID uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

// --- Helpers ---

func newTestServer() (*Server, *MockUserService, *MockProductService, *MockOrderService, *MockPaymentService) {
	users := new(MockUserService)
	products := new(MockProductService)
	orders := new(MockOrderService)
	payments := new(MockPaymentService)
	return NewServer(users, products, orders, payments), users, products, orders, payments
}

func authedRequest(method, target string, body any, userID int, role string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	ctx := utils.SetUserContext(req.Context(), userID, "u@example.com", role)
	return req.WithContext(ctx)
}

// --- Tests ---

func TestHandleCreateOrder(t *testing.T) {
	srv, _, _, orders, _ := newTestServer()

	input := order.CreateOrderInput{
		Items:         []order.LineItemInput{{ProductID: uuid.New(), Quantity: 2}},
		Shipping:      order.ShippingAddress{Street: "1 Main St", City: "Springfield", State: "IL", Zip: "62704", Country: "US"},
		PaymentMethod: "credit_card",
	}
	created := &order.Order{ID: uuid.New(), UserID: 5, Status: order.StatusPending, Total: 47.19}

	orders.On("CreateOrder", mock.Anything, 5, mock.AnythingOfType("order.CreateOrderInput")).Return(created, nil)

	req := authedRequest(http.MethodPost, "/orders", input, 5, utils.RoleUser)
	rec := httptest.NewRecorder()
	srv.handleCreateOrder(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var got order.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, order.StatusPending, got.Status)
}

func TestHandleCreateOrder_InsufficientStock(t *testing.T) {
	srv, _, _, orders, _ := newTestServer()

	stockErr := &order.InsufficientStockError{Items: []order.StockShortage{
		{ProductID: uuid.NewString(), Product: "Widget", Available: 1, Requested: 3},
	}}
	orders.On("CreateOrder", mock.Anything, 5, mock.Anything).Return(nil, stockErr)

	req := authedRequest(http.MethodPost, "/orders", order.CreateOrderInput{}, 5, utils.RoleUser)
	rec := httptest.NewRecorder()
	srv.handleCreateOrder(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Error string                `json:"error"`
		Items []order.StockShortage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "Widget")
	assert.Len(t, body.Items, 1)
	assert.Equal(t, 1, body.Items[0].Available)
}

func TestHandleGetOrder_Forbidden(t *testing.T) {
	srv, _, _, orders, _ := newTestServer()

	orderID := uuid.New()
	orders.On("GetOrder", mock.Anything, orderID, 9, utils.RoleUser).Return(nil, order.ErrForbidden)

	req := authedRequest(http.MethodGet, "/orders/"+orderID.String(), nil, 9, utils.RoleUser)
	req.SetPathValue("id", orderID.String())
	rec := httptest.NewRecorder()
	srv.handleGetOrder(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleGetOrder_InvalidID(t *testing.T) {
	srv, _, _, _, _ := newTestServer()

	req := authedRequest(http.MethodGet, "/orders/not-a-uuid", nil, 9, utils.RoleUser)
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()
	srv.handleGetOrder(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpdateOrderStatus_InvalidTransition(t *testing.T) {
	srv, _, _, orders, _ := newTestServer()

	orderID := uuid.New()
	orders.On("UpdateOrderStatus", mock.Anything, orderID, order.StatusDelivered, (*string)(nil)).
		Return(nil, order.TransitionError(order.StatusPending, order.StatusDelivered))

	req := authedRequest(http.MethodPatch, "/orders/"+orderID.String()+"/status",
		map[string]string{"status": "DELIVERED"}, 1, utils.RoleAdmin)
	req.SetPathValue("id", orderID.String())
	rec := httptest.NewRecorder()
	srv.handleUpdateOrderStatus(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleCancelOrder_CannotCancel(t *testing.T) {
	srv, _, _, orders, _ := newTestServer()

	orderID := uuid.New()
	orders.On("CancelOrder", mock.Anything, orderID, "changed my mind", 5, utils.RoleUser).
		Return(nil, order.ErrCannotCancel)

	req := authedRequest(http.MethodPost, "/orders/"+orderID.String()+"/cancel",
		cancelOrderRequest{Reason: "changed my mind"}, 5, utils.RoleUser)
	req.SetPathValue("id", orderID.String())
	rec := httptest.NewRecorder()
	srv.handleCancelOrder(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleProcessPayment_AlreadyPaid(t *testing.T) {
	srv, _, _, _, payments := newTestServer()

	orderID := uuid.New()
	payments.On("ProcessPayment", mock.Anything, orderID, "credit_card", 5, utils.RoleUser).
		Return(nil, payment.ErrAlreadyPaid)

	req := authedRequest(http.MethodPost, "/orders/"+orderID.String()+"/payments",
		processPaymentRequest{Method: "credit_card"}, 5, utils.RoleUser)
	req.SetPathValue("id", orderID.String())
	rec := httptest.NewRecorder()
	srv.handleProcessPayment(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleProcessPayment_Declined(t *testing.T) {
	srv, _, _, _, payments := newTestServer()

	orderID := uuid.New()
	payments.On("ProcessPayment", mock.Anything, orderID, "credit_card", 5, utils.RoleUser).
		Return(nil, payment.ErrPaymentFailed)

	req := authedRequest(http.MethodPost, "/orders/"+orderID.String()+"/payments",
		processPaymentRequest{Method: "credit_card"}, 5, utils.RoleUser)
	req.SetPathValue("id", orderID.String())
	rec := httptest.NewRecorder()
	srv.handleProcessPayment(rec, req)

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestHandleRefundPayment_NoPayment(t *testing.T) {
	srv, _, _, _, payments := newTestServer()

	orderID := uuid.New()
	payments.On("RefundPayment", mock.Anything, orderID, "defective").
		Return(nil, payment.ErrNoPayment)

	req := authedRequest(http.MethodPost, "/orders/"+orderID.String()+"/refund",
		refundRequest{Reason: "defective"}, 1, utils.RoleAdmin)
	req.SetPathValue("id", orderID.String())
	rec := httptest.NewRecorder()
	srv.handleRefundPayment(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRegister_ShortPassword(t *testing.T) {
	srv, _, _, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		bytes.NewBufferString(`{"email":"a@b.com","password":"short"}`))
	rec := httptest.NewRecorder()
	srv.handleRegister(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	srv, users, _, _, _ := newTestServer()

	users.On("Login", mock.Anything, "a@b.com", "wrong").
		Return("", user.User{}, user.ErrInvalidCredentials)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		bytes.NewBufferString(`{"email":"a@b.com","password":"wrong"}`))
	rec := httptest.NewRecorder()
	srv.handleLogin(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_AnonymousOrderAccessRejected(t *testing.T) {
	srv, _, _, _, _ := newTestServer()
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_Health(t *testing.T) {
	srv, _, _, _, _ := newTestServer()
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestRoutes_Metrics(t *testing.T) {
	srv, _, _, _, _ := newTestServer()
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var snap map[string]uint64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Contains(t, snap, "requests_total")
}
