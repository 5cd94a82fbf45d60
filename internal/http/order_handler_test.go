package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func orderBody() map[string]interface{} {
	return map[string]interface{}{
		"address":     "1 Main St",
		"phoneNumber": "555",
		"products": []map[string]interface{}{
			{"productId": "64b7f0c2e4b0a1a2b3c4d5e7", "quantity": 2, "size": "M"},
		},
	}
}

func TestCreateOrder_Success(t *testing.T) {
	order := &domain.Order{ID: primitive.NewObjectID(), TotalAmount: "35.98", Status: domain.OrderStatusPending}
	orders := &mockOrderService{order: order}
	handler := NewOrderHandler(orders, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.Create(rec, asUser(jsonRequest(t, http.MethodPost, "/order", orderBody()), domain.RoleUser))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp orderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 0, resp.ErrorCode)
	assert.Equal(t, "35.98", resp.Order.TotalAmount)

	assert.Equal(t, testUserID, orders.gotUser)
	assert.Equal(t, "1 Main St", orders.gotInput.Address)
	require.Len(t, orders.gotInput.Products, 1)
	assert.Equal(t, 2, orders.gotInput.Products[0].Quantity)
}

func TestCreateOrder_InvalidBody(t *testing.T) {
	tests := map[string]func(map[string]interface{}){
		"no address":    func(b map[string]interface{}) { delete(b, "address") },
		"no products":   func(b map[string]interface{}) { b["products"] = []interface{}{} },
		"zero quantity": func(b map[string]interface{}) { b["products"] = []map[string]interface{}{{"productId": "p", "quantity": 0, "size": "M"}} },
		"no size":       func(b map[string]interface{}) { b["products"] = []map[string]interface{}{{"productId": "p", "quantity": 1}} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			body := orderBody()
			mutate(body)
			orders := &mockOrderService{}
			handler := NewOrderHandler(orders, 5*time.Second)

			rec := httptest.NewRecorder()
			handler.Create(rec, asUser(jsonRequest(t, http.MethodPost, "/order", body), domain.RoleUser))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 1, decodeError(t, rec).ErrorCode)
			assert.Empty(t, orders.gotUser)
		})
	}
}

func TestCreateOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   int
	}{
		{service.ErrValidation, http.StatusBadRequest, 1},
		{service.ErrProductNotFound, http.StatusNotFound, 2},
		{service.ErrInvalidSize, http.StatusBadRequest, 3},
		{service.ErrInsufficientStock, http.StatusBadRequest, 4},
		{service.ErrUserNotFound, http.StatusNotFound, 6},
		{errors.New("boom"), http.StatusInternalServerError, 5},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			handler := NewOrderHandler(&mockOrderService{err: tt.err}, 5*time.Second)

			rec := httptest.NewRecorder()
			handler.Create(rec, asUser(jsonRequest(t, http.MethodPost, "/order", orderBody()), domain.RoleUser))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).ErrorCode)
		})
	}
}

func TestListOrders(t *testing.T) {
	handler := NewOrderHandler(&mockOrderService{orders: []domain.Order{{TotalAmount: "1.00"}}}, 5*time.Second)

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ordersResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Orders, 1)
	assert.NotEmpty(t, resp.Message)

	handler = NewOrderHandler(&mockOrderService{err: errors.New("boom")}, 5*time.Second)
	rec = httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 5, decodeError(t, rec).ErrorCode)
}

func TestUpdateOrderStatus(t *testing.T) {
	orders := &mockOrderService{order: &domain.Order{Status: domain.OrderStatusShipped}}
	handler := NewOrderHandler(orders, 5*time.Second)

	rec := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodPut, "/order/o1", map[string]string{"status": "Shipped"})
	handler.UpdateStatus(rec, withURLParam(req, "orderId", "o1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "o1", orders.gotID)
	assert.Equal(t, domain.OrderStatusShipped, orders.gotStatus)
}

func TestUpdateOrderStatus_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   int
	}{
		{service.ErrInvalidStatus, http.StatusBadRequest, 1},
		{service.ErrOrderNotFound, http.StatusNotFound, 2},
		{errors.New("boom"), http.StatusInternalServerError, 5},
	}
	for _, tt := range tests {
		handler := NewOrderHandler(&mockOrderService{err: tt.err}, 5*time.Second)

		rec := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPut, "/order/o1", map[string]string{"status": "Lost"})
		handler.UpdateStatus(rec, withURLParam(req, "orderId", "o1"))

		assert.Equal(t, tt.status, rec.Code)
		assert.Equal(t, tt.code, decodeError(t, rec).ErrorCode)
	}
}
