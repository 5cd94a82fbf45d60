package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

type OrderService interface {
	Create(ctx context.Context, userID string, in service.CreateOrderInput) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
}

type OrderHandler struct {
	orders  OrderService
	timeout time.Duration
}

func NewOrderHandler(orders OrderService, timeout time.Duration) *OrderHandler {
	return &OrderHandler{orders: orders, timeout: timeout}
}

type CreateOrderRequestDTO struct {
	Address     string                   `json:"address" validate:"required"`
	PhoneNumber string                   `json:"phoneNumber" validate:"required"`
	Products    []service.OrderLineInput `json:"products" validate:"required,min=1,dive"`
}

type UpdateOrderStatusRequestDTO struct {
	Status string `json:"status" validate:"required"`
}

type orderResponse struct {
	ErrorCode int           `json:"errorCode"`
	Message   string        `json:"message"`
	Order     *domain.Order `json:"order"`
}

type ordersResponse struct {
	ErrorCode int            `json:"errorCode"`
	Message   string         `json:"message"`
	Orders    []domain.Order `json:"orders"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, -1, "Not authenticated the user")
		return
	}

	var req CreateOrderRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, 1, "Address, phone number and products are required")
		return
	}

	order, err := h.orders.Create(ctx, identity.ID, service.CreateOrderInput{
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		Products:    req.Products,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(w, http.StatusBadRequest, 1, err.Error())
		case errors.Is(err, service.ErrProductNotFound):
			respondError(w, http.StatusNotFound, 2, "Product not found")
		case errors.Is(err, service.ErrInvalidSize):
			respondError(w, http.StatusBadRequest, 3, "Selected size not available for this product")
		case errors.Is(err, service.ErrInsufficientStock):
			respondError(w, http.StatusBadRequest, 4, "Not enough stock to place the order")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(w, http.StatusNotFound, 6, "User not found")
		default:
			respondInternal(w, r, 5, "An error occurred while creating the order", err)
		}
		return
	}
	respondJSON(w, http.StatusCreated, orderResponse{ErrorCode: 0, Message: "Order created successfully", Order: order})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.List(ctx)
	if err != nil {
		respondInternal(w, r, 5, "An error occurred while retrieving orders", err)
		return
	}
	respondJSON(w, http.StatusOK, ordersResponse{ErrorCode: 0, Message: "Orders retrieved successfully", Orders: orders})
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateOrderStatusRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, 1, "Invalid order status")
		return
	}

	order, err := h.orders.UpdateStatus(ctx, chi.URLParam(r, "orderId"), domain.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			respondError(w, http.StatusBadRequest, 1, "Invalid order status")
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, 2, "Order not found")
		default:
			respondInternal(w, r, 5, "An error occurred while updating the order", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, orderResponse{ErrorCode: 0, Message: "Order status updated successfully", Order: order})
}
