package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartService interface {
	AddOrMergeLineItem(ctx context.Context, userID, productID, size string, quantity int) ([]domain.CartLineItem, error)
	GetCart(ctx context.Context, userID string) ([]domain.CartEntry, error)
	RemoveLineItem(ctx context.Context, userID, productID, size string) ([]domain.CartLineItem, error)
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
}

func NewCartHandler(carts CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required"`
	Size      string `json:"size" validate:"required"`
}

type RemoveItemRequestDTO struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size" validate:"required"`
}

type cartMutationResponse struct {
	ErrorCode int                   `json:"errorCode"`
	Message   string                `json:"message"`
	Cart      []domain.CartLineItem `json:"cart"`
}

type cartResponse struct {
	ErrorCode int         `json:"errorCode"`
	Cart      interface{} `json:"cart"`
}

// cartProduct is the product projection returned by GET /myshoppingcart.
type cartProduct struct {
	ID            primitive.ObjectID   `json:"_id"`
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	Category      string               `json:"category"`
	Price         string               `json:"price"`
	Sizes         []domain.SizeVariant `json:"sizes"`
	Colors        []string             `json:"colors"`
	PreviewImages []string             `json:"previewImages"`
	ProductImages []string             `json:"productImages"`
	Reviews       []domain.Review      `json:"reviews"`
	SalesPercent  int                  `json:"salesPercent"`
}

type cartProductEntry struct {
	Product  cartProduct `json:"product"`
	Quantity int         `json:"quantity"`
	Size     string      `json:"size"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, -1, "Not authenticated the user")
		return
	}

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, 1, "Product ID, quantity, and size are required")
		return
	}

	cart, err := h.carts.AddOrMergeLineItem(ctx, identity.ID, req.ProductID, req.Size, *req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(w, http.StatusBadRequest, 1, err.Error())
		case errors.Is(err, service.ErrProductNotFound):
			respondError(w, http.StatusNotFound, 2, "Product not found")
		case errors.Is(err, service.ErrInvalidSize):
			respondError(w, http.StatusBadRequest, 3, "Selected size not available for this product")
		case errors.Is(err, service.ErrStockExceeded):
			respondError(w, http.StatusBadRequest, 4, "Requested quantity exceeds available stock")
		case errors.Is(err, service.ErrMergedStockExceeded):
			respondError(w, http.StatusBadRequest, 5, "Total quantity in cart exceeds available stock")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(w, http.StatusNotFound, 6, "User not found")
		case errors.Is(err, service.ErrCartConflict):
			respondError(w, http.StatusConflict, 8, "Cart was modified concurrently, please retry")
		default:
			respondInternal(w, r, 7, "An error occurred while adding the product to the cart", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, cartMutationResponse{
		ErrorCode: 0,
		Message:   "Product added to cart successfully",
		Cart:      cart,
	})
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	entries, ok := h.loadCart(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, cartResponse{ErrorCode: 0, Cart: entries})
}

// GetCartProducts serves the cart with a fixed product projection.
func (h *CartHandler) GetCartProducts(w http.ResponseWriter, r *http.Request) {
	entries, ok := h.loadCart(w, r)
	if !ok {
		return
	}

	projected := make([]cartProductEntry, len(entries))
	for i, e := range entries {
		projected[i] = cartProductEntry{
			Product: cartProduct{
				ID:            e.Product.ID,
				Name:          e.Product.Name,
				Description:   e.Product.Description,
				Category:      e.Product.Category,
				Price:         e.Product.Price,
				Sizes:         e.Product.Sizes,
				Colors:        e.Product.Colors,
				PreviewImages: e.Product.PreviewImages,
				ProductImages: e.Product.ProductImages,
				Reviews:       e.Product.Reviews,
				SalesPercent:  e.Product.SalesPercent,
			},
			Quantity: e.Quantity,
			Size:     e.Size,
		}
	}
	respondJSON(w, http.StatusOK, cartResponse{ErrorCode: 0, Cart: projected})
}

func (h *CartHandler) loadCart(w http.ResponseWriter, r *http.Request) ([]domain.CartEntry, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, -1, "Not authenticated the user")
		return nil, false
	}

	entries, err := h.carts.GetCart(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, 1, "User not found")
			return nil, false
		}
		respondInternal(w, r, 2, "An error occurred while retrieving the cart", err)
		return nil, false
	}
	return entries, true
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, -1, "Not authenticated the user")
		return
	}

	var req RemoveItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, 1, "Product ID and size are required")
		return
	}

	cart, err := h.carts.RemoveLineItem(ctx, identity.ID, req.ProductID, req.Size)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(w, http.StatusBadRequest, 1, err.Error())
		case errors.Is(err, service.ErrItemNotInCart):
			respondError(w, http.StatusNotFound, 2, "Product not found in cart")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(w, http.StatusNotFound, 4, "User not found")
		case errors.Is(err, service.ErrCartConflict):
			respondError(w, http.StatusConflict, 8, "Cart was modified concurrently, please retry")
		default:
			respondInternal(w, r, 3, "An error occurred while deleting the product from the cart", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, cartMutationResponse{
		ErrorCode: 0,
		Message:   "Product removed from cart successfully",
		Cart:      cart,
	})
}
