package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	maxPreviewImages = 5
	maxProductImages = 15
)

type ProductService interface {
	Create(ctx context.Context, in service.CreateProductInput) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Update(ctx context.Context, productID string, patch service.ProductPatch) (*domain.Product, error)
	SetSizeQuantity(ctx context.Context, productID, size string, quantity int) (*domain.Product, error)
	Delete(ctx context.Context, productID string) error
}

type ProductHandler struct {
	products ProductService
	uploader ImageUploader
	timeout  time.Duration
	maxBytes int64
}

func NewProductHandler(products ProductService, uploader ImageUploader, timeout time.Duration, maxUploadBytes int64) *ProductHandler {
	return &ProductHandler{products: products, uploader: uploader, timeout: timeout, maxBytes: maxUploadBytes}
}

type SetSizeQuantityRequestDTO struct {
	Size     string `json:"size" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := parseMultipart(w, r, h.maxBytes); err != nil {
		respondError(w, http.StatusBadRequest, 4, err.Error())
		return
	}
	preview, err := h.uploader.Upload(ctx, formFiles(r, "previewImages"), maxPreviewImages)
	if err != nil {
		respondError(w, http.StatusBadRequest, 4, err.Error())
		return
	}
	images, err := h.uploader.Upload(ctx, formFiles(r, "productImages"), maxProductImages)
	if err != nil {
		respondError(w, http.StatusBadRequest, 4, err.Error())
		return
	}

	in := service.CreateProductInput{
		Name:          r.FormValue("name"),
		Description:   r.FormValue("description"),
		Category:      r.FormValue("category"),
		Price:         r.FormValue("price"),
		Colors:        splitColors(r.FormValue("colors")),
		PreviewImages: preview,
		ProductImages: images,
	}
	if sizes := r.FormValue("sizes"); sizes != "" {
		if err := json.Unmarshal([]byte(sizes), &in.Sizes); err != nil {
			respondError(w, http.StatusBadRequest, 5, "sizes must be a JSON array of {size, quantity}")
			return
		}
	}
	if sales := r.FormValue("salesPercent"); sales != "" {
		if in.SalesPercent, err = strconv.Atoi(sales); err != nil {
			respondError(w, http.StatusBadRequest, 5, "salesPercent must be an integer")
			return
		}
	}

	product, err := h.products.Create(ctx, in)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(w, http.StatusBadRequest, 5, err.Error())
			return
		}
		respondInternal(w, r, 6, "An error occurred while saving the product", err)
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Data: product})
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.products.List(ctx)
	if err != nil {
		respondInternal(w, r, 3, "An error occurred while retrieving products", err)
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Data: products})
}

func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.products.ListByCategory(ctx, r.URL.Query().Get("category"))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(w, http.StatusBadRequest, 1, "Category query parameter is required!")
			return
		}
		respondInternal(w, r, 3, "An error occurred while retrieving products by category", err)
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Data: products})
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.products.Categories(ctx)
	if err != nil {
		respondInternal(w, r, 3, "An error occurred while retrieving categories", err)
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Data: categories})
}

// Get answers with the bare product document.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.products.Get(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
			return
		}
		log.Error().Ctx(r.Context()).Err(err).Str("path", r.URL.Path).Msg("failed to load product")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error"})
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var patch service.ProductPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, 1, err.Error())
		return
	}

	product, err := h.products.Update(ctx, chi.URLParam(r, "productId"), patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(w, http.StatusBadRequest, 1, err.Error())
		case errors.Is(err, service.ErrProductNotFound):
			respondError(w, http.StatusNotFound, 2, "Product not found")
		default:
			respondInternal(w, r, 3, "An error occurred while updating the product", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Message: "Product updated successfully", Data: product})
}

func (h *ProductHandler) SetSizeQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SetSizeQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, 1, "Size and quantity are required")
		return
	}

	product, err := h.products.SetSizeQuantity(ctx, chi.URLParam(r, "productId"), req.Size, *req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(w, http.StatusBadRequest, 1, err.Error())
		case errors.Is(err, service.ErrProductNotFound):
			respondError(w, http.StatusNotFound, 2, "Product not found")
		case errors.Is(err, service.ErrSizeNotFound):
			respondError(w, http.StatusNotFound, 3, "Size not found")
		default:
			respondInternal(w, r, 4, "An error occurred while updating the quantity", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Message: "Quantity updated successfully", Data: product})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.products.Delete(ctx, chi.URLParam(r, "productId")); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, 2, "Product not found")
			return
		}
		respondInternal(w, r, 3, "An error occurred while deleting the product", err)
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Message: "Product deleted successfully", Data: nil})
}

func splitColors(s string) []string {
	colors := []string{}
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			colors = append(colors, c)
		}
	}
	return colors
}
