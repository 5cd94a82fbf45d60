package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
)

const maxMainImages = 5

type CategoryService interface {
	Create(ctx context.Context, category, description string, mainImage []string) (*domain.CategoryHomepage, error)
	List(ctx context.Context) ([]domain.CategoryHomepage, error)
	Search(ctx context.Context, category string) ([]domain.CategoryHomepage, error)
}

type CategoryHandler struct {
	categories CategoryService
	uploader   ImageUploader
	timeout    time.Duration
	maxBytes   int64
}

func NewCategoryHandler(categories CategoryService, uploader ImageUploader, timeout time.Duration, maxUploadBytes int64) *CategoryHandler {
	return &CategoryHandler{categories: categories, uploader: uploader, timeout: timeout, maxBytes: maxUploadBytes}
}

type SearchCategoryRequestDTO struct {
	Category string `json:"category" validate:"required"`
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := parseMultipart(w, r, h.maxBytes); err != nil {
		respondError(w, http.StatusBadRequest, 4, err.Error())
		return
	}
	images, err := h.uploader.Upload(ctx, formFiles(r, "mainImage"), maxMainImages)
	if err != nil {
		respondError(w, http.StatusBadRequest, 4, err.Error())
		return
	}

	category, err := h.categories.Create(ctx, r.FormValue("category"), r.FormValue("description"), images)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(w, http.StatusBadRequest, 5, "Category and description are required")
			return
		}
		respondInternal(w, r, 6, "An error occurred while saving the category", err)
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Data: category})
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.categories.List(ctx)
	if err != nil {
		respondInternal(w, r, 6, "An error occurred while retrieving categories", err)
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Data: categories})
}

func (h *CategoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SearchCategoryRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, 5, "Category is required")
		return
	}

	categories, err := h.categories.Search(ctx, req.Category)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(w, http.StatusBadRequest, 5, "Category is required")
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(w, http.StatusNotFound, 7, "No categories found")
		default:
			respondInternal(w, r, 6, "An error occurred while searching categories", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Data: categories})
}
