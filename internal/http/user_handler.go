package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
)

const maxProfileImages = 10

type UserService interface {
	Create(ctx context.Context, in service.CreateUserInput) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListPage(ctx context.Context, page, limit int64) (*service.UserPage, error)
	Update(ctx context.Context, caller domain.Identity, in service.UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, userID string) (*domain.User, error)
}

type UserHandler struct {
	users    UserService
	uploader ImageUploader
	timeout  time.Duration
	maxBytes int64
}

func NewUserHandler(users UserService, uploader ImageUploader, timeout time.Duration, maxUploadBytes int64) *UserHandler {
	return &UserHandler{users: users, uploader: uploader, timeout: timeout, maxBytes: maxUploadBytes}
}

type DeleteUserRequestDTO struct {
	ID string `json:"id" validate:"required"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := parseMultipart(w, r, h.maxBytes); err != nil {
		respondError(w, http.StatusBadRequest, 4, err.Error())
		return
	}
	images, err := h.uploader.Upload(ctx, formFiles(r, "profileImage"), maxProfileImages)
	if err != nil {
		respondError(w, http.StatusBadRequest, 4, err.Error())
		return
	}

	user, err := h.users.Create(ctx, service.CreateUserInput{
		Email:        r.FormValue("email"),
		Password:     r.FormValue("password"),
		Name:         r.FormValue("name"),
		Role:         r.FormValue("role"),
		Sex:          r.FormValue("sex"),
		PhoneNumber:  r.FormValue("phoneNumber"),
		ProfileImage: images,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(w, http.StatusBadRequest, 5, "All fields are required")
		case errors.Is(err, service.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, 2, service.ErrWeakPassword.Error())
		case errors.Is(err, service.ErrEmailExists):
			respondError(w, http.StatusBadRequest, 1, "Email already exists")
		default:
			respondInternal(w, r, 6, "An error occurred while saving the user", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Data: user})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	users, err := h.users.List(ctx)
	if err != nil {
		respondInternal(w, r, 3, "An error occurred while retrieving users", err)
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Data: users})
}

func (h *UserHandler) ListPage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page, errPage := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	limit, errLimit := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if errPage != nil || errLimit != nil {
		respondError(w, http.StatusBadRequest, 1, "page and limit must be positive integers")
		return
	}

	result, err := h.users.ListPage(ctx, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(w, http.StatusBadRequest, 1, "page and limit must be positive integers")
			return
		}
		respondInternal(w, r, 3, "An error occurred while retrieving users", err)
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Data: result})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, -1, "Not authenticated the user")
		return
	}

	if err := parseMultipart(w, r, h.maxBytes); err != nil {
		respondError(w, http.StatusBadRequest, 4, err.Error())
		return
	}
	images, err := h.uploader.Upload(ctx, formFiles(r, "profileImage"), maxProfileImages)
	if err != nil {
		respondError(w, http.StatusBadRequest, 4, err.Error())
		return
	}

	user, err := h.users.Update(ctx, caller, service.UpdateUserInput{
		ID:           r.FormValue("id"),
		Email:        r.FormValue("email"),
		Name:         r.FormValue("name"),
		Role:         r.FormValue("role"),
		Sex:          r.FormValue("sex"),
		PhoneNumber:  r.FormValue("phoneNumber"),
		ProfileImage: images,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(w, http.StatusBadRequest, 5, "All fields are required")
		case errors.Is(err, service.ErrForbidden):
			respondError(w, http.StatusForbidden, -3, "Access denied")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(w, http.StatusNotFound, 2, "User not found")
		case errors.Is(err, service.ErrEmailExists):
			respondError(w, http.StatusBadRequest, 1, "Email already exists")
		default:
			respondInternal(w, r, 6, "An error occurred while updating the user", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Message: "Update information success", Data: user})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req DeleteUserRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, 1, "User ID is required")
		return
	}

	user, err := h.users.Delete(ctx, req.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(w, http.StatusBadRequest, 1, "User ID is required")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(w, http.StatusNotFound, 2, "User not found")
		default:
			respondInternal(w, r, 3, "An error occurred while deleting the user", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, dataResponse{ErrorCode: 0, Data: user})
}
