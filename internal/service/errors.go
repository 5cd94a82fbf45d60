package service

import (
	"errors"

	"github.com/fjod/storefront/internal/storage"
)

var (
	ErrValidation          = errors.New("invalid request")
	ErrUserNotFound        = errors.New("user not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrItemNotInCart       = errors.New("product not found in cart")
	ErrInvalidSize         = errors.New("selected size not available for this product")
	ErrStockExceeded       = errors.New("requested quantity exceeds available stock")
	ErrMergedStockExceeded = errors.New("total quantity in cart exceeds available stock")
	ErrCartConflict        = errors.New("cart was modified concurrently")
	ErrInsufficientStock   = errors.New("insufficient stock to place the order")
	ErrEmailExists         = errors.New("email already exists")
	ErrWeakPassword        = errors.New("password must be at least 6 characters long and contain at least one uppercase letter")
	ErrUnknownEmail        = errors.New("email does not exist")
	ErrInvalidCredentials  = errors.New("invalid password")
	ErrForbidden           = errors.New("access denied")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrCategoryNotFound    = errors.New("no categories found")
	ErrSizeNotFound        = errors.New("size not found")
	ErrTokenIssue          = errors.New("failed to create tokens")
	ErrGoogleLogin         = errors.New("google login failed")
	ErrUploadsDisabled     = storage.ErrUploadsDisabled
)
