package cache

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
)

// CartCache holds the product-joined view of a user's cart.
//
// Every Delete bumps the user's generation. A reader takes the generation
// before loading the cart and passes it to Set, which refuses to store the
// view once the generation has moved on.
type CartCache interface {
	Get(ctx context.Context, userID string) ([]domain.CartEntry, error)
	Generation(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID string, generation int64, entries []domain.CartEntry) error
	Delete(ctx context.Context, userID string) error
}

var (
	ErrCacheMiss       = errors.New("cache miss")
	ErrStaleGeneration = errors.New("cart changed since it was loaded")
)
