package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"
)

const defaultCartWriteAttempts = 3

// CartService applies cart mutations as a read-check-write cycle against the
// user document, bounded by the stock of the referenced product size. Writes
// are conditional on the user's version; a lost race re-runs the whole cycle.
type CartService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	cache    cache.CartCache
	attempts int
	sfg      singleflight.Group // Prevents cache stampede
}

func NewCartService(users repository.UserRepository, products repository.ProductRepository, cache cache.CartCache, attempts int) *CartService {
	if attempts <= 0 {
		attempts = defaultCartWriteAttempts
	}
	return &CartService{
		users:    users,
		products: products,
		cache:    cache,
		attempts: attempts,
	}
}

// AddOrMergeLineItem adds quantity units of (productID, size) to the user's
// cart, merging with an existing line for the same pair. It returns the cart
// as persisted.
func (s *CartService) AddOrMergeLineItem(ctx context.Context, userID, productID, size string, quantity int) ([]domain.CartLineItem, error) {
	if productID == "" || size == "" {
		return nil, fmt.Errorf("%w: product ID, quantity, and size are required", ErrValidation)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed product ID", ErrValidation)
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.attempts; attempt++ {
		product, err := s.products.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}

		variant, ok := product.Size(size)
		if !ok {
			return nil, ErrInvalidSize
		}

		user, err := s.loadUser(ctx, uid)
		if err != nil {
			return nil, err
		}

		cart, err := mergeLineItem(user.Cart, pid, size, quantity, variant.Quantity)
		if err != nil {
			return nil, err
		}

		err = s.users.SaveCart(ctx, uid, user.Version, cart)
		if errors.Is(err, repository.ErrVersionConflict) {
			log.Debug().Ctx(ctx).Str("user_id", userID).Int("attempt", attempt).Msg("cart version conflict on add")
			continue
		}
		if err != nil {
			return nil, err
		}

		s.invalidateCache(uid.Hex())
		return cart, nil
	}

	return nil, ErrCartConflict
}

// RemoveLineItem deletes the line item matching (productID, size) exactly.
func (s *CartService) RemoveLineItem(ctx context.Context, userID, productID, size string) ([]domain.CartLineItem, error) {
	if productID == "" || size == "" {
		return nil, fmt.Errorf("%w: product ID and size are required", ErrValidation)
	}
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed product ID", ErrValidation)
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.attempts; attempt++ {
		user, err := s.loadUser(ctx, uid)
		if err != nil {
			return nil, err
		}

		cart, err := removeLineItem(user.Cart, pid, size)
		if err != nil {
			return nil, err
		}

		err = s.users.SaveCart(ctx, uid, user.Version, cart)
		if errors.Is(err, repository.ErrVersionConflict) {
			log.Debug().Ctx(ctx).Str("user_id", userID).Int("attempt", attempt).Msg("cart version conflict on remove")
			continue
		}
		if err != nil {
			return nil, err
		}

		s.invalidateCache(uid.Hex())
		return cart, nil
	}

	return nil, ErrCartConflict
}

// GetCart returns the user's cart with every line's product resolved. Lines
// whose product no longer exists are left out.
func (s *CartService) GetCart(ctx context.Context, userID string) ([]domain.CartEntry, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	key := uid.Hex()

	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		entries, err := s.cache.Get(ctx, key)
		if err == nil {
			return entries, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Ctx(ctx).Err(err).Msg("cache get error") // continue with the database
		}

		// taken before the load so a write landing in between voids the fill
		gen, genErr := s.cache.Generation(ctx, key)
		if genErr != nil {
			log.Warn().Ctx(ctx).Err(genErr).Msg("cache generation error")
		}

		user, err := s.loadUser(ctx, uid)
		if err != nil {
			return nil, err
		}

		entries, err = s.joinProducts(ctx, user.Cart)
		if err != nil {
			return nil, err
		}

		if genErr == nil {
			go func() {
				errSet := s.cache.Set(context.Background(), key, gen, entries)
				if errors.Is(errSet, cache.ErrStaleGeneration) {
					log.Debug().Str("user_id", key).Msg("cart changed during load, cache fill skipped")
				} else if errSet != nil {
					log.Warn().Err(errSet).Msg("cache set error")
				}
			}()
		}

		return entries, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]domain.CartEntry), nil
}

// InvalidateProduct drops the cached cart view of every user holding productID.
func (s *CartService) InvalidateProduct(ctx context.Context, productID primitive.ObjectID) {
	ids, err := s.users.FindIDsByCartProduct(ctx, productID)
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Str("product_id", productID.Hex()).Msg("failed to find carts holding product")
		return
	}
	for _, id := range ids {
		s.invalidateCache(id.Hex())
	}
}

func (s *CartService) loadUser(ctx context.Context, uid primitive.ObjectID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *CartService) joinProducts(ctx context.Context, cart []domain.CartLineItem) ([]domain.CartEntry, error) {
	ids := make([]primitive.ObjectID, 0, len(cart))
	for _, item := range cart {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	entries := make([]domain.CartEntry, 0, len(cart))
	for _, item := range cart {
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		entries = append(entries, domain.CartEntry{
			ID:       item.ID,
			Product:  product,
			Quantity: item.Quantity,
			Size:     item.Size,
		})
	}
	return entries, nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("cache invalidate error")
	}
}

// mergeLineItem returns a copy of cart with quantity units of (productID, size)
// added, provided the resulting line stays within available. A quantity above
// available is ErrStockExceeded whether or not the line already exists.
func mergeLineItem(cart []domain.CartLineItem, productID primitive.ObjectID, size string, quantity, available int) ([]domain.CartLineItem, error) {
	if quantity > available {
		return nil, ErrStockExceeded
	}

	next := make([]domain.CartLineItem, len(cart), len(cart)+1)
	copy(next, cart)

	if i := domain.FindLineItem(next, productID, size); i >= 0 {
		// compared as a difference so the sum cannot overflow
		if quantity > available-next[i].Quantity {
			return nil, ErrMergedStockExceeded
		}
		next[i].Quantity += quantity
		return next, nil
	}

	return append(next, domain.CartLineItem{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		Quantity:  quantity,
		Size:      size,
	}), nil
}

func removeLineItem(cart []domain.CartLineItem, productID primitive.ObjectID, size string) ([]domain.CartLineItem, error) {
	i := domain.FindLineItem(cart, productID, size)
	if i < 0 {
		return nil, ErrItemNotInCart
	}
	next := make([]domain.CartLineItem, 0, len(cart)-1)
	next = append(next, cart[:i]...)
	return append(next, cart[i+1:]...), nil
}

func parseUserID(userID string) (primitive.ObjectID, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, ErrUserNotFound
	}
	return uid, nil
}
