package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartInvalidator drops cached cart views that embed a product.
type CartInvalidator interface {
	InvalidateProduct(ctx context.Context, productID primitive.ObjectID)
}

type CreateProductInput struct {
	Name          string
	Description   string
	Category      string
	Price         string
	Sizes         []domain.SizeVariant
	Colors        []string
	SalesPercent  int
	PreviewImages []string
	ProductImages []string
}

// ProductPatch carries the fields of a partial product update. Nil fields are
// left untouched.
type ProductPatch struct {
	Name         *string              `json:"name"`
	Description  *string              `json:"description"`
	Category     *string              `json:"category"`
	Price        *string              `json:"price"`
	Colors       []string             `json:"colors"`
	SalesPercent *int                 `json:"salesPercent"`
	Sizes        []domain.SizeVariant `json:"sizes"`
}

func (p ProductPatch) empty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil && p.Price == nil &&
		p.Colors == nil && p.SalesPercent == nil && p.Sizes == nil
}

type ProductService struct {
	products repository.ProductRepository
	carts    CartInvalidator
}

func NewProductService(products repository.ProductRepository, carts CartInvalidator) *ProductService {
	return &ProductService{products: products, carts: carts}
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.Category) == "" || strings.TrimSpace(in.Price) == "" {
		return nil, fmt.Errorf("%w: name, description, category, and price are required", ErrValidation)
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}
	if err := validateSalesPercent(in.SalesPercent); err != nil {
		return nil, err
	}
	if err := validateSizes(in.Sizes); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:          in.Name,
		Description:   in.Description,
		Category:      in.Category,
		Price:         in.Price,
		Sizes:         nonNil(in.Sizes),
		Colors:        nonNil(in.Colors),
		PreviewImages: nonNil(in.PreviewImages),
		ProductImages: nonNil(in.ProductImages),
		Reviews:       []domain.Review{},
		SalesPercent:  in.SalesPercent,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("%w: category query parameter is required", ErrValidation)
	}
	return s.products.ListByCategory(ctx, category)
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.products.Categories(ctx)
}

func (s *ProductService) Get(ctx context.Context, productID string) (*domain.Product, error) {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, productID string, patch ProductPatch) (*domain.Product, error) {
	if patch.empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
	}
	if patch.SalesPercent != nil {
		if err := validateSalesPercent(*patch.SalesPercent); err != nil {
			return nil, err
		}
	}
	if patch.Sizes != nil {
		if err := validateSizes(patch.Sizes); err != nil {
			return nil, err
		}
	}

	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	product, err := s.products.Update(ctx, id, repository.ProductChanges{
		Name:         patch.Name,
		Description:  patch.Description,
		Category:     patch.Category,
		Price:        patch.Price,
		Colors:       patch.Colors,
		SalesPercent: patch.SalesPercent,
		Sizes:        patch.Sizes,
	})
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	s.carts.InvalidateProduct(ctx, id)
	return product, nil
}

// SetSizeQuantity overwrites the stock counter of one size.
func (s *ProductService) SetSizeQuantity(ctx context.Context, productID, size string, quantity int) (*domain.Product, error) {
	if size == "" {
		return nil, fmt.Errorf("%w: size and quantity are required", ErrValidation)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	product, err := s.products.SetSizeQuantity(ctx, id, size, quantity)
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return nil, ErrProductNotFound
	case errors.Is(err, repository.ErrSizeNotFound):
		return nil, ErrSizeNotFound
	case err != nil:
		return nil, err
	}
	s.carts.InvalidateProduct(ctx, id)
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, productID string) error {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return ErrProductNotFound
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.carts.InvalidateProduct(ctx, id)
	return nil
}

func validatePrice(price string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil || d.IsNegative() {
		return fmt.Errorf("%w: price must be a non-negative decimal", ErrValidation)
	}
	return nil
}

func validateSalesPercent(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: salesPercent must be between 0 and 100", ErrValidation)
	}
	return nil
}

func validateSizes(sizes []domain.SizeVariant) error {
	seen := make(map[string]bool, len(sizes))
	for _, s := range sizes {
		if s.Size == "" || s.Quantity < 0 {
			return fmt.Errorf("%w: every size needs a label and a non-negative quantity", ErrValidation)
		}
		if seen[s.Size] {
			return fmt.Errorf("%w: duplicate size %q", ErrValidation, s.Size)
		}
		seen[s.Size] = true
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
