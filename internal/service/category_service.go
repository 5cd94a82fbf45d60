package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
)

type CategoryService struct {
	categories repository.CategoryRepository
}

func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) Create(ctx context.Context, category, description string, mainImage []string) (*domain.CategoryHomepage, error) {
	if strings.TrimSpace(category) == "" || strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: category and description are required", ErrValidation)
	}
	homepage := &domain.CategoryHomepage{
		Category:    category,
		Description: description,
		MainImage:   nonNil(mainImage),
	}
	if err := s.categories.Create(ctx, homepage); err != nil {
		return nil, err
	}
	return homepage, nil
}

func (s *CategoryService) List(ctx context.Context) ([]domain.CategoryHomepage, error) {
	return s.categories.List(ctx)
}

// Search returns the banners whose category equals category, ignoring case.
func (s *CategoryService) Search(ctx context.Context, category string) ([]domain.CategoryHomepage, error) {
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("%w: category is required", ErrValidation)
	}
	found, err := s.categories.FindByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrCategoryNotFound
	}
	return found, nil
}
