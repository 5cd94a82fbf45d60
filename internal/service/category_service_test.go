package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/fjod/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockCategoryRepository struct {
	m     sync.Mutex
	items []domain.CategoryHomepage
}

func (m *mockCategoryRepository) Create(_ context.Context, c *domain.CategoryHomepage) error {
	m.m.Lock()
	defer m.m.Unlock()
	c.ID = primitive.NewObjectID()
	m.items = append(m.items, *c)
	return nil
}

func (m *mockCategoryRepository) List(context.Context) ([]domain.CategoryHomepage, error) {
	m.m.Lock()
	defer m.m.Unlock()
	return append([]domain.CategoryHomepage{}, m.items...), nil
}

func (m *mockCategoryRepository) FindByCategory(_ context.Context, category string) ([]domain.CategoryHomepage, error) {
	m.m.Lock()
	defer m.m.Unlock()
	found := []domain.CategoryHomepage{}
	for _, c := range m.items {
		if strings.EqualFold(c.Category, category) {
			found = append(found, c)
		}
	}
	return found, nil
}

func TestCategoryService(t *testing.T) {
	sut := NewCategoryService(&mockCategoryRepository{})
	ctx := context.Background()

	created, err := sut.Create(ctx, "Shoes", "Run faster", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, created.MainImage)

	_, err = sut.Create(ctx, "Shoes", "", nil)
	assert.ErrorIs(t, err, ErrValidation)

	all, err := sut.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	found, err := sut.Search(ctx, "SHOES")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found[0].ID)

	_, err = sut.Search(ctx, "Hats")
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = sut.Search(ctx, " ")
	assert.ErrorIs(t, err, ErrValidation)
}
