package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoCategoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	return &mongoCategoryRepository{
		collection: db.Collection("categoryhomepages"),
	}
}

func (m *mongoCategoryRepository) Create(ctx context.Context, category *domain.CategoryHomepage) error {
	now := time.Now()
	category.ID = primitive.NewObjectID()
	category.CreatedAt = now
	category.UpdatedAt = now
	if category.MainImage == nil {
		category.MainImage = []string{}
	}

	if _, err := m.collection.InsertOne(ctx, category); err != nil {
		return fmt.Errorf("failed to create category homepage: %w", err)
	}
	return nil
}

func (m *mongoCategoryRepository) List(ctx context.Context) ([]domain.CategoryHomepage, error) {
	return m.find(ctx, bson.M{})
}

// FindByCategory matches the whole category name, ignoring case.
func (m *mongoCategoryRepository) FindByCategory(ctx context.Context, category string) ([]domain.CategoryHomepage, error) {
	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(category) + "$", Options: "i"}
	return m.find(ctx, bson.M{"category": pattern})
}

func (m *mongoCategoryRepository) find(ctx context.Context, filter bson.M) ([]domain.CategoryHomepage, error) {
	cursor, err := m.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query category homepages: %w", err)
	}
	categories := []domain.CategoryHomepage{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode category homepages: %w", err)
	}
	return categories, nil
}
