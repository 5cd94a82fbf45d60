package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{
		collection: db.Collection("products"),
	}
}

func (m *mongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var product domain.Product
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// FindByIDs returns the products that still exist among ids, in no particular order.
func (m *mongoProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	return m.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (m *mongoProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	return m.find(ctx, bson.M{})
}

func (m *mongoProductRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(category), Options: "i"}
	return m.find(ctx, bson.M{"category": pattern})
}

func (m *mongoProductRepository) find(ctx context.Context, filter bson.M) ([]domain.Product, error) {
	cursor, err := m.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	products := []domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (m *mongoProductRepository) Categories(ctx context.Context) ([]string, error) {
	values, err := m.collection.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (m *mongoProductRepository) Create(ctx context.Context, product *domain.Product) error {
	now := time.Now()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := m.collection.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update sets only the fields present in changes, so stock counters moved by
// concurrent ConsumeStock calls survive unless Sizes is being replaced.
func (m *mongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, changes ProductChanges) (*domain.Product, error) {
	set := bson.M{"updatedAt": time.Now()}
	if changes.Name != nil {
		set["name"] = *changes.Name
	}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.Category != nil {
		set["category"] = *changes.Category
	}
	if changes.Price != nil {
		set["price"] = *changes.Price
	}
	if changes.Colors != nil {
		set["colors"] = changes.Colors
	}
	if changes.SalesPercent != nil {
		set["salesPercent"] = *changes.SalesPercent
	}
	if changes.Sizes != nil {
		set["sizes"] = changes.Sizes
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product domain.Product
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (m *mongoProductRepository) SetSizeQuantity(ctx context.Context, id primitive.ObjectID, size string, quantity int) (*domain.Product, error) {
	filter := bson.M{"_id": id, "sizes.size": size}
	update := bson.M{
		"$set": bson.M{
			"sizes.$[elem].quantity": quantity,
			"updatedAt":              time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{
				bson.M{"elem.size": size},
			},
		}).
		SetReturnDocument(options.After)

	var product domain.Product
	err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&product)
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update size quantity: %w", err)
	}

	// Tell a missing product apart from a missing size.
	count, errCount := m.collection.CountDocuments(ctx, bson.M{"_id": id})
	if errCount != nil {
		return nil, fmt.Errorf("failed to check product: %w", errCount)
	}
	if count == 0 {
		return nil, ErrProductNotFound
	}
	return nil, ErrSizeNotFound
}

func (m *mongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (m *mongoProductRepository) ConsumeStock(ctx context.Context, id primitive.ObjectID, size string, quantity int) error {
	filter := bson.M{
		"_id": id,
		"sizes": bson.M{
			"$elemMatch": bson.M{"size": size, "quantity": bson.M{"$gte": quantity}},
		},
	}
	result, err := m.adjustStock(ctx, filter, size, -quantity)
	if err != nil {
		return fmt.Errorf("failed to consume stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (m *mongoProductRepository) RestoreStock(ctx context.Context, id primitive.ObjectID, size string, quantity int) error {
	result, err := m.adjustStock(ctx, bson.M{"_id": id, "sizes.size": size}, size, quantity)
	if err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrSizeNotFound
	}
	return nil
}

func (m *mongoProductRepository) adjustStock(ctx context.Context, filter bson.M, size string, delta int) (*mongo.UpdateResult, error) {
	update := bson.M{
		"$inc": bson.M{"sizes.$[elem].quantity": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem.size": size},
		},
	})
	return m.collection.UpdateOne(ctx, filter, update, arrayFilters)
}
