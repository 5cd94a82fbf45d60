package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{
		collection: db.Collection("users"),
	}
}

// notDeleted filters out soft-deleted users.
func notDeleted(filter bson.M) bson.M {
	filter["deleted"] = bson.M{"$ne": true}
	return filter
}

func (m *mongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return m.findOne(ctx, notDeleted(bson.M{"_id": id}))
}

func (m *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.findOne(ctx, notDeleted(bson.M{"email": strings.TrimSpace(email)}))
}

func (m *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := m.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (m *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.Cart == nil {
		user.Cart = []domain.CartLineItem{}
	}
	if user.Orders == nil {
		user.Orders = []primitive.ObjectID{}
	}
	if user.ProfileImage == nil {
		user.ProfileImage = []string{}
	}
	user.ID = primitive.NewObjectID()
	user.Version = 0

	if _, err := m.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (m *mongoUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	set := bson.M{
		"email":       user.Email,
		"name":        user.Name,
		"role":        user.Role,
		"sex":         user.Sex,
		"phoneNumber": user.PhoneNumber,
	}
	if len(user.ProfileImage) > 0 {
		set["profileImage"] = user.ProfileImage
	}

	result, err := m.collection.UpdateOne(ctx, notDeleted(bson.M{"_id": user.ID}), bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (m *mongoUserRepository) List(ctx context.Context) ([]domain.User, error) {
	cursor, err := m.collection.Find(ctx, notDeleted(bson.M{}), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := []domain.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (m *mongoUserRepository) ListPage(ctx context.Context, skip, limit int64) ([]domain.User, int64, error) {
	filter := notDeleted(bson.M{})
	total, err := m.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	users := []domain.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, total, nil
}

func (m *mongoUserRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	now := time.Now()
	update := bson.M{"$set": bson.M{"deleted": true, "deletedAt": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user domain.User
	err := m.collection.FindOneAndUpdate(ctx, notDeleted(bson.M{"_id": id}), update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return &user, nil
}

// UpsertSocial returns the user registered under email, creating a social
// login account when there is none. The email comes from the filter on insert.
func (m *mongoUserRepository) UpsertSocial(ctx context.Context, accountType, email, name string) (*domain.User, error) {
	filter := notDeleted(bson.M{"email": email})
	update := bson.M{
		"$setOnInsert": bson.M{
			"name":         name,
			"role":         domain.RoleUser,
			"type":         accountType,
			"socialLogin":  true,
			"profileImage": []string{},
			"orders":       []primitive.ObjectID{},
			"cart":         []domain.CartLineItem{},
			"version":      int64(0),
			"deleted":      false,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user domain.User
	if err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to upsert social user: %w", err)
	}
	return &user, nil
}

func (m *mongoUserRepository) AppendOrder(ctx context.Context, id, orderID primitive.ObjectID) error {
	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"orders": orderID}})
	if err != nil {
		return fmt.Errorf("failed to append order: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (m *mongoUserRepository) SaveCart(ctx context.Context, id primitive.ObjectID, expectedVersion int64, cart []domain.CartLineItem) error {
	if cart == nil {
		cart = []domain.CartLineItem{}
	}

	filter := notDeleted(bson.M{"_id": id, "version": expectedVersion})
	update := bson.M{
		"$set": bson.M{"cart": cart},
		"$inc": bson.M{"version": 1},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (m *mongoUserRepository) FindIDsByCartProduct(ctx context.Context, productID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := m.collection.Find(ctx, notDeleted(bson.M{"cart.product": productID}), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find cart holders: %w", err)
	}

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode cart holders: %w", err)
	}

	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}
