package repository

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrSizeNotFound      = errors.New("size not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrVersionConflict   = errors.New("user document was modified concurrently")
	ErrInsufficientStock = errors.New("insufficient stock for size")
)

// UserRepository defines the operations on user documents, including the
// cart embedded in them.
type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpdateProfile(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
	ListPage(ctx context.Context, skip, limit int64) ([]domain.User, int64, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpsertSocial(ctx context.Context, accountType, email, name string) (*domain.User, error)
	AppendOrder(ctx context.Context, id, orderID primitive.ObjectID) error

	// SaveCart replaces the cart if the stored version still equals
	// expectedVersion, and bumps the version. ErrVersionConflict otherwise.
	SaveCart(ctx context.Context, id primitive.ObjectID, expectedVersion int64, cart []domain.CartLineItem) error
	FindIDsByCartProduct(ctx context.Context, productID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// ProductChanges lists the product fields to overwrite. Nil fields are kept.
type ProductChanges struct {
	Name         *string
	Description  *string
	Category     *string
	Price        *string
	Colors       []string
	SalesPercent *int
	Sizes        []domain.SizeVariant
}

type ProductRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id primitive.ObjectID, changes ProductChanges) (*domain.Product, error)
	SetSizeQuantity(ctx context.Context, id primitive.ObjectID, size string, quantity int) (*domain.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// ConsumeStock decrements the size counter only if it holds at least quantity.
	ConsumeStock(ctx context.Context, id primitive.ObjectID, size string, quantity int) error
	RestoreStock(ctx context.Context, id primitive.ObjectID, size string, quantity int) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.OrderStatus) (*domain.Order, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.CategoryHomepage) error
	List(ctx context.Context) ([]domain.CategoryHomepage, error)
	FindByCategory(ctx context.Context, category string) ([]domain.CategoryHomepage, error)
}
