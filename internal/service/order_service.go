package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/fjod/storefront/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var hundred = decimal.NewFromInt(100)

type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, event events.OrderCreated) error
}

type OrderLineInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Size      string `json:"size" validate:"required"`
}

type CreateOrderInput struct {
	Address     string
	PhoneNumber string
	Products    []OrderLineInput
}

type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	users     repository.UserRepository
	publisher OrderPublisher
	now       func() time.Time
	shipDays  func() int
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, users repository.UserRepository, publisher OrderPublisher) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		users:     users,
		publisher: publisher,
		now:       time.Now,
		shipDays:  func() int { return 5 + rand.IntN(3) },
	}
}

type stockLine struct {
	productID primitive.ObjectID
	size      string
	quantity  int
}

// Create prices the order from the stored products, takes the ordered units
// out of stock and stores the order. Stock already taken is given back if a
// later line or the insert fails.
func (s *OrderService) Create(ctx context.Context, userID string, in CreateOrderInput) (*domain.Order, error) {
	if strings.TrimSpace(in.Address) == "" || strings.TrimSpace(in.PhoneNumber) == "" || len(in.Products) == 0 {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	lines := make([]stockLine, 0, len(in.Products))
	for _, p := range in.Products {
		if p.Size == "" || p.Quantity < 1 {
			return nil, fmt.Errorf("%w: every product needs a size and a positive quantity", ErrValidation)
		}
		pid, err := primitive.ObjectIDFromHex(p.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed product ID", ErrValidation)
		}
		lines = append(lines, stockLine{productID: pid, size: p.Size, quantity: p.Quantity})
	}

	if _, err := s.users.FindByID(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	total, err := s.price(ctx, lines)
	if err != nil {
		return nil, err
	}

	consumed, err := s.consume(ctx, lines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &domain.Order{
		UserID:      uid,
		Address:     in.Address,
		PhoneNumber: in.PhoneNumber,
		Products:    make([]domain.OrderLine, len(lines)),
		TotalAmount: total.StringFixed(2),
		Status:      domain.OrderStatusPending,
		DayToShip:   now.AddDate(0, 0, s.shipDays()),
		CreatedAt:   now,
	}
	for i, l := range lines {
		order.Products[i] = domain.OrderLine{ProductID: l.productID, Quantity: l.quantity, Size: l.size}
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.restore(ctx, consumed)
		return nil, err
	}

	if err := s.users.AppendOrder(ctx, uid, order.ID); err != nil {
		log.Error().Ctx(ctx).Err(err).Str("order_id", order.ID.Hex()).Msg("failed to link order to user")
	}
	s.publish(ctx, order)

	return order, nil
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	order, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// price sums price * (100 - salesPercent) / 100 * quantity over the lines.
func (s *OrderService) price(ctx context.Context, lines []stockLine) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range lines {
		product, err := s.products.FindByID(ctx, l.productID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return decimal.Zero, ErrProductNotFound
			}
			return decimal.Zero, err
		}
		if _, ok := product.Size(l.size); !ok {
			return decimal.Zero, ErrInvalidSize
		}
		unit, err := decimal.NewFromString(product.Price)
		if err != nil {
			return decimal.Zero, fmt.Errorf("product %s has malformed price %q: %w", product.ID.Hex(), product.Price, err)
		}
		discount := hundred.Sub(decimal.NewFromInt(int64(product.SalesPercent))).Div(hundred)
		total = total.Add(unit.Mul(discount).Mul(decimal.NewFromInt(int64(l.quantity))))
	}
	return total, nil
}

func (s *OrderService) consume(ctx context.Context, lines []stockLine) ([]stockLine, error) {
	consumed := make([]stockLine, 0, len(lines))
	for _, l := range lines {
		if err := s.products.ConsumeStock(ctx, l.productID, l.size, l.quantity); err != nil {
			s.restore(ctx, consumed)
			if errors.Is(err, repository.ErrInsufficientStock) {
				return nil, ErrInsufficientStock
			}
			return nil, err
		}
		consumed = append(consumed, l)
	}
	return consumed, nil
}

func (s *OrderService) restore(ctx context.Context, lines []stockLine) {
	for _, l := range lines {
		if err := s.products.RestoreStock(context.WithoutCancel(ctx), l.productID, l.size, l.quantity); err != nil {
			log.Error().Ctx(ctx).Err(err).
				Str("product_id", l.productID.Hex()).
				Str("size", l.size).
				Int("quantity", l.quantity).
				Msg("failed to restore stock")
		}
	}
}

func (s *OrderService) publish(ctx context.Context, order *domain.Order) {
	event := events.OrderCreated{
		OrderID:     order.ID.Hex(),
		UserID:      order.UserID.Hex(),
		Items:       make([]events.OrderItem, len(order.Products)),
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
	}
	for i, p := range order.Products {
		event.Items[i] = events.OrderItem{ProductID: p.ProductID.Hex(), Size: p.Size, Quantity: p.Quantity}
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		log.Error().Ctx(ctx).Err(err).Str("order_id", event.OrderID).Msg("failed to publish order event")
	}
}
